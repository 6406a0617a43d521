package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileSubcommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range profileCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"list", "show", "add", "edit", "remove"})
}

func TestRootSubcommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"profile", "use"})
}
