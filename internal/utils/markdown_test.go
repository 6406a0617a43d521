package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_PlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "just a sentence.", RenderMarkdown("just a sentence."))
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_Headings(t *testing.T) {
	got := RenderMarkdown("# Title\nbody")

	assert.Contains(t, got, "Title")
	assert.NotContains(t, got, "#")
	assert.Contains(t, got, "body")
}

func TestRenderMarkdown_Lists(t *testing.T) {
	got := RenderMarkdown("- first\n* second\n1. third")

	assert.Contains(t, got, "• first")
	assert.Contains(t, got, "• second")
	assert.Contains(t, got, "1. third")
}

func TestRenderMarkdown_FencedCode(t *testing.T) {
	got := RenderMarkdown("```go\nfmt.Println(1)\n```\nafter")

	assert.Contains(t, got, "fmt.Println(1)")
	assert.NotContains(t, got, "```")
	assert.Contains(t, got, "after")
}

func TestRenderMarkdown_InlineMarkers(t *testing.T) {
	got := RenderMarkdown("use `go test` and **really** _mean_ it")

	assert.Contains(t, got, "go test")
	assert.Contains(t, got, "really")
	assert.Contains(t, got, "mean")
	assert.NotContains(t, got, "`")
	assert.NotContains(t, got, "**")
}

// Streaming delivers markdown in fragments; an unterminated marker must
// survive rendering untouched rather than vanish.
func TestRenderMarkdown_PartialStreamFragments(t *testing.T) {
	assert.Equal(t, "answer is **bol", RenderMarkdown("answer is **bol"))
	assert.Equal(t, "see `unclosed", RenderMarkdown("see `unclosed"))
}

func TestRenderMarkdown_PreservesLineCount(t *testing.T) {
	in := "one\ntwo\nthree"

	got := RenderMarkdown(in)

	assert.Len(t, strings.Split(got, "\n"), 3)
}
