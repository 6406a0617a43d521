package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/calder-dev/tidechat/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "tidechat",
	Short: "Terminal client for streaming agent chat",
	Long:  `TideChat is a terminal chat client that streams responses from a remote agent gateway, including tool-approval prompts and citations.`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := app.NewApplication()
		if err != nil {
			log.Fatalf("Failed to create application: %v", err)
		}
		defer application.Stop()

		if err := application.Start(); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
