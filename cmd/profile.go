package cmd

import (
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/calder-dev/tidechat/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage gateway profiles",
	Long:  `Manage gateway profiles for different environments and accounts.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for name, profile := range cfg.Profiles {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Gateway: %s\n", profile.GatewayURL)
			fmt.Printf("    Token: %s\n", tokenSummary(profile))
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("Gateway: %s\n", profile.GatewayURL)
		fmt.Printf("Token: %s\n", tokenSummary(profile))
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{Label: "Profile name"}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile := config.Profile{}

		gatewayPrompt := promptui.Prompt{Label: "Gateway URL"}
		profile.GatewayURL, err = gatewayPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		tokenPrompt := promptui.Prompt{
			Label: "Access token (empty to use an env var)",
			Mask:  '*',
		}
		profile.Token, err = tokenPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		if profile.Token == "" {
			envPrompt := promptui.Prompt{
				Label:   "Token env var",
				Default: "TIDECHAT_TOKEN",
			}
			profile.TokenEnv, err = envPrompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			profileNames := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				profileNames = append(profileNames, name)
			}
			if len(profileNames) == 0 {
				log.Fatalf("No profiles available to edit")
			}

			prompt := promptui.Select{
				Label: "Select profile to edit",
				Items: profileNames,
			}
			_, profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Selection failed: %v", err)
			}
		}

		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		gatewayPrompt := promptui.Prompt{
			Label:   "Gateway URL",
			Default: profile.GatewayURL,
		}
		profile.GatewayURL, err = gatewayPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		tokenPrompt := promptui.Prompt{
			Label:   "Access token (empty to use an env var)",
			Default: profile.Token,
			Mask:    '*',
		}
		profile.Token, err = tokenPrompt.Run()
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		if profile.Token == "" {
			envDefault := profile.TokenEnv
			if envDefault == "" {
				envDefault = "TIDECHAT_TOKEN"
			}
			envPrompt := promptui.Prompt{
				Label:   "Token env var",
				Default: envDefault,
			}
			profile.TokenEnv, err = envPrompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		} else {
			profile.TokenEnv = ""
		}

		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var removeProfileCmd = &cobra.Command{
	Use:   "remove [profile-name]",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}
		if profileName == cfg.ActiveProfile {
			log.Fatalf("Cannot remove the active profile; switch first with 'tidechat use'")
		}

		delete(cfg.Profiles, profileName)
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' removed\n", profileName)
	},
}

func tokenSummary(p config.Profile) string {
	switch {
	case p.TokenEnv != "":
		return "from $" + p.TokenEnv
	case p.Token != "":
		return "set (hidden)"
	default:
		return "not set"
	}
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(removeProfileCmd)
}
