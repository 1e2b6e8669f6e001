package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the API connection, upload, extraction and media settings.

Settings are stored in ~/.citedock/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key. The new value is validated together
with the rest of the settings and rejected if it makes them invalid.

Examples:
  citedock settings set api.base_url https://api.example.com
  citedock settings set upload.concurrency 8
  citedock settings set media.provider gcs`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[API]")
	cmd.Printf("  Base URL: %s\n", valueOr(settings.API.BaseURL, "(not set)"))
	if settings.API.Token != "" {
		cmd.Printf("  Token: %s\n", maskToken(settings.API.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout())
	cmd.Printf("  Requests per second: %g\n", settings.API.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Upload]")
	cmd.Printf("  Concurrency: %d\n", settings.Upload.Concurrency)
	cmd.Printf("  Max file size: %d MB\n", settings.Upload.MaxFileSizeMB)
	cmd.Printf("  Require PDF: %s\n", yesNo(settings.Upload.RequirePDF))
	cmd.Printf("  Finished uploads visible for: %s\n", settings.Upload.DoneGrace())
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Poll interval: %s\n", settings.Extraction.PollInterval())
	cmd.Printf("  Poll timeout: %s\n", settings.Extraction.PollTimeout())
	cmd.Println()

	cmd.Println("[Media]")
	cmd.Printf("  Provider: %s\n", settings.Media.Provider.Description())
	if settings.Media.Provider == domain.MediaProviderGCS {
		cmd.Printf("  Bucket: %s\n", valueOr(settings.Media.GCSBucket, "(not set)"))
		cmd.Printf("  Credentials: %s\n", valueOr(settings.Media.GCSCredentialsFile, "(default)"))
	}
	cmd.Printf("  Signed URL expiry: %s\n", settings.Media.URLExpiry())
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data directory: %s\n", valueOr(settings.Storage.DataDir, "~/.citedock/data"))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else if !settings.API.IsConfigured() {
		cmd.Println("Warning: api.base_url is not set.")
		cmd.Println("Run 'citedock settings set api.base_url <url>' before using network commands.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if key == "api.token" {
		value = maskToken(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
