package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API token",
	Long: `Store or remove the bearer token sent with every API request.

The CITEDOCK_API_TOKEN environment variable overrides the stored token.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token",
	Long: `Store an API token. Without --token the token is read from the terminal
without echo, or from standard input when it is not a terminal.

Examples:
  citedock auth login
  echo "$TOKEN" | citedock auth login`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

// loginToken is a flag for the login command.
var loginToken string

func init() {
	authLoginCmd.Flags().StringVar(&loginToken, "token", "", "API token (prompted when omitted)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	token := loginToken
	if token == "" {
		cmd.Print("API token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}

	if err := settingsService.Set("api.token", token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	cmd.Printf("Token saved (%s)\n", maskToken(token))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set("api.token", ""); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	cmd.Println("Token removed")
	return nil
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}
