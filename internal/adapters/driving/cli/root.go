// Package cli provides the cobra command tree for citedock.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// EnvCase supplies the case when --case is not given.
const EnvCase = "CITEDOCK_CASE"

// version is set at build time via ldflags.
var version = "dev"

// Services holds the driving ports the commands use. Any field may be nil;
// commands that need a missing service fail with "not configured".
type Services struct {
	Workspace  driving.CaseWorkspace
	Cases      driving.CaseService
	Registry   driving.DocumentRegistry
	Extraction driving.ExtractionTracker
	Poller     driving.StatusPoller
	Settings   driving.SettingsService

	// Metrics is served at /metrics by serve --http.
	Metrics http.Handler
}

var (
	workspace         driving.CaseWorkspace
	caseService       driving.CaseService
	registry          driving.DocumentRegistry
	extractionTracker driving.ExtractionTracker
	statusPoller      driving.StatusPoller
	settingsService   driving.SettingsService
	metricsHandler    http.Handler
)

// Persistent flags.
var (
	verboseFlag bool
	caseFlag    string
)

var errNoCase = errors.New("no case selected: pass --case or set " + EnvCase)

var rootCmd = &cobra.Command{
	Use:   "citedock",
	Short: "Upload case documents and browse their citations",
	Long: `citedock uploads the main documents and exhibits of a legal case,
requests citation extraction and browses the extracted citations grouped
by the exhibit they point to.

Configure the API first:
  citedock settings set api.base_url https://api.example.com
  citedock auth login`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print debug output to stderr")
	rootCmd.PersistentFlags().StringVarP(&caseFlag, "case", "c", "", "Case ID (defaults to $"+EnvCase+")")
}

// SetServices configures the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	workspace = s.Workspace
	caseService = s.Cases
	registry = s.Registry
	extractionTracker = s.Extraction
	statusPoller = s.Poller
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentCase returns the case from --case or the environment.
func currentCase() (string, error) {
	if caseFlag != "" {
		return caseFlag, nil
	}
	if env := os.Getenv(EnvCase); env != "" {
		return env, nil
	}
	return "", errNoCase
}

// openCase loads the current case into the workspace.
func openCase(ctx context.Context) (string, error) {
	if workspace == nil {
		return "", errors.New("workspace not configured")
	}
	caseID, err := currentCase()
	if err != nil {
		return "", err
	}
	logger.Debug("opening case %s", caseID)
	if err := workspace.Open(ctx, caseID); err != nil {
		return "", err
	}
	return caseID, nil
}
