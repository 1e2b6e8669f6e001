package cli

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload files dropped into a folder",
	Long: `Watch a folder and upload every PDF dropped into it to the case. Files
already in the folder when the watch starts are left alone.

Examples:
  citedock watch -c case-1 ~/Inbox/case-1
  citedock watch -c case-1 --type exhibit --main-document doc-1 ./exhibits`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// Watch flags.
var (
	watchType    string
	watchMainDoc string
	watchSettle  time.Duration
)

func init() {
	watchCmd.Flags().StringVarP(&watchType, "type", "t", "main", "Document type: main or exhibit")
	watchCmd.Flags().StringVarP(&watchMainDoc, "main-document", "m", "", "Main document the exhibits belong to")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "Quiet period before a dropped file is uploaded")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	docType, err := parseDocumentType(watchType)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	caseID, err := openCase(ctx)
	if err != nil {
		return err
	}

	w, err := watch.New(workspace, watch.Config{
		Dir:            args[0],
		Type:           docType,
		MainDocumentID: watchMainDoc,
		Settle:         watchSettle,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	results, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for case %s (Ctrl+C to stop)\n", args[0], caseID)
	for r := range results {
		if r.Err != nil {
			cmd.Printf("  failed  %s: %v\n", r.Path, r.Err)
			continue
		}
		cmd.Printf("  done    %s -> %s\n", r.Path, r.Task.Document.ID)
	}

	cmd.Println("Stopped watching")
	return nil
}
