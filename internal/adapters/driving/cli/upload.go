package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/citedock/internal/adapters/driving/tui"
	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload files into the case",
	Long: `Upload one or more files into the case as main documents or as exhibits
of a main document. Files upload concurrently and independently: a failure
or cancellation of one file never affects the others.

Interrupting the command cancels every file that has not finished. Re-run
with --batch <id> to resume an interrupted batch; files that were already
registered are not uploaded twice.

Examples:
  citedock upload -c case-1 complaint.pdf
  citedock upload -c case-1 --type exhibit --main-document doc-1 ex-a.pdf ex-b.pdf
  citedock upload -c case-1 --tui *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

// Upload flags.
var (
	uploadType     string
	uploadMainDoc  string
	uploadBatchID  string
	uploadShowTUI  bool
	isTerminalFunc = term.IsTerminal
)

func init() {
	uploadCmd.Flags().StringVarP(&uploadType, "type", "t", "main", "Document type: main or exhibit")
	uploadCmd.Flags().StringVarP(&uploadMainDoc, "main-document", "m", "", "Main document the exhibits belong to")
	uploadCmd.Flags().StringVar(&uploadBatchID, "batch", "", "Batch ID to resume")
	uploadCmd.Flags().BoolVar(&uploadShowTUI, "tui", false, "Show an interactive progress view")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	docType, err := parseDocumentType(uploadType)
	if err != nil {
		return err
	}

	files := make([]domain.FileRef, 0, len(args))
	for _, path := range args {
		f, err := domain.FileFromPath(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, f)
	}

	if uploadShowTUI && !isTerminalFunc(int(os.Stdout.Fd())) {
		return errors.New("--tui requires a terminal")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	caseID, err := openCase(ctx)
	if err != nil {
		return err
	}

	batch, err := workspace.RequestBatchUpload(ctx, domain.BatchRequest{
		BatchID:        uploadBatchID,
		CaseID:         caseID,
		Type:           docType,
		MainDocumentID: uploadMainDoc,
		Files:          files,
	})
	if err != nil {
		return fmt.Errorf("failed to start upload: %w", err)
	}

	go func() {
		<-ctx.Done()
		batch.CancelAll()
	}()

	if uploadShowTUI {
		app, err := tui.NewUploadApp(batch, files)
		if err != nil {
			return err
		}
		if _, err := tea.NewProgram(app).Run(); err != nil {
			batch.CancelAll()
			return fmt.Errorf("TUI error: %w", err)
		}
	} else {
		cmd.Printf("Uploading %d file(s) to case %s (batch %s)\n", len(files), caseID, batch.ID())
		printBatchEvents(cmd, batch, files)
	}

	return summariseBatch(cmd, batch.Wait())
}

// printBatchEvents prints one line per finished file until the batch closes.
func printBatchEvents(cmd *cobra.Command, batch driving.UploadBatch, files []domain.FileRef) {
	for ev := range batch.Events() {
		name := files[ev.Index].Name
		switch ev.Kind {
		case domain.EventProgress:
			if ev.Percent%10 == 0 {
				logger.Debug("upload: %s %d%%", name, ev.Percent)
			}
		case domain.EventCompleted:
			cmd.Printf("  done       %s -> %s\n", name, ev.Document.ID)
		case domain.EventFailed:
			cmd.Printf("  failed     %s: %v\n", name, ev.Err)
		case domain.EventCancelled:
			cmd.Printf("  cancelled  %s\n", name)
		}
	}
}

// summariseBatch prints the totals and joins the errors of unfinished files.
func summariseBatch(cmd *cobra.Command, tasks []domain.UploadTask) error {
	var (
		done int
		errs []error
	)
	for i := range tasks {
		if tasks[i].State == domain.UploadDone {
			done++
			continue
		}
		err := tasks[i].Err
		if err == nil {
			err = errors.New(strings.ToLower(string(tasks[i].State)))
		}
		errs = append(errs, fmt.Errorf("%s: %w", tasks[i].File.Name, err))
	}

	cmd.Printf("Uploaded %d of %d file(s)\n", done, len(tasks))
	return errors.Join(errs...)
}

func parseDocumentType(v string) (domain.DocumentType, error) {
	t := domain.DocumentType(strings.ToUpper(v))
	if !t.IsValid() {
		return "", domain.NewValidationError("type", "must be main or exhibit, got "+v)
	}
	return t, nil
}
