package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Request and follow citation extraction",
	Long: `Queue citation extraction for one document or for every main document
of a case, and report its progress. A target that is already queued or
running is not requested again.`,
}

var extractDocumentCmd = &cobra.Command{
	Use:   "document [document-id]",
	Short: "Extract citations from one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtractDocument,
}

var extractCaseCmd = &cobra.Command{
	Use:   "case",
	Short: "Extract citations from every main document of the case",
	Args:  cobra.NoArgs,
	RunE:  runExtractCase,
}

var extractStatusCmd = &cobra.Command{
	Use:   "status [document-id]",
	Short: "Show extraction status of a document or the case",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtractStatus,
}

// extractWait is a flag for the document and case commands.
var extractWait bool

func init() {
	extractDocumentCmd.Flags().BoolVarP(&extractWait, "wait", "w", false, "Wait until extraction finishes")
	extractCaseCmd.Flags().BoolVarP(&extractWait, "wait", "w", false, "Wait until extraction finishes")

	extractCmd.AddCommand(extractDocumentCmd)
	extractCmd.AddCommand(extractCaseCmd)
	extractCmd.AddCommand(extractStatusCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtractDocument(cmd *cobra.Command, args []string) error {
	return requestExtraction(cmd, func(string) domain.ExtractionTarget {
		return domain.DocumentTarget(args[0])
	})
}

func runExtractCase(cmd *cobra.Command, _ []string) error {
	return requestExtraction(cmd, domain.CaseTarget)
}

func requestExtraction(cmd *cobra.Command, targetFor func(caseID string) domain.ExtractionTarget) error {
	caseID, err := openCase(cmd.Context())
	if err != nil {
		return err
	}
	target := targetFor(caseID)

	err = workspace.RequestExtraction(cmd.Context(), target)
	switch {
	case err == nil:
		cmd.Printf("Extraction queued for %s\n", target)
	case errors.Is(err, domain.ErrAlreadyInProgress):
		cmd.Printf("Extraction already in progress for %s\n", target)
	default:
		return fmt.Errorf("failed to request extraction: %w", err)
	}

	if !extractWait {
		return nil
	}
	if extractionTracker == nil {
		return errors.New("extraction tracker not configured")
	}

	cmd.Println("Waiting for extraction to finish...")
	status, err := extractionTracker.WaitForCompletion(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("failed waiting for extraction: %w", err)
	}

	cmd.Printf("Extraction %s: %s\n", target, status)
	if status == domain.ExtractionFailed {
		return fmt.Errorf("extraction failed for %s", target)
	}
	return nil
}

func runExtractStatus(cmd *cobra.Command, args []string) error {
	if extractionTracker == nil {
		return errors.New("extraction tracker not configured")
	}

	caseID, err := openCase(cmd.Context())
	if err != nil {
		return err
	}

	target := domain.CaseTarget(caseID)
	if len(args) == 1 {
		target = domain.DocumentTarget(args[0])
	}

	status, err := extractionTracker.Status(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("failed to get extraction status: %w", err)
	}

	cmd.Printf("%s: %s\n", target, status)
	return nil
}
