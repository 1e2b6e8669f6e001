package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage case documents",
	Long:    `List, inspect or delete the main documents and exhibits of a case.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List main documents with their exhibits",
	Long: `List the main documents of the case, each followed by its exhibits.

With --offline the list is read from the snapshot saved by the last
successful online listing and no network call is made.`,
	Args: cobra.NoArgs,
	RunE: runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document",
	Long: `Delete a document from the case. The local list changes only after the
service confirms the deletion.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsDelete,
}

// offlineList is a flag for the list command.
var offlineList bool

func init() {
	documentsListCmd.Flags().BoolVar(&offlineList, "offline", false, "Read the last saved snapshot instead of the API")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errors.New("document registry not configured")
	}

	caseID, err := currentCase()
	if err != nil {
		return err
	}

	if offlineList {
		err = registry.LoadCached(cmd.Context(), caseID)
	} else {
		err = registry.Load(cmd.Context(), caseID)
	}
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	docs := registry.Documents()
	if len(docs) == 0 {
		cmd.Printf("No documents found for case: %s\n", caseID)
		return nil
	}

	cmd.Printf("Documents for case %s:\n\n", caseID)

	listed := make(map[string]bool, len(docs))
	for _, mainDoc := range registry.MainDocuments() {
		printDocumentLine(cmd, "  ", &mainDoc)
		listed[mainDoc.ID] = true
		for _, ex := range registry.ExhibitsOf(mainDoc.ID) {
			printDocumentLine(cmd, "      ", &ex)
			listed[ex.ID] = true
		}
		cmd.Println()
	}

	var orphans []domain.Document
	for i := range docs {
		if !listed[docs[i].ID] {
			orphans = append(orphans, docs[i])
		}
	}
	if len(orphans) > 0 {
		cmd.Println("  Exhibits without a main document:")
		for i := range orphans {
			printDocumentLine(cmd, "      ", &orphans[i])
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errors.New("document registry not configured")
	}

	caseID, err := currentCase()
	if err != nil {
		return err
	}
	if err := registry.Load(cmd.Context(), caseID); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	doc, err := registry.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:       %s\n", doc.Title)
	cmd.Printf("  Type:        %s\n", doc.Type)
	if doc.MainDocumentID != "" {
		cmd.Printf("  Main:        %s\n", doc.MainDocumentID)
	}
	cmd.Printf("  Processing:  %s\n", valueOr(doc.ProcessingStatus.String(), "-"))
	cmd.Printf("  Extraction:  %s\n", doc.CitationsExtractionStatus)
	cmd.Printf("  Citations:   %d\n", doc.CitationsCount)
	if doc.MediaURL != "" {
		cmd.Printf("  Media:       %s\n", doc.MediaURL)
	}
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("  Created:     %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	if doc.IsMain() {
		exhibits := registry.ExhibitsOf(doc.ID)
		if len(exhibits) > 0 {
			cmd.Println("\n  Exhibits:")
			for i := range exhibits {
				cmd.Printf("    %s  %s\n", exhibits[i].ID, exhibits[i].Title)
			}
		}
	}

	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if _, err := openCase(cmd.Context()); err != nil {
		return err
	}

	if err := workspace.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

func printDocumentLine(cmd *cobra.Command, indent string, doc *domain.Document) {
	cmd.Printf("%s%-8s %s  %s\n", indent, doc.Type, doc.ID, doc.Title)
	cmd.Printf("%s         extraction: %s  citations: %d\n", indent, doc.CitationsExtractionStatus, doc.CitationsCount)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
