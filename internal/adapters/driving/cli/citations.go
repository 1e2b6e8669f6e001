package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

var citationsCmd = &cobra.Command{
	Use:   "citations",
	Short: "Browse and delete extracted citations",
}

var citationsListCmd = &cobra.Command{
	Use:   "list [document-id]",
	Short: "List a document's citations grouped by exhibit",
	Long: `List the citations extracted from a main document, grouped by the
exhibit each citation points to. Exhibits appear in the order they are
first cited.`,
	Args: cobra.ExactArgs(1),
	RunE: runCitationsList,
}

var citationsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id] [citation-id]",
	Short: "Delete one citation",
	Args:  cobra.ExactArgs(2),
	RunE:  runCitationsDelete,
}

// citationsJSON is a flag for the list command.
var citationsJSON bool

func init() {
	citationsListCmd.Flags().BoolVar(&citationsJSON, "json", false, "Print JSON instead of text")

	citationsCmd.AddCommand(citationsListCmd)
	citationsCmd.AddCommand(citationsDeleteCmd)
	rootCmd.AddCommand(citationsCmd)
}

// exhibitJSON is the --json shape of one exhibit group.
type exhibitJSON struct {
	ExhibitID string         `json:"exhibitId"`
	Title     string         `json:"title,omitempty"`
	Citations []citationJSON `json:"citations"`
}

type citationJSON struct {
	ID              string `json:"id"`
	SourcePage      *int   `json:"sourcePage,omitempty"`
	DestinationPage *int   `json:"destinationPage,omitempty"`
	SourceText      string `json:"sourceText,omitempty"`
	ReferencedText  string `json:"referencedText,omitempty"`
}

func runCitationsList(cmd *cobra.Command, args []string) error {
	if workspace == nil {
		return errors.New("workspace not configured")
	}

	// Titles are shown only when a case is selected.
	if _, err := currentCase(); err == nil {
		if _, err := openCase(cmd.Context()); err != nil {
			return err
		}
	}

	docID := args[0]
	graph, err := workspace.CitationsByExhibit(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("failed to list citations: %w", err)
	}

	titles := make(map[string]string)
	for _, d := range workspace.Documents() {
		titles[d.ID] = d.Title
	}

	if citationsJSON {
		return printCitationsJSON(cmd, graph, titles)
	}

	if graph.Len() == 0 {
		cmd.Printf("No citations found for document: %s\n", docID)
		return nil
	}

	cmd.Printf("Citations of %s:\n\n", docID)
	for _, g := range graph.Groups() {
		cmd.Printf("  %s  %s (%d)\n", g.ExhibitID, titles[g.ExhibitID], len(g.Citations))
		for i := range g.Citations {
			c := &g.Citations[i]
			cmd.Printf("    %s  p.%s -> p.%s  %s\n", c.ID, pageLabel(c.SourcePageNumber), pageLabel(c.DestinationPageNumber), c.SourceText)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d citations across %d exhibits\n", graph.Len(), len(graph.Exhibits()))
	return nil
}

func printCitationsJSON(cmd *cobra.Command, graph *domain.CitationGraph, titles map[string]string) error {
	groups := graph.Groups()
	out := make([]exhibitJSON, 0, len(groups))
	for _, g := range groups {
		ex := exhibitJSON{
			ExhibitID: g.ExhibitID,
			Title:     titles[g.ExhibitID],
			Citations: make([]citationJSON, 0, len(g.Citations)),
		}
		for i := range g.Citations {
			c := &g.Citations[i]
			ex.Citations = append(ex.Citations, citationJSON{
				ID:              c.ID,
				SourcePage:      c.SourcePageNumber,
				DestinationPage: c.DestinationPageNumber,
				SourceText:      c.SourceText,
				ReferencedText:  c.ReferencedText,
			})
		}
		out = append(out, ex)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runCitationsDelete(cmd *cobra.Command, args []string) error {
	if workspace == nil {
		return errors.New("workspace not configured")
	}

	if err := workspace.DeleteCitation(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to delete citation: %w", err)
	}

	cmd.Printf("Deleted citation: %s\n", args[1])
	return nil
}

func pageLabel(p *int) string {
	if p == nil {
		return "?"
	}
	return fmt.Sprint(*p)
}
