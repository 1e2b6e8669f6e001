package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Manage cases",
	Long: `List, create, rename or delete the cases documents are uploaded into.
The ID printed here is what --case and $CITEDOCK_CASE expect.`,
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases",
	Args:  cobra.NoArgs,
	RunE:  runCasesList,
}

var casesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a case",
	Long: `Create a case and print its ID.

Examples:
  citedock cases create --title "Smith v. Jones"
  citedock cases create --title "Smith v. Jones" --description "Contract dispute"`,
	Args: cobra.NoArgs,
	RunE: runCasesCreate,
}

var casesUpdateCmd = &cobra.Command{
	Use:   "update [case-id]",
	Short: "Change the title or description of a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runCasesUpdate,
}

var casesDeleteCmd = &cobra.Command{
	Use:   "delete [case-id]",
	Short: "Delete a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runCasesDelete,
}

// Case flags shared by create and update.
var (
	caseTitle       string
	caseDescription string
)

func init() {
	casesCreateCmd.Flags().StringVar(&caseTitle, "title", "", "Case title (required)")
	casesCreateCmd.Flags().StringVarP(&caseDescription, "description", "d", "", "Case description")
	casesUpdateCmd.Flags().StringVar(&caseTitle, "title", "", "New title")
	casesUpdateCmd.Flags().StringVarP(&caseDescription, "description", "d", "", "New description")

	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(casesUpdateCmd)
	casesCmd.AddCommand(casesDeleteCmd)
	rootCmd.AddCommand(casesCmd)
}

func runCasesList(cmd *cobra.Command, _ []string) error {
	if caseService == nil {
		return errors.New("case service not configured")
	}

	cases, err := caseService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		cmd.Println("No cases found. Create one with 'citedock cases create --title <title>'.")
		return nil
	}

	for _, c := range cases {
		cmd.Printf("%s  %s\n", c.ID, c.Title)
		if c.Description != "" {
			cmd.Printf("    %s\n", c.Description)
		}
		cmd.Printf("    %d documents, %d citations", c.DocumentsCount, c.CitationsCount)
		if !c.CreatedAt.IsZero() {
			cmd.Printf(", created %s", c.CreatedAt.Format("2006-01-02"))
		}
		cmd.Println()
	}
	cmd.Printf("\nTotal: %d cases\n", len(cases))
	return nil
}

func runCasesCreate(cmd *cobra.Command, _ []string) error {
	if caseService == nil {
		return errors.New("case service not configured")
	}

	created, err := caseService.Create(cmd.Context(), domain.NewCase{
		Title:       caseTitle,
		Description: caseDescription,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Created case: %s (%s)\n", created.Title, created.ID)
	return nil
}

func runCasesUpdate(cmd *cobra.Command, args []string) error {
	if caseService == nil {
		return errors.New("case service not configured")
	}

	var update domain.CaseUpdate
	if cmd.Flags().Changed("title") {
		title := caseTitle
		update.Title = &title
	}
	if cmd.Flags().Changed("description") {
		description := caseDescription
		update.Description = &description
	}
	if update.Title == nil && update.Description == nil {
		return errors.New("pass --title or --description")
	}

	updated, err := caseService.Update(cmd.Context(), args[0], update)
	if err != nil {
		return err
	}

	cmd.Printf("Updated case: %s (%s)\n", updated.Title, updated.ID)
	return nil
}

func runCasesDelete(cmd *cobra.Command, args []string) error {
	if caseService == nil {
		return errors.New("case service not configured")
	}

	if err := caseService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}

	cmd.Printf("Deleted case: %s\n", args[0])
	return nil
}
