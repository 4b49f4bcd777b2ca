package cli

import (
	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/spf13/cobra"
)

func newTermsCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "terms",
		Aliases: []string{"term"},
		Short:   "Manage categories and tags of the active tenant",
	}

	var listType string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			terms := a.Store.Terms()
			if listType != "" {
				terms = content.FilterTerms(terms, content.TermType(listType))
			}
			rows := make([][]string, 0, len(terms))
			for _, t := range terms {
				rows = append(rows, []string{t.ID, string(t.Type), t.Slug, t.Name, t.ParentID})
			}
			return o.printer(cmd).table(terms, []string{"ID", "TYPE", "SLUG", "NAME", "PARENT"}, rows)
		},
	}
	listCmd.Flags().StringVar(&listType, "type", "", "category or tag")

	var term content.Term
	saveCmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Create a term, or replace the one given by --id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			term.Name = args[0]
			saved, err := a.Store.UpsertTerm(cmd.Context(), term)
			if err != nil {
				return err
			}
			return o.printer(cmd).message("Saved %s %q (%s)", saved.Type, saved.Name, saved.ID)
		},
	}
	saveCmd.Flags().StringVar(&term.ID, "id", "", "id of the term to replace")
	saveCmd.Flags().StringVar((*string)(&term.Type), "type", string(content.TermCategory), "category or tag")
	saveCmd.Flags().StringVar(&term.Slug, "slug", "", "slug (derived from the name when empty)")
	saveCmd.Flags().StringVar(&term.ParentID, "parent", "", "parent category id")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.DeleteTerm(cmd.Context(), args[0]); err != nil {
				return err
			}
			return o.printer(cmd).message("Deleted %s", args[0])
		},
	}

	cmd.AddCommand(listCmd, saveCmd, deleteCmd)
	return cmd
}
