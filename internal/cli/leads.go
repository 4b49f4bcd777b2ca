package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/spf13/cobra"
)

func newLeadsCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leads",
		Aliases: []string{"lead"},
		Short:   "Manage the sales pipeline of the active tenant",
	}

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			items := a.Store.Leads()
			if status != "" {
				filtered := items[:0]
				for _, l := range items {
					if string(l.Status) == status {
						filtered = append(filtered, l)
					}
				}
				items = filtered
			}
			rows := make([][]string, 0, len(items))
			for _, l := range items {
				rows = append(rows, []string{l.ID, string(l.Status), l.Name, l.Email, l.Company, l.Source, l.CreatedAt.Format("2006-01-02")})
			}
			return o.printer(cmd).table(items, []string{"ID", "STATUS", "NAME", "EMAIL", "COMPANY", "SOURCE", "DATE"}, rows)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "only leads in this stage")

	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Count leads per pipeline stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			counts := leads.CountByStatus(a.Store.Leads())
			rows := make([][]string, 0, len(leads.Statuses))
			for _, s := range leads.Statuses {
				rows = append(rows, []string{string(s), fmt.Sprint(counts[s])})
			}
			return o.printer(cmd).table(counts, []string{"STAGE", "LEADS"}, rows)
		},
	}

	var lead leads.Lead
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Add a lead, or replace the one given by --id",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := a.Store.UpsertLead(cmd.Context(), lead)
			if err != nil {
				return err
			}
			return o.printer(cmd).message("Saved lead %s (%s)", saved.Name, saved.ID)
		},
	}
	fl := saveCmd.Flags()
	fl.StringVar(&lead.ID, "id", "", "id of the lead to replace")
	fl.StringVar(&lead.Name, "name", "", "contact name")
	fl.StringVar(&lead.Email, "email", "", "contact email")
	fl.StringVar(&lead.Phone, "phone", "", "phone number")
	fl.StringVar(&lead.Company, "company", "", "company")
	fl.StringVar(&lead.Message, "message", "", "message")
	fl.StringVar(&lead.Source, "source", "", "where the lead came from (default Manual)")
	fl.StringVar(&lead.Notes, "notes", "", "internal notes")
	fl.StringVar((*string)(&lead.Status), "status", "", "pipeline stage (default new)")

	statusCmd := &cobra.Command{
		Use:   "status ID STAGE",
		Short: "Move a lead to another pipeline stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.SetLeadStatus(cmd.Context(), args[0], leads.Status(args[1])); err != nil {
				return err
			}
			return o.printer(cmd).message("Lead %s is now %s", args[0], args[1])
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.DeleteLead(cmd.Context(), args[0]); err != nil {
				return err
			}
			return o.printer(cmd).message("Deleted %s", args[0])
		},
	}

	var format, out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export leads as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			switch format {
			case "csv":
				return leads.WriteCSV(w, a.Store.Leads())
			case "xlsx":
				if out == "" {
					return fmt.Errorf("--out is required for xlsx")
				}
				return leads.WriteXLSX(w, a.Store.Leads())
			}
			return fmt.Errorf("unsupported export format %q", format)
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	cmd.AddCommand(listCmd, boardCmd, saveCmd, statusCmd, deleteCmd, exportCmd)
	return cmd
}
