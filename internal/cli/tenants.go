package cli

import (
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/spf13/cobra"
)

func newTenantsCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tenants",
		Aliases: []string{"tenant"},
		Short:   "Manage client workspaces",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants; the active one is marked with *",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			list := a.Tenants.List()
			active := a.Tenants.Active().ID
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				mark := ""
				if t.ID == active {
					mark = "*"
				}
				rows = append(rows, []string{mark, t.ID, t.Name, t.Domain, string(t.Plan), string(t.Status)})
			}
			return o.printer(cmd).table(list, []string{"", "ID", "NAME", "DOMAIN", "PLAN", "STATUS"}, rows)
		},
	}

	var add tenants.Tenant
	var plan string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a tenant and seed its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			add.Name = args[0]
			add.Plan = tenants.Plan(plan)
			t, err := a.Tenants.Add(cmd.Context(), add)
			if err != nil {
				return err
			}
			return o.printer(cmd).message("Added tenant %s (%s)", t.Name, t.ID)
		},
	}
	addCmd.Flags().StringVar(&add.ID, "id", "", "tenant id (derived from the name when empty)")
	addCmd.Flags().StringVar(&add.Domain, "domain", "", "public domain of the tenant's site")
	addCmd.Flags().StringVar(&add.LogoURL, "logo", "", "logo URL")
	addCmd.Flags().StringVar(&plan, "plan", string(tenants.PlanStarter), "Starter, Pro or Enterprise")

	useCmd := &cobra.Command{
		Use:   "use ID",
		Short: "Switch the active tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.SwitchTenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return o.printer(cmd).message("Now working on %s (%s)", t.Name, t.ID)
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a tenant and purge its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.RemoveTenant(cmd.Context(), args[0]); err != nil {
				return err
			}
			return o.printer(cmd).message("Removed tenant %s", args[0])
		},
	}

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show the active tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			t := a.Tenants.Active()
			p := o.printer(cmd)
			if p.json {
				return p.value(t)
			}
			return p.message("%s (%s)", t.Name, t.ID)
		},
	}

	cmd.AddCommand(listCmd, addCmd, useCmd, removeCmd, currentCmd)
	return cmd
}
