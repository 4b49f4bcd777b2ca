package cli

import (
	"fmt"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/sessions"
	"github.com/matteuzdev/VerbAI-Studio/users"
	"github.com/spf13/cobra"
)

func newLoginCommand(o *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the studio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			s, err := a.Sessions.Authenticate(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return o.printer(cmd).value(s)
			}
			return o.printer(cmd).message("Signed in as %s (%s)", s.Name, s.Role)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the studio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			return o.printer(cmd).message("Signed out")
		},
	}
}

func newWhoamiCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			s := a.Sessions.Current()
			if s == nil {
				return errors.ErrSessionNotFound
			}
			if o.jsonOut {
				return o.printer(cmd).value(s)
			}
			return o.printer(cmd).message("%s <%s> %s", s.Name, s.Email, s.Role)
		},
	}
}

func newProfileCommand(o *options) *cobra.Command {
	var name, avatar string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the name or avatar of the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			patch := sessions.ProfilePatch{
				Name:      changedString(cmd.Flags().Changed("name"), name),
				AvatarURL: changedString(cmd.Flags().Changed("avatar"), avatar),
			}
			s, err := a.Sessions.UpdateProfile(cmd.Context(), patch)
			if err != nil {
				return err
			}
			if err := a.Users.Save(a.Config.GetCredentialsFile()); err != nil {
				return err
			}
			return o.printer(cmd).value(s)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar image URL")
	return cmd
}

func newUsersCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage the studio team",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.Users.List()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, u := range list {
				rows = append(rows, []string{u.Email, u.Name, string(u.Role)})
			}
			return o.printer(cmd).table(list, []string{"EMAIL", "NAME", "ROLE"}, rows)
		},
	}

	var name, role, password string
	addCmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Add a user or reset an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := users.ValidatePasswordStrength(password); err != nil {
				return errors.Wrapf(errors.ErrWeakPassword, "%s", err.Error())
			}
			hash, err := users.HashPassword(password)
			if err != nil {
				return err
			}
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			u := &users.User{Email: args[0], Name: name, Role: users.RoleType(role), PasswordHash: hash}
			if err := a.Users.Upsert(u); err != nil {
				return err
			}
			if err := a.Users.Save(a.Config.GetCredentialsFile()); err != nil {
				return err
			}
			return o.printer(cmd).message("Saved %s", users.NormalizeEmail(args[0]))
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "display name")
	addCmd.Flags().StringVar(&role, "role", string(users.RoleEditor), "super_admin, admin or editor")
	addCmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = addCmd.MarkFlagRequired("password")

	removeCmd := &cobra.Command{
		Use:   "remove EMAIL",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if s := a.Sessions.Current(); s != nil && s.Email == users.NormalizeEmail(args[0]) {
				return fmt.Errorf("cannot remove the signed in user %s", s.Email)
			}
			if err := a.Users.Delete(args[0]); err != nil {
				return err
			}
			if err := a.Users.Save(a.Config.GetCredentialsFile()); err != nil {
				return err
			}
			return o.printer(cmd).message("Removed %s", users.NormalizeEmail(args[0]))
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd)
	return cmd
}
