package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/user"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer company users (admin only)",
}

// requireAdmin loads the session and rejects non-admin actors before any
// gateway call is made.
func requireAdmin(deps *cliDeps) (*user.User, error) {
	current, err := deps.Auth.CurrentUser()
	if err != nil {
		return nil, err
	}
	if current.Actor().Role.String() != "admin" {
		return nil, internal.ErrAdminRequired
	}
	return current, nil
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the company's users",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		current, err := requireAdmin(deps)
		if err != nil {
			return err
		}

		service := user.NewService(deps.Gateway, deps.Logger)
		users, err := service.List(cmd.Context(), current.CompanyName())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tNAME\tROLE\tCOMPANY")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Username, u.Name, u.Role, u.CompanyName())
		}
		return w.Flush()
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <username> <role>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		if _, err := requireAdmin(deps); err != nil {
			return err
		}

		service := user.NewService(deps.Gateway, deps.Logger)
		if err := service.UpdateRole(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("role of %s set to %s\n", args[0], args[1])
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		if _, err := requireAdmin(deps); err != nil {
			return err
		}

		service := user.NewService(deps.Gateway, deps.Logger)
		if err := service.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("user %s deleted\n", args[0])
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSetRoleCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}
