package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in to the gateway and store the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}

		password := loginPassword
		if password == "" {
			fmt.Print("Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		u, err := deps.Auth.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		fmt.Printf("logged in as %s (%s)\n", u.Username, u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		if err := deps.Auth.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
}
