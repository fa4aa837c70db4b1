package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/credstore"
	"github.com/gundriai/merovote-app/internal/domain"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the MeroVote API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmail == "" {
			return fmt.Errorf("--email is required")
		}

		password := loginPassword
		if password == "" {
			fmt.Print("Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		user, err := r.auth.Login(cmd.Context(), loginEmail, password)
		if err != nil {
			if errors.Is(err, domain.ErrAuthenticationRequired) {
				return fmt.Errorf("invalid email or password")
			}
			return fmt.Errorf("login: %w", err)
		}

		fmt.Printf("Logged in as %s.\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		if err := r.auth.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		if !credstore.IsAuthenticated(r.creds) {
			fmt.Println("Not logged in.")
			return nil
		}
		user, err := r.auth.CurrentUser()
		if err != nil {
			return fmt.Errorf("read stored user: %w", err)
		}
		if user == nil {
			fmt.Println("Logged in (no user details stored).")
			return nil
		}
		fmt.Printf("%s (%s)\n", user.Name, user.Email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
