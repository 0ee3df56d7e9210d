package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var loginToken string

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "backend API token")
	loginCmd.MarkFlagRequired("token")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a backend API token as the console session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.sessions.Login(cmd.Context(), loginToken)
		if err != nil {
			return err
		}

		subject := session.Subject
		if subject == "" {
			subject = "unknown subject"
		}
		if session.ExpiresAt != nil {
			printf(cmd, "Signed in as %s until %s\n", subject, session.ExpiresAt.Format(time.RFC3339))
			return nil
		}
		printf(cmd, "Signed in as %s\n", subject)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the console session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		printf(cmd, "Signed out\n")
		return nil
	},
}
