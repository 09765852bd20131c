package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robby/lostfound/internal/auth"
	"github.com/spf13/cobra"
)

func (e *env) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	return prompt(e.in, e.out, "Password")
}

func newRegisterCmd(e *env) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
				return errors.New("--name and --email are required")
			}
			pw, err := e.password(password)
			if err != nil {
				return err
			}
			if len(pw) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			ack, err := await(cmd.Context(), e.auth.Register(strings.TrimSpace(name), strings.TrimSpace(email), pw))
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, messageOr(ack.Message, "Account created"))
			fmt.Fprintln(e.out, "Run 'lostfound login' to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLoginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			pw, err := e.password(password)
			if err != nil {
				return err
			}
			sess, err := await(cmd.Context(), e.auth.Login(strings.TrimSpace(email), pw))
			if err != nil {
				return err
			}
			who := sess.User.Name
			if who == "" {
				who = sess.User.Email
			}
			fmt.Fprintf(e.out, "Logged in as %s\n", who)
			if sess.ExpiresAt != nil {
				fmt.Fprintf(e.out, "Session expires %s\n", sess.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, sessErr := e.auth.Session()
			if sessErr != nil && !errors.Is(sessErr, auth.ErrNotLoggedIn) {
				return sessErr
			}
			user, err := await(cmd.Context(), e.auth.Me())
			if err != nil {
				if errors.Is(sessErr, auth.ErrNotLoggedIn) {
					return fmt.Errorf("%w: run 'lostfound login' first", auth.ErrNotLoggedIn)
				}
				return err
			}
			fmt.Fprintf(e.out, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			if sessErr == nil && sess.ExpiresAt != nil {
				fmt.Fprintf(e.out, "Session expires %s\n", sess.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}
