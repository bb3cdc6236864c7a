package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newSignInCmd(opts *options) *cobra.Command {
	var creds service.Credentials

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		Example: `  sketchctl signin --email ada@example.com
  echo "$PASSWORD" | sketchctl signin --email ada@example.com`,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			return submitAuth(cmd, e, service.AuthSignIn, creds)
		}),
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newSignUpCmd(opts *options) *cobra.Command {
	var creds service.Credentials

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			return submitAuth(cmd, e, service.AuthSignUp, creds)
		}),
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Username, "username", "", "display name")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("username")
	return cmd
}

func submitAuth(cmd *cobra.Command, e *env, mode service.AuthMode, creds service.Credentials) error {
	if creds.Password == "" {
		pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		creds.Password = pw
	}

	session, err := e.ws.Auth.Submit(cmd.Context(), mode, creds)
	if err != nil {
		return reported(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (id %d)\n", session.Username, session.UserID)
	return nil
}

// readPassword reads without echo from a terminal, or one line from any
// other input.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session (history is kept)",
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			return reported(e.ws.Auth.Logout(cmd.Context()))
		}),
	}
}

func newWhoAmICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			out := cmd.OutOrStdout()
			session, err := e.ws.Auth.Current(cmd.Context())
			if errors.Is(err, domain.ErrNoSession) {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "User:     %s (id %d)\n", session.Username, session.UserID)
			if info, err := service.InspectToken(session.Token); err == nil && !info.ExpiresAt.IsZero() {
				if ttl := service.TokenTTL(info, time.Now()); ttl > 0 {
					fmt.Fprintf(out, "Expires:  %s (in %s)\n", info.ExpiresAt.Local().Format(time.DateTime), ttl.Truncate(time.Second))
				} else {
					fmt.Fprintln(out, "Expires:  expired")
				}
			}

			profile, err := e.ws.Auth.Profile(cmd.Context())
			if err != nil {
				var authErr *domain.AuthenticationError
				if errors.As(err, &authErr) {
					fmt.Fprintf(out, "Backend:  session rejected (%s)\n", authErr.Message)
					return nil
				}
				return fmt.Errorf("fetch profile: %w", err)
			}
			fmt.Fprintf(out, "Email:    %s\n", profile.Email)
			if profile.CreatedAt != "" {
				fmt.Fprintf(out, "Created:  %s\n", profile.CreatedAt)
			}
			return nil
		}),
	}
}
