package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakeibo/backend/internal/domain/entity"
)

var errNotSignedIn = errors.New("not signed in, run `kakeibo login` first")

func newRegisterCommand(a *app) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = promptLine(cmd, "Password: "); err != nil {
					return err
				}
			}

			identity, err := a.provider.Register(cmd.Context(), email, name, password)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			printSignedIn(cmd.OutOrStdout(), identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = promptLine(cmd, "Password: "); err != nil {
					return err
				}
			}

			identity, err := a.provider.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			printSignedIn(cmd.OutOrStdout(), identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginGoogleCommand(a *app) *cobra.Command {
	var idToken string

	cmd := &cobra.Command{
		Use:   "login-google",
		Short: "Sign in with a Google ID token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := a.provider.LoginWithGoogle(cmd.Context(), idToken)
			if err != nil {
				return fmt.Errorf("google sign-in: %w", err)
			}
			printSignedIn(cmd.OutOrStdout(), identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&idToken, "id-token", "", "Google ID token (required)")
	_ = cmd.MarkFlagRequired("id-token")

	return cmd
}

func newLoginLinkCommand(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login-link",
		Short: "Email a one-time sign-in link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := a.provider.RequestLoginLink(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `kakeibo verify-link --token <token>` with the token from the link.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newVerifyLinkCommand(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "verify-link",
		Short: "Sign in with the token from an emailed link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := a.provider.VerifyLoginLink(cmd.Context(), strings.TrimSpace(token))
			if err != nil {
				return fmt.Errorf("verify sign-in link: %w", err)
			}
			printSignedIn(cmd.OutOrStdout(), identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "sign-in link token (required)")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.provider.SignOut(cmd.Context()); err != nil {
				// Local credentials are already gone at this point.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := a.provider.CurrentIdentity(cmd.Context())
			if err != nil {
				return err
			}
			if identity == nil {
				return errNotSignedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", describeIdentity(identity))
			return nil
		},
	}
}

func printSignedIn(w io.Writer, identity *entity.Identity) {
	fmt.Fprintf(w, "Signed in as %s\n", describeIdentity(identity))
}

func describeIdentity(identity *entity.Identity) string {
	if identity.Name != "" {
		return fmt.Sprintf("%s <%s> (%s)", identity.Name, identity.Email, identity.UserID)
	}
	return fmt.Sprintf("%s (%s)", identity.Email, identity.UserID)
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
