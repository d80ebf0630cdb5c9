// Package cli implements the kakeibo command-line client: sign-in commands
// against the API and a monthly dashboard driven by the session gate.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kakeibo/backend/config"
	"github.com/kakeibo/backend/internal/application/session"
	"github.com/kakeibo/backend/internal/application/usecase/dashboard"
	"github.com/kakeibo/backend/internal/integration/apiclient"
)

// app carries what every subcommand shares. It is populated in the root's
// PersistentPreRunE once flags are parsed.
type app struct {
	cfg     config.ClientConfig
	now     func() time.Time
	verbose bool

	client   *apiclient.Client
	provider *apiclient.AuthProvider
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(cfg config.ClientConfig) *cobra.Command {
	return newRootCommand(cfg, time.Now)
}

func newRootCommand(cfg config.ClientConfig, now func() time.Time) *cobra.Command {
	a := &app{cfg: cfg, now: now}

	rootCmd := &cobra.Command{
		Use:   "kakeibo",
		Short: "Household ledger with automatic spending categories",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&a.cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "base URL of the Kakeibo API")

	rootCmd.AddCommand(
		newRegisterCommand(a),
		newLoginCommand(a),
		newLoginGoogleCommand(a),
		newLoginLinkCommand(a),
		newVerifyLinkCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newShowCommand(a),
		newAddCommand(a),
		newCategoriesCommand(a),
		newDashboardCommand(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", a.cfg.LogLevel, err)
		}
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	a.client = apiclient.NewClient(a.cfg.APIBaseURL, a.cfg.Timeout, apiclient.NewFileCredentialStore(a.cfg.CredentialsPath))
	a.provider = apiclient.NewAuthProvider(a.client)
	slog.Debug("Client configured", "api_url", a.cfg.APIBaseURL, "credentials", a.cfg.CredentialsPath)
	return nil
}

// openDashboard starts a dashboard controller behind a fresh session gate and
// waits for the initial load. The caller must Close the controller, which
// also releases the gate's provider subscription.
func (a *app) openDashboard(ctx context.Context) (*dashboard.Controller, error) {
	gate := session.NewGate(a.provider)
	ctrl := dashboard.NewController(
		apiclient.NewTransactionStore(a.client),
		apiclient.NewClassifier(a.client),
		gate,
		a.now,
	)

	if err := ctrl.Start(ctx); err != nil {
		ctrl.Close()
		return nil, err
	}
	ctrl.Wait()
	return ctrl, nil
}

// requireSignedIn opens the dashboard and fails when no identity is signed in.
func (a *app) requireSignedIn(ctx context.Context) (*dashboard.Controller, error) {
	ctrl, err := a.openDashboard(ctx)
	if err != nil {
		return nil, err
	}
	if ctrl.Snapshot().Identity == nil {
		ctrl.Close()
		return nil, errNotSignedIn
	}
	return ctrl, nil
}
