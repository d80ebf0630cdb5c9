package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kakeibo/backend/internal/application/usecase/dashboard"
	"github.com/kakeibo/backend/internal/domain/valueobject"
	"github.com/kakeibo/backend/internal/integration/apiclient"
)

func newShowCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the transactions of a month with their total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ctrl, err := a.requireSignedIn(ctx)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			snap, err := showMonth(ctx, ctrl, month)
			if err != nil {
				return err
			}
			renderSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default current month)")

	return cmd
}

func newAddCommand(a *app) *cobra.Command {
	var (
		description string
		amount      int64
		date        string
		month       string
		manual      bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction, categorized automatically unless --manual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// A date without an explicit month selects the month it falls in.
			if month == "" && date != "" {
				parsed, err := valueobject.ParseDate(date)
				if err != nil {
					return err
				}
				month = valueobject.FormatMonth(parsed)
			}

			ctrl, err := a.requireSignedIn(ctx)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if _, err := showMonth(ctx, ctrl, month); err != nil {
				return err
			}

			snap, err := ctrl.Submit(ctx, dashboard.ManualEntry{
				Date:        date,
				Description: description,
				Amount:      amount,
				ForceManual: manual,
			})
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Recorded.")
			renderSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "what the money was spent on (required)")
	cmd.Flags().Int64VarP(&amount, "amount", "a", 0, "amount in yen (required)")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today within the month)")
	cmd.Flags().StringVar(&month, "month", "", "month to record into as YYYY-MM")
	cmd.Flags().BoolVar(&manual, "manual", false, "skip automatic categorization")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newCategoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the spending categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := apiclient.NewClassifier(a.client).Categories(cmd.Context())
			if err != nil {
				if errors.Is(err, apiclient.ErrNotSignedIn) {
					return errNotSignedIn
				}
				return fmt.Errorf("list categories: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, label := range list.Categories {
				fmt.Fprintln(out, label)
			}
			fmt.Fprintf(out, "%s (when no category could be guessed)\n", list.Fallback)
			fmt.Fprintf(out, "%s (recorded with --manual)\n", list.Manual)
			return nil
		},
	}
}

// showMonth switches the controller to month (YYYY-MM) unless it is empty,
// and returns the resulting snapshot. A failed read is an error.
func showMonth(ctx context.Context, ctrl *dashboard.Controller, month string) (dashboard.Snapshot, error) {
	if month == "" {
		snap := ctrl.Snapshot()
		if snap.LoadError != nil {
			return snap, fmt.Errorf("failed to load transactions: %w", snap.LoadError)
		}
		return snap, nil
	}

	target, err := valueobject.ParseMonth(month)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	return ctrl.SetMonth(ctx, target)
}

// monthArg parses an optional YYYY-MM argument, defaulting to now.
func monthArg(value string, now func() time.Time) (time.Time, error) {
	if value == "" {
		return valueobject.FirstOfMonth(now()), nil
	}
	return valueobject.ParseMonth(value)
}
