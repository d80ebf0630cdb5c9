package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakeibo/backend/internal/application/usecase/dashboard"
)

const dashboardHelp = `Commands:
  n                        next month
  p                        previous month
  g [YYYY-MM]              go to a month (current month when omitted)
  a <amount> <description> add, category guessed automatically
  m <amount> <description> add with the manual category
  s                        retry the entry that failed to save
  r                        reload
  o                        sign out and quit
  h                        help
  q                        quit`

func newDashboardCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Browse months and record transactions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ctrl, err := a.requireSignedIn(ctx)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			out := cmd.OutOrStdout()
			snap, err := showMonth(ctx, ctrl, month)
			if err != nil {
				if snap.State == "" {
					return err
				}
				fmt.Fprintf(out, "error: %v\n", err)
			}
			renderSnapshot(out, snap)
			fmt.Fprintln(out, "Type h for help.")

			return a.runDashboard(ctx, ctrl, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to open as YYYY-MM (default current month)")

	return cmd
}

// runDashboard reads one command per line until q, sign-out or end of input.
func (a *app) runDashboard(ctx context.Context, ctrl *dashboard.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		verb, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		rest = strings.TrimSpace(rest)

		var (
			snap dashboard.Snapshot
			err  error
		)
		switch verb {
		case "":
			continue
		case "q":
			return nil
		case "h", "?":
			fmt.Fprintln(out, dashboardHelp)
			continue
		case "n":
			snap, err = ctrl.NextMonth(ctx)
		case "p":
			snap, err = ctrl.PrevMonth(ctx)
		case "g":
			target, parseErr := monthArg(rest, a.now)
			if parseErr != nil {
				fmt.Fprintf(out, "error: %v\n", parseErr)
				continue
			}
			snap, err = ctrl.SetMonth(ctx, target)
		case "r":
			snap, err = ctrl.Reload(ctx)
		case "a", "m":
			entry, parseErr := parseEntry(rest, verb == "m")
			if parseErr != nil {
				fmt.Fprintf(out, "error: %v\n", parseErr)
				continue
			}
			snap, err = ctrl.Submit(ctx, entry)
		case "s":
			pending := ctrl.PendingEntry()
			if pending == nil {
				fmt.Fprintln(out, "Nothing to retry.")
				continue
			}
			snap, err = ctrl.Submit(ctx, *pending)
		case "o":
			if err := ctrl.SignOut(ctx); err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
			fmt.Fprintln(out, "Signed out")
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q, type h for help\n", verb)
			continue
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		renderSnapshot(out, snap)
	}
}

// parseEntry parses "<amount> <description>".
func parseEntry(args string, manual bool) (dashboard.ManualEntry, error) {
	rawAmount, description, _ := strings.Cut(args, " ")
	amount, err := strconv.ParseInt(strings.ReplaceAll(rawAmount, ",", ""), 10, 64)
	if err != nil {
		return dashboard.ManualEntry{}, fmt.Errorf("invalid amount %q", rawAmount)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return dashboard.ManualEntry{}, fmt.Errorf("usage: a <amount> <description>")
	}
	return dashboard.ManualEntry{Description: description, Amount: amount, ForceManual: manual}, nil
}
