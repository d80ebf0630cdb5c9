package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/kakeibo/backend/internal/application/usecase/dashboard"
	"github.com/kakeibo/backend/internal/domain/valueobject"
)

// renderSnapshot writes the month header, the transaction table and the total.
func renderSnapshot(w io.Writer, snap dashboard.Snapshot) {
	header := valueobject.FormatMonth(snap.Month)
	if snap.Identity != nil {
		header += "  " + snap.Identity.Email
	}
	fmt.Fprintln(w, header)

	switch snap.State {
	case dashboard.StateUnauthenticated:
		fmt.Fprintln(w, "Not signed in.")
		return
	case dashboard.StateLoading:
		fmt.Fprintln(w, "Loading...")
	}

	if snap.DataWindow != snap.Window && snap.DataWindow.FirstDay != "" {
		fmt.Fprintf(w, "(showing %s)\n", snap.DataWindow.String())
	}

	if len(snap.Transactions) == 0 {
		fmt.Fprintln(w, "No transactions.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
		for _, t := range snap.Transactions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Date, formatYen(t.Amount), t.Category, t.Description)
		}
		_ = tw.Flush()
	}
	fmt.Fprintf(w, "Total: %s\n", formatYen(snap.TotalAmount))

	if snap.LoadError != nil {
		fmt.Fprintf(w, "Could not refresh: %v\n", snap.LoadError)
	}
	if snap.Pending != nil {
		fmt.Fprintf(w, "Not saved: %s %s (retry with `s`)\n", formatYen(snap.Pending.Amount), snap.Pending.Description)
	}
}

func formatYen(amount int64) string {
	if amount < 0 {
		return "-¥" + humanize.Comma(-amount)
	}
	return "¥" + humanize.Comma(amount)
}
