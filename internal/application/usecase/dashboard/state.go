// Package dashboard contains the monthly dashboard controller that drives
// the presentation side of the ledger.
package dashboard

import (
	"time"

	"github.com/kakeibo/backend/internal/domain/entity"
	"github.com/kakeibo/backend/internal/domain/valueobject"
)

// State is the lifecycle state of the dashboard.
type State string

// Dashboard states.
const (
	StateUninitialized   State = "uninitialized"
	StateChecking        State = "checking"
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateReady           State = "ready"
)

// ManualEntry is a transaction the user typed in on the dashboard.
type ManualEntry struct {
	Date        string // YYYY-MM-DD; empty means today when today is in the displayed month
	Description string
	Amount      int64
	// ForceManual records the category as the user-forced sentinel instead of classifying.
	ForceManual bool
}

// Snapshot is an immutable view of the dashboard handed to the presentation layer.
type Snapshot struct {
	State    State
	Identity *entity.Identity
	Month    time.Time
	Window   valueobject.MonthWindow

	// Transactions and TotalAmount belong to DataWindow, which lags Window
	// while a load is in flight or after a failed read.
	Transactions []*entity.Transaction
	TotalAmount  int64
	DataWindow   valueobject.MonthWindow

	// LoadError is the last read failure. Previously loaded data is kept.
	LoadError error
	// Pending is the entry whose write failed, kept so the user can retry.
	Pending *ManualEntry
}

// Listener receives a snapshot after every observable change.
type Listener func(Snapshot)
