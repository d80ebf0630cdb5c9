// Package error defines domain-specific errors for the household ledger.
package error

import "errors"

// Dashboard domain errors raised by the presentation-side controller.
var (
	// ErrNoSession is returned when an operation needs an identity and none is signed in.
	ErrNoSession = errors.New("no active session")

	// ErrDashboardNotReady is returned when a manual entry is submitted outside the Ready state.
	ErrDashboardNotReady = errors.New("dashboard is not ready")

	// ErrDateOutsideWindow is returned when a manual entry date falls outside the displayed month.
	ErrDateOutsideWindow = errors.New("date is outside the displayed month")
)
