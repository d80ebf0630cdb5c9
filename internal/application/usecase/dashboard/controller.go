package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/application/session"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/domain/valueobject"
)

// Controller owns the dashboard state machine:
//
//	Uninitialized -> Checking -> Unauthenticated | Loading -> Ready
//
// Ready re-enters Loading on every session, month or reload event. Each load
// carries a request token and a result is applied only when its token is
// still the latest, so a slow response for a month the user already left
// never overwrites the current view.
type Controller struct {
	store      adapter.TransactionStore
	classifier adapter.CategoryClassifier
	gate       *session.Gate
	now        func() time.Time

	mu           sync.Mutex
	ctx          context.Context
	state        State
	identity     *entity.Identity
	month        time.Time
	transactions []*entity.Transaction
	total        int64
	dataWindow   valueobject.MonthWindow
	loadErr      error
	pending      *ManualEntry
	requestToken uint64
	listeners    []Listener

	background  sync.WaitGroup
	unsubscribe func()
	closed      bool
}

// NewController creates a new Controller. A nil clock defaults to time.Now.
func NewController(
	store adapter.TransactionStore,
	classifier adapter.CategoryClassifier,
	gate *session.Gate,
	now func() time.Time,
) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:      store,
		classifier: classifier,
		gate:       gate,
		now:        now,
		state:      StateUninitialized,
		month:      valueobject.FirstOfMonth(now()),
	}
}

type loadRequest struct {
	token  uint64
	owner  uuid.UUID
	window valueobject.MonthWindow
}

// Subscribe registers a listener for snapshots.
func (c *Controller) Subscribe(listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Snapshot returns the current dashboard view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Start subscribes to the session gate and activates it. Identity changes
// drive loading from then on. Calling Start again, or after Close, is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUninitialized || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.ctx = ctx
	c.state = StateChecking
	c.mu.Unlock()
	c.notify()

	unsubscribe := c.gate.Subscribe(c.onIdentityChange)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return nil
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	err := c.gate.Activate(ctx)

	c.mu.Lock()
	if c.closed {
		// Close ran while the gate was activating.
		c.mu.Unlock()
		c.gate.Deactivate()
		return nil
	}
	settled := false
	if c.state == StateChecking && c.identity == nil {
		c.state = StateUnauthenticated
		settled = true
	}
	c.mu.Unlock()
	if settled {
		c.notify()
	}

	if err != nil {
		return fmt.Errorf("failed to start dashboard: %w", err)
	}
	return nil
}

// Close detaches from the gate and deactivates it, then waits for
// background loads to finish. The gate is owned by the controller from Start
// on. Close may be called more than once, and concurrently with Start.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.gate.Deactivate()
	c.background.Wait()
}

// Wait blocks until loads started by identity changes have settled.
func (c *Controller) Wait() {
	c.background.Wait()
}

// SignOut revokes the session through the gate. The gate's transition
// clears the dashboard.
func (c *Controller) SignOut(ctx context.Context) error {
	return c.gate.SignOut(ctx)
}

// Reload fetches the displayed month again.
func (c *Controller) Reload(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.identity == nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, domainerror.ErrNoSession
	}
	req := c.beginLoadLocked()
	c.mu.Unlock()
	c.notify()

	return c.completeLoad(ctx, req)
}

// SetMonth changes the displayed month and loads it when signed in.
func (c *Controller) SetMonth(ctx context.Context, month time.Time) (Snapshot, error) {
	c.mu.Lock()
	c.month = valueobject.FirstOfMonth(month)
	if c.identity == nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify()
		return snap, nil
	}
	req := c.beginLoadLocked()
	c.mu.Unlock()
	c.notify()

	return c.completeLoad(ctx, req)
}

// NextMonth moves the displayed month forward by one.
func (c *Controller) NextMonth(ctx context.Context) (Snapshot, error) {
	return c.SetMonth(ctx, valueobject.ShiftMonth(c.currentMonth(), 1))
}

// PrevMonth moves the displayed month back by one.
func (c *Controller) PrevMonth(ctx context.Context) (Snapshot, error) {
	return c.SetMonth(ctx, valueobject.ShiftMonth(c.currentMonth(), -1))
}

// PendingEntry returns the entry whose last write failed, if any.
func (c *Controller) PendingEntry() *ManualEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	entry := *c.pending
	return &entry
}

// Submit records a manual entry for the signed-in identity. The category
// is inferred by the classifier unless ForceManual is set. On failure the
// entry stays pending and the displayed data is left untouched.
func (c *Controller) Submit(ctx context.Context, entry ManualEntry) (Snapshot, error) {
	c.mu.Lock()
	if c.state != StateReady {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, domainerror.ErrDashboardNotReady
	}
	owner := c.identity
	window := valueobject.ComputeWindow(c.month)
	pending := entry
	c.pending = &pending
	c.mu.Unlock()

	tx, err := c.buildTransaction(ctx, owner, window, entry)
	if err != nil {
		c.notify()
		return c.Snapshot(), err
	}

	if err := c.store.Append(ctx, tx); err != nil {
		slog.Error("Failed to append manual entry",
			"user_id", owner.UserID,
			"date", tx.Date,
			"error", err,
		)
		c.notify()
		return c.Snapshot(), fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.Info("Manual entry recorded",
		"user_id", owner.UserID,
		"transaction_id", tx.ID,
		"category", tx.Category,
	)

	c.mu.Lock()
	if c.pending == &pending {
		c.pending = nil
	}
	if c.identity == nil || !c.identity.SameAs(owner) {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify()
		return snap, nil
	}
	req := c.beginLoadLocked()
	c.mu.Unlock()
	c.notify()

	return c.completeLoad(ctx, req)
}

func (c *Controller) buildTransaction(
	ctx context.Context,
	owner *entity.Identity,
	window valueobject.MonthWindow,
	entry ManualEntry,
) (*entity.Transaction, error) {
	description := strings.TrimSpace(entry.Description)
	if description == "" {
		return nil, domainerror.ErrEmptyDescription
	}

	date := entry.Date
	if date == "" {
		date = c.defaultDate(window)
	}
	if _, err := valueobject.ParseDate(date); err != nil {
		return nil, domainerror.ErrInvalidTransactionDate
	}
	if !window.Contains(date) {
		return nil, domainerror.ErrDateOutsideWindow
	}

	category := entity.CategoryManual
	if !entry.ForceManual {
		category = c.classifier.Classify(ctx, description)
	}

	return entity.NewTransaction(owner.UserID, date, description, entry.Amount, category), nil
}

// defaultDate is today when today is inside the window, otherwise the first day.
func (c *Controller) defaultDate(window valueobject.MonthWindow) string {
	today := c.now().Format(entity.DateLayout)
	if window.Contains(today) {
		return today
	}
	return window.FirstDay
}

func (c *Controller) onIdentityChange(identity *entity.Identity) {
	c.mu.Lock()
	if identity == nil {
		// Invalidate any in-flight load for the previous identity.
		c.requestToken++
		c.identity = nil
		c.clearDataLocked()
		c.state = StateUnauthenticated
		c.mu.Unlock()
		c.notify()
		return
	}

	if c.closed {
		c.mu.Unlock()
		return
	}
	if !identity.SameAs(c.identity) {
		c.clearDataLocked()
	}
	c.identity = identity
	req := c.beginLoadLocked()
	ctx := c.ctx
	// Add under mu so Close never waits on a group that is still growing.
	c.background.Add(1)
	c.mu.Unlock()
	c.notify()

	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer c.background.Done()
		_, _ = c.completeLoad(ctx, req)
	}()
}

// beginLoadLocked must be called with mu held.
func (c *Controller) beginLoadLocked() loadRequest {
	c.requestToken++
	c.state = StateLoading
	return loadRequest{
		token:  c.requestToken,
		owner:  c.identity.UserID,
		window: valueobject.ComputeWindow(c.month),
	}
}

func (c *Controller) completeLoad(ctx context.Context, req loadRequest) (Snapshot, error) {
	rows, err := c.store.ListByOwnerAndRange(ctx, req.owner, req.window.FirstDay, req.window.LastDay)

	c.mu.Lock()
	if req.token != c.requestToken {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		slog.Debug("Discarding superseded dashboard load", "window", req.window.String())
		return snap, nil
	}

	c.state = StateReady
	if err != nil {
		c.loadErr = err
		snap := c.snapshotLocked()
		c.mu.Unlock()
		slog.Error("Failed to load transactions",
			"user_id", req.owner,
			"window", req.window.String(),
			"error", err,
		)
		c.notify()
		return snap, fmt.Errorf("failed to load transactions: %w", err)
	}

	c.transactions = rows
	c.total = entity.SumAmounts(rows)
	c.dataWindow = req.window
	c.loadErr = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify()
	return snap, nil
}

func (c *Controller) currentMonth() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.month
}

// clearDataLocked must be called with mu held.
func (c *Controller) clearDataLocked() {
	c.transactions = nil
	c.total = 0
	c.dataWindow = valueobject.MonthWindow{}
	c.loadErr = nil
	c.pending = nil
}

// snapshotLocked must be called with mu held.
func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        c.state,
		Identity:     c.identity,
		Month:        c.month,
		Window:       valueobject.ComputeWindow(c.month),
		Transactions: append([]*entity.Transaction(nil), c.transactions...),
		TotalAmount:  c.total,
		DataWindow:   c.dataWindow,
		LoadError:    c.loadErr,
	}
	if c.pending != nil {
		entry := *c.pending
		snap.Pending = &entry
	}
	return snap
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
