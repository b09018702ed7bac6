// Package usage enforces the daily request quota for non-paying identities.
// The counter is advisory client-side throttling, not a security boundary:
// entitlement is decided by the host, this gate only shapes cost.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/casali/flowpilot/pkg/storage"
)

const (
	// DefaultDailyLimit is the free-tier request quota per calendar day.
	DefaultDailyLimit = 50

	// StorageKey is where the counter record lives in the injected store.
	StorageKey = "usage"

	dateLayout = "2006-01-02"
)

// Counter is the persisted quota record. Dates are UTC calendar days; the
// rollover reset happens lazily on the first access of the new day.
type Counter struct {
	DailyCount    int    `json:"dailyCount"`
	LastResetDate string `json:"lastResetDate"`
}

// Status is the outcome of one quota check.
type Status struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Premium   bool `json:"premium"`
}

// EntitlementProvider reports whether the current identity is exempt from
// the quota. The host implements it; the gate never decides entitlement.
type EntitlementProvider interface {
	IsPremium(ctx context.Context) bool
}

// EntitlementFunc adapts a function to the EntitlementProvider interface.
type EntitlementFunc func(ctx context.Context) bool

func (f EntitlementFunc) IsPremium(ctx context.Context) bool {
	return f(ctx)
}

// Gate tracks daily request counts through an injected store.
type Gate struct {
	store        storage.Storage
	entitlements EntitlementProvider
	limit        int
	logger       *slog.Logger
	now          func() time.Time
}

// NewGate creates a usage gate. A nil entitlements provider means nobody is
// exempt; a limit of 0 falls back to the default.
func NewGate(store storage.Storage, entitlements EntitlementProvider, limit int, logger *slog.Logger) *Gate {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}

	return &Gate{
		store:        store,
		entitlements: entitlements,
		limit:        limit,
		logger:       logger.With("module", "usage_gate"),
		now:          time.Now,
	}
}

// CheckAndIncrement performs the quota check for one request. The day is
// normalized first: a stale lastResetDate zeroes the counter before the
// limit is evaluated. At or over the limit nothing is mutated.
func (g *Gate) CheckAndIncrement(ctx context.Context) (*Status, error) {
	if g.entitlements != nil && g.entitlements.IsPremium(ctx) {
		return &Status{Allowed: true, Remaining: g.limit, Premium: true}, nil
	}

	counter, err := g.load(ctx)
	if err != nil {
		return nil, err
	}

	today := g.today()
	if counter.LastResetDate != today {
		counter.DailyCount = 0
		counter.LastResetDate = today
	}

	if counter.DailyCount >= g.limit {
		g.logger.Info("daily limit reached", "count", counter.DailyCount, "limit", g.limit)

		return &Status{Allowed: false, Remaining: 0}, nil
	}

	counter.DailyCount++

	if err := g.save(ctx, counter); err != nil {
		return nil, err
	}

	return &Status{Allowed: true, Remaining: g.limit - counter.DailyCount}, nil
}

// ResetIfNewDay normalizes the stored counter to the current UTC date
// without consuming a request.
func (g *Gate) ResetIfNewDay(ctx context.Context) error {
	counter, err := g.load(ctx)
	if err != nil {
		return err
	}

	today := g.today()
	if counter.LastResetDate == today {
		return nil
	}

	counter.DailyCount = 0
	counter.LastResetDate = today

	return g.save(ctx, counter)
}

// Limit returns the configured daily quota.
func (g *Gate) Limit() int {
	return g.limit
}

// Remaining reports the requests left today without consuming one.
func (g *Gate) Remaining(ctx context.Context) (int, error) {
	counter, err := g.load(ctx)
	if err != nil {
		return 0, err
	}

	if counter.LastResetDate != g.today() {
		return g.limit, nil
	}

	remaining := g.limit - counter.DailyCount
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

func (g *Gate) today() string {
	return g.now().UTC().Format(dateLayout)
}

func (g *Gate) load(ctx context.Context) (*Counter, error) {
	raw, err := g.store.Get(ctx, StorageKey)
	if storage.IsKeyNotFound(err) {
		return &Counter{LastResetDate: g.today()}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load usage counter: %w", err)
	}

	var counter Counter
	if err := json.Unmarshal(raw, &counter); err != nil {
		g.logger.Warn("corrupt usage counter, starting over", "error", err)

		return &Counter{LastResetDate: g.today()}, nil
	}

	return &counter, nil
}

func (g *Gate) save(ctx context.Context, counter *Counter) error {
	raw, err := json.Marshal(counter)
	if err != nil {
		return err
	}

	if err := g.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to persist usage counter: %w", err)
	}

	return nil
}
