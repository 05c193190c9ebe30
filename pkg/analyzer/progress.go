package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc receives one call per source unit loaded. total is zero when
// the caller never announced it.
type ProgressFunc func(done, total int, path string)

// Tracker counts loaded units for a single load pass. Safe for concurrent
// use.
type Tracker struct {
	total  atomic.Int64
	done   atomic.Int64
	report ProgressFunc
}

func NewTracker(report ProgressFunc) *Tracker {
	return &Tracker{report: report}
}

// SetTotal announces how many units the pass will load.
func (t *Tracker) SetTotal(n int) {
	t.total.Store(int64(n))
}

// Tick records that path finished loading, successfully or not.
func (t *Tracker) Tick(path string) {
	done := t.done.Add(1)
	if t.report != nil {
		t.report(int(done), int(t.total.Load()), path)
	}
}

func (t *Tracker) Current() int { return int(t.done.Load()) }

func (t *Tracker) Total() int { return int(t.total.Load()) }

// Remaining is the number of announced units not yet ticked, never negative.
func (t *Tracker) Remaining() int {
	return max(0, t.Total()-t.Current())
}

type trackerKey struct{}

// WithTracker attaches t to ctx for the file loaders.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker attached to ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
