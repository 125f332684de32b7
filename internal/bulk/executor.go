package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/relist-app/relist/internal/api"
	"github.com/relist-app/relist/internal/models"
)

// Action is a user-requested operation applied independently to every
// member of a selection set.
type Action string

const (
	ActionPublish Action = "publish"
	ActionDelete  Action = "delete"
)

var ErrNoSelection = errors.New("no drafts selected")

// DraftActor performs the per-draft remote calls behind a bulk action.
// Satisfied by *api.Client.
type DraftActor interface {
	PublishDraft(ctx context.Context, draftID string) (*api.PublishResult, error)
	DeleteDraft(ctx context.Context, draftID string) error
}

// Reloader resynchronizes the draft collection after a bulk action. Some ids
// may have succeeded and some failed, so a full refetch is the only correct
// recovery; no optimistic local patching.
type Reloader interface {
	ClearSelection()
	Load(ctx context.Context, status models.DraftStatus) error
}

// Result summarizes one bulk run.
type Result struct {
	Action       Action
	SuccessCount int
	ErrorCount   int
}

// Executor applies one action across a selection snapshot. Per-item calls
// run independently: a failure is counted and logged but never aborts the
// remaining items.
type Executor struct {
	Actor       DraftActor
	Store       Reloader
	Concurrency int
	// Limiter throttles per-item marketplace calls so a large selection
	// does not trip the marketplace's rate limits. Optional.
	Limiter *rate.Limiter
}

// NewExecutor creates an executor with the given per-run concurrency bound
// and request rate.
func NewExecutor(actor DraftActor, store Reloader, concurrency int, ratePerSec float64) *Executor {
	if concurrency <= 0 {
		concurrency = 1
	}
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), concurrency)
	}
	return &Executor{
		Actor:       actor,
		Store:       store,
		Concurrency: concurrency,
		Limiter:     limiter,
	}
}

// Execute runs the action over an immutable snapshot of ids. Once every id
// has been attempted it clears the selection and performs exactly one
// collection reload, regardless of the success/failure split.
func (e *Executor) Execute(ctx context.Context, action Action, ids []string) (*Result, error) {
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	if action != ActionPublish && action != ActionDelete {
		return nil, fmt.Errorf("unknown bulk action: %s", action)
	}

	// Work on our own copy so later selection changes cannot reach an
	// in-flight run.
	snapshot := make([]string, len(ids))
	copy(snapshot, ids)

	slog.Info("Starting bulk action", "action", action, "count", len(snapshot))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.Concurrency)
	errsChan := make(chan error, len(snapshot))

	for _, id := range snapshot {
		wg.Add(1)
		go func(draftID string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			errsChan <- e.applyOne(ctx, action, draftID)
		}(id)
	}

	go func() {
		wg.Wait()
		close(errsChan)
	}()

	// Aggregating through the channel serializes the counter updates.
	result := &Result{Action: action}
	for err := range errsChan {
		if err != nil {
			result.ErrorCount++
		} else {
			result.SuccessCount++
		}
	}

	slog.Info("Bulk action finished",
		"action", action,
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount)

	// Selection is cleared and the cache resynced no matter how the run
	// went. A reload failure does not invalidate the per-item tallies.
	e.Store.ClearSelection()
	if err := e.Store.Load(ctx, ""); err != nil {
		slog.Error("Failed to reload drafts after bulk action", "err", err)
	}

	return result, nil
}

func (e *Executor) applyOne(ctx context.Context, action Action, draftID string) error {
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var err error
	switch action {
	case ActionPublish:
		_, err = e.Actor.PublishDraft(ctx, draftID)
	case ActionDelete:
		err = e.Actor.DeleteDraft(ctx, draftID)
	}
	if err != nil {
		// Which id failed is logged here but surfaced to the user only
		// as a count.
		slog.Error("Bulk item failed", "action", action, "draft_id", draftID, "err", err)
	}
	return err
}
