package poller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/relist-app/relist/internal/models"
)

// State is the poller's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ErrAlreadyPolling is returned by Start while a poll loop is running.
// Two concurrent pollers for the same view are not a supported state.
var ErrAlreadyPolling = errors.New("poller already running")

// JobFetcher fetches the current status of a job.
type JobFetcher interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

// Poller watches one analysis job until it reaches a terminal state.
// Polls are serialized by construction: the next request is scheduled only
// after the previous one resolves, so at most one is ever outstanding.
// The interval is fixed; a single client performs at most one concurrent
// poll against a cheap status lookup, so no backoff is applied.
type Poller struct {
	Fetcher  JobFetcher
	Interval time.Duration
	// Grace is the pause between observing completion and invoking
	// OnCompleted, giving the progress display a beat at 100%.
	Grace time.Duration

	// OnProgress receives the clamped progress percentage on every poll.
	OnProgress func(percent int)
	// OnCompleted fires once after the job completes and the grace delay
	// elapses. The caller clears upload state and reloads drafts here.
	OnCompleted func()
	// OnFailed fires once with the user-visible failure message.
	OnFailed func(message string)

	mu           sync.Mutex
	state        State
	lastProgress int
	cancel       context.CancelFunc
	done         chan struct{}
}

// New creates a poller over the given fetcher with a fixed poll interval.
func New(fetcher JobFetcher, interval time.Duration) *Poller {
	return &Poller{
		Fetcher:  fetcher,
		Interval: interval,
		Grace:    1500 * time.Millisecond,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Progress returns the last displayed progress percentage.
func (p *Poller) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastProgress
}

// Done is closed when the poll loop exits, for whatever reason.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Start begins polling the given job. It returns ErrAlreadyPolling if a
// loop is already running; callers must Stop (or wait for a terminal state)
// before starting another job.
func (p *Poller) Start(ctx context.Context, jobID string) error {
	p.mu.Lock()
	if p.state == StatePolling {
		p.mu.Unlock()
		return ErrAlreadyPolling
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.state = StatePolling
	p.lastProgress = 0
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		p.run(loopCtx, jobID)
	}()

	return nil
}

// Stop cancels the poll loop and waits for it to exit. Safe to call in any
// state, including repeatedly.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (p *Poller) run(ctx context.Context, jobID string) {
	for {
		job, err := p.Fetcher.GetJob(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				p.setState(StateIdle)
				return
			}
			// A transport error while polling is terminal, same as a
			// reported job failure. Flagged behavior: a transient blip
			// aborts monitoring of an otherwise-healthy job.
			slog.Error("Job status request failed", "job_id", jobID, "err", err)
			p.fail(err.Error())
			return
		}

		switch job.Status {
		case models.JobStatusCompleted:
			p.updateProgress(100)
			p.setState(StateCompleted)
			slog.Info("Job completed", "job_id", jobID)
			if !p.sleep(ctx, p.Grace) {
				return
			}
			if p.OnCompleted != nil {
				p.OnCompleted()
			}
			return
		case models.JobStatusFailed:
			message := strings.Join(job.Errors, "; ")
			if message == "" {
				message = "batch analysis failed"
			}
			slog.Error("Job failed", "job_id", jobID, "errors", len(job.Errors))
			p.fail(message)
			return
		default:
			p.updateProgress(job.ProgressPercent)
			if !p.sleep(ctx, p.Interval) {
				return
			}
		}
	}
}

// updateProgress clamps the displayed percentage so it never moves backward,
// even if the server reports a smaller number mid-sequence.
func (p *Poller) updateProgress(percent int) {
	p.mu.Lock()
	if percent < p.lastProgress {
		percent = p.lastProgress
	}
	if percent > 100 {
		percent = 100
	}
	p.lastProgress = percent
	p.mu.Unlock()

	if p.OnProgress != nil {
		p.OnProgress(percent)
	}
}

func (p *Poller) fail(message string) {
	p.setState(StateFailed)
	if p.OnFailed != nil {
		p.OnFailed(message)
	}
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// sleep waits for d or until the context is cancelled. Returns false on
// cancellation, after resetting the poller to idle.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		p.setState(StateIdle)
		return false
	case <-timer.C:
		return true
	}
}
