// Package task runs one check at a time on a worker goroutine and streams
// its progress and report lines to a polling consumer.
package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/drc"
	"github.com/OpenTraceLab/padcheck/pkg/report"
)

// ErrBusy is returned by Start while another task is running.
var ErrBusy = errors.New("a check is already running")

// DefaultInterval is the polling period used when Poll is given zero.
const DefaultInterval = 250 * time.Millisecond

// Runner admits one active task.
type Runner struct {
	mu     sync.Mutex
	active *Task
}

// NewRunner returns an idle runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Active returns the running task, or nil.
func (r *Runner) Active() *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Task is one check run.
type Task struct {
	ID    uuid.UUID
	Name  string
	Total int

	Progress <-chan int
	Lines    <-chan string
	Done     <-chan struct{}

	// Flags collects the entities the check marked as failing.
	Flags *board.Flags

	result *report.Collector
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Start runs check on a new goroutine. env.Sink is replaced by the task's
// own sink.
func (r *Runner) Start(ctx context.Context, check drc.Check, env drc.Env) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrBusy, r.active.Name, r.active.ID)
	}

	ctx, cancel := context.WithCancel(ctx)
	progressIn, progressOut := queue[int]()
	linesIn, linesOut := queue[string]()
	done := make(chan struct{})

	result := report.NewCollector()
	t := &Task{
		ID:       uuid.New(),
		Name:     check.Name(),
		Total:    check.Total(env.Board),
		Progress: progressOut,
		Lines:    linesOut,
		Done:     done,
		Flags:    result.Flags,
		result:   result,
		cancel:   cancel,
	}
	r.active = t

	env.Sink = &sink{lines: linesIn, progress: progressIn, result: result}

	log.Debug("task started", "id", t.ID, "check", t.Name, "total", t.Total)
	go func() {
		start := time.Now()
		err := t.run(ctx, check, env)
		if err != nil {
			linesIn <- fmt.Sprintf("Error: %v", err)
		}
		close(linesIn)
		close(progressIn)

		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		cancel()

		r.mu.Lock()
		if r.active == t {
			r.active = nil
		}
		r.mu.Unlock()

		log.Debug("task finished", "id", t.ID, "check", t.Name, "elapsed", time.Since(start), "flagged", t.Flags.Len(), "err", err)
		close(done)
	}()

	return t, nil
}

func (t *Task) run(ctx context.Context, check drc.Check, env drc.Env) (err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("check panicked", "check", t.Name, "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("%s check panicked: %v", t.Name, p)
		}
	}()
	return check.Run(ctx, env)
}

// Stop asks the check to give up at its next sweep boundary.
func (t *Task) Stop() {
	t.cancel()
}

// Err is the check's error once Done is closed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the task finishes and discards its output.
func (t *Task) Wait() error {
	return Poll(context.Background(), t, time.Millisecond, func(int, []string) {})
}

// Outlines returns the debug outlines the check produced.
func (t *Task) Outlines() []report.Outline {
	return t.result.Outlines()
}

// Poll drains the task's channels every interval and hands fn the latest
// progress value and any new lines. After the task finishes it flushes what
// is left and reports progress 0. Cancelling ctx stops the task; Poll still
// waits for it to finish.
func Poll(ctx context.Context, t *Task, interval time.Duration, fn func(progress int, lines []string)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	progress := t.Progress
	lines := t.Lines
	latest := 0

	drain := func() []string {
		var got []string
		for {
			select {
			case p, ok := <-progress:
				if !ok {
					progress = nil
					continue
				}
				latest = p
			case l, ok := <-lines:
				if !ok {
					lines = nil
					continue
				}
				got = append(got, l)
			default:
				return got
			}
		}
	}

	cancelled := ctx.Done()
	for {
		select {
		case <-cancelled:
			t.Stop()
			cancelled = nil
		case <-ticker.C:
			if got := drain(); len(got) > 0 || latest > 0 {
				fn(latest, got)
			}
		case <-t.Done:
			var rest []string
			for lines != nil || progress != nil {
				select {
				case l, ok := <-lines:
					if !ok {
						lines = nil
						continue
					}
					rest = append(rest, l)
				case p, ok := <-progress:
					if !ok {
						progress = nil
						continue
					}
					latest = p
				}
			}
			fn(latest, rest)
			fn(0, nil)
			return t.Err()
		}
	}
}

// sink feeds a running task's queues.
type sink struct {
	lines    chan<- string
	progress chan<- int
	result   *report.Collector
}

func (s *sink) Line(l string)            { s.lines <- l }
func (s *sink) Progress(done int)        { s.progress <- done }
func (s *sink) Flag(id board.EntityID)   { s.result.Flag(id) }
func (s *sink) Outline(o report.Outline) { s.result.Outline(o) }
