package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/drc"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
	"github.com/OpenTraceLab/padcheck/pkg/task"
)

// Session binds a loaded board to the task runner and the dialog state.
type Session struct {
	Board  *board.Snapshot
	Runner *task.Runner
	State  *AppState

	// Interval is the console refresh period.
	Interval time.Duration

	// Invalidate asks the window for a new frame.
	Invalidate func()
}

// NewSession returns a session over b.
func NewSession(b *board.Snapshot) *Session {
	return &Session{
		Board:    b,
		Runner:   task.NewRunner(),
		State:    NewState(),
		Interval: task.DefaultInterval,
	}
}

// Run starts the named check with cfg. Output streams into State until the
// check finishes; the returned task can be waited on or stopped.
func (s *Session) Run(ctx context.Context, name string, cfg rules.Config) (*task.Task, error) {
	check, err := drc.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t, err := s.Runner.Start(ctx, check, drc.Env{Board: s.Board, Rules: cfg})
	if err != nil {
		return nil, err
	}
	s.State.Begin(t.Name, t.Total)
	s.invalidate()

	go func() {
		err := task.Poll(ctx, t, s.Interval, func(progress int, lines []string) {
			s.State.Append(progress, lines)
			s.invalidate()
		})
		if err != nil {
			log.Warn("check stopped", "check", t.Name, "err", err)
		}
		s.State.Finish(t.Flags, t.Outlines(), err)
		s.invalidate()
	}()
	return t, nil
}

// Stop asks the running check, if any, to give up.
func (s *Session) Stop() {
	if t := s.Runner.Active(); t != nil {
		t.Stop()
	}
}

func (s *Session) invalidate() {
	if s.Invalidate != nil {
		s.Invalidate()
	}
}
