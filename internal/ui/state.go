package ui

import (
	"sync"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/report"
)

const defaultLineLimit = 20000

// StateSnapshot is a copy of AppState for one frame, so layout code never
// holds the lock.
type StateSnapshot struct {
	Status   string
	Lines    []string
	Progress int
	Total    int
	Running  bool

	Flags    *board.Flags
	Outlines []report.Outline
	Err      error
}

// Fraction is the progress bar position in [0, 1].
func (s StateSnapshot) Fraction() float32 {
	if s.Total <= 0 || s.Progress <= 0 {
		return 0
	}
	return min(float32(s.Progress)/float32(s.Total), 1)
}

// AppState is shared between the gio event loop and the goroutine polling
// a running check.
type AppState struct {
	mu sync.RWMutex

	status   string
	lines    []string
	limit    int
	progress int
	total    int
	running  bool

	flags    *board.Flags
	outlines []report.Outline
	err      error
}

// NewState returns an idle state.
func NewState() *AppState {
	return &AppState{status: "Idle", limit: defaultLineLimit}
}

// Snapshot returns a copy of the state for rendering.
func (s *AppState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StateSnapshot{
		Status:   s.status,
		Lines:    append([]string(nil), s.lines...),
		Progress: s.progress,
		Total:    s.total,
		Running:  s.running,
		Flags:    s.flags,
		Outlines: append([]report.Outline(nil), s.outlines...),
		Err:      s.err,
	}
}

// Begin marks a check as started and clears the previous result.
func (s *AppState) Begin(name string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = "Running " + name
	s.running = true
	s.progress = 0
	s.total = total
	s.flags = nil
	s.outlines = nil
	s.err = nil
}

// Append adds console lines and moves the progress bar.
func (s *AppState) Append(progress int, lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = progress
	s.lines = append(s.lines, lines...)
	if over := len(s.lines) - s.limit; over > 0 {
		s.lines = append(s.lines[:0], s.lines[over:]...)
	}
}

// Finish records a finished check.
func (s *AppState) Finish(flags *board.Flags, outlines []report.Outline, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.progress = 0
	s.flags = flags
	s.outlines = outlines
	s.err = err
	switch {
	case err != nil:
		s.status = "Failed: " + err.Error()
	case flags != nil && flags.Len() > 0:
		s.status = "Done, selected failing objects"
	default:
		s.status = "Done"
	}
}

// SetStatus replaces the status line.
func (s *AppState) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// ClearConsole drops every console line.
func (s *AppState) ClearConsole() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}
