// Package report carries check output: text lines, progress ticks, flagged
// entities and debug outlines.
package report

import (
	"fmt"
	"sync"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

// Outline is a debug drawing emitted by a check: a polyline on a named layer.
type Outline struct {
	Layer  string
	Points []geom.Point
	Width  float64
	Closed bool
}

// Sink receives everything a check produces. Implementations must be safe
// for use from the goroutine running the check.
type Sink interface {
	// Line appends one report line, without trailing newline.
	Line(s string)
	// Progress reports the number of units done so far.
	Progress(done int)
	// Flag marks an entity as failing. Flagging twice is a no-op.
	Flag(id board.EntityID)
	// Outline records a debug drawing.
	Outline(o Outline)
}

// Printf formats one line into s.
func Printf(s Sink, format string, args ...any) {
	s.Line(fmt.Sprintf(format, args...))
}

// Collector is an in-memory Sink.
type Collector struct {
	mu       sync.Mutex
	lines    []string
	progress []int
	outlines []Outline

	Flags *board.Flags
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{Flags: board.NewFlags()}
}

func (c *Collector) Line(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, s)
}

func (c *Collector) Progress(done int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, done)
}

func (c *Collector) Flag(id board.EntityID) {
	c.Flags.Flag(id)
}

func (c *Collector) Outline(o Outline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outlines = append(c.outlines, o)
}

// Lines returns a copy of the collected lines.
func (c *Collector) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Ticks returns every progress value in arrival order.
func (c *Collector) Ticks() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.progress...)
}

// Outlines returns a copy of the collected outlines.
func (c *Collector) Outlines() []Outline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outline(nil), c.outlines...)
}

// Offset shifts progress by a fixed amount, for running checks back to back
// against one progress total.
type Offset struct {
	Sink
	By int
}

func (o Offset) Progress(done int) {
	o.Sink.Progress(o.By + done)
}
