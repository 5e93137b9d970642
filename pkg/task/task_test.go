package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/drc"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

// fakeCheck emits n lines and ticks, optionally waiting on release first.
type fakeCheck struct {
	n       int
	release chan struct{}
	panics  bool
	loop    bool
}

func (f *fakeCheck) Name() string              { return "fake" }
func (f *fakeCheck) Total(*board.Snapshot) int { return f.n }

func (f *fakeCheck) Run(ctx context.Context, env drc.Env) error {
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("boom")
	}
	for i := 1; i <= f.n; i++ {
		env.Sink.Line(fmt.Sprintf("line %d", i))
		env.Sink.Progress(i)
		env.Sink.Flag(board.EntityID{Kind: board.KindPad, Index: i % 3})
	}
	for f.loop {
		if drc.Stopped(ctx) {
			return ctx.Err()
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func emptyEnv() drc.Env {
	return drc.Env{Board: &board.Snapshot{Layers: board.NewLayerTable(nil)}, Rules: rules.Default()}
}

type recorder struct {
	mu       sync.Mutex
	lines    []string
	progress []int
}

func (r *recorder) fn(p int, lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
	r.lines = append(r.lines, lines...)
}

func TestPollDeliversEverything(t *testing.T) {
	r := NewRunner()
	task, err := r.Start(context.Background(), &fakeCheck{n: 500}, emptyEnv())
	require.NoError(t, err)
	assert.Equal(t, 500, task.Total)
	assert.NotEqual(t, "", task.ID.String())

	var rec recorder
	require.NoError(t, Poll(context.Background(), task, 2*time.Millisecond, rec.fn))

	require.Len(t, rec.lines, 500)
	assert.Equal(t, "line 1", rec.lines[0])
	assert.Equal(t, "line 500", rec.lines[499])
	assert.Equal(t, 0, rec.progress[len(rec.progress)-1], "progress resets when done")
	assert.Equal(t, 500, rec.progress[len(rec.progress)-2])
	assert.Equal(t, 3, task.Flags.Len())
	assert.Nil(t, r.Active())
}

func TestRunnerRejectsSecondTask(t *testing.T) {
	r := NewRunner()
	release := make(chan struct{})
	first, err := r.Start(context.Background(), &fakeCheck{n: 1, release: release}, emptyEnv())
	require.NoError(t, err)

	_, err = r.Start(context.Background(), &fakeCheck{n: 1}, emptyEnv())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, first.Wait())

	second, err := r.Start(context.Background(), &fakeCheck{n: 1}, emptyEnv())
	require.NoError(t, err)
	require.NoError(t, second.Wait())
}

func TestStop(t *testing.T) {
	r := NewRunner()
	task, err := r.Start(context.Background(), &fakeCheck{n: 2, loop: true}, emptyEnv())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var rec recorder
	err = Poll(ctx, task, 5*time.Millisecond, rec.fn)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, rec.lines, "Error: context canceled")
}

func TestPanicIsReported(t *testing.T) {
	r := NewRunner()
	task, err := r.Start(context.Background(), &fakeCheck{panics: true}, emptyEnv())
	require.NoError(t, err)

	var rec recorder
	err = Poll(context.Background(), task, time.Millisecond, rec.fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	require.Len(t, rec.lines, 1)
	assert.True(t, strings.HasPrefix(rec.lines[0], "Error: fake check panicked"))
	assert.Nil(t, r.Active())
}

func TestMissingLayerBecomesLine(t *testing.T) {
	r := NewRunner()
	task, err := r.Start(context.Background(), drc.StencilInfo{}, emptyEnv())
	require.NoError(t, err)

	var rec recorder
	err = Poll(context.Background(), task, time.Millisecond, rec.fn)
	assert.ErrorIs(t, err, board.ErrLayerNotFound)
	require.NotEmpty(t, rec.lines)
	assert.Contains(t, rec.lines[len(rec.lines)-1], "layer not found")
}

func TestQueueKeepsOrder(t *testing.T) {
	in, out := queue[int]()
	for i := 0; i < 1000; i++ {
		in <- i
	}
	close(in)

	i := 0
	for v := range out {
		assert.Equal(t, i, v)
		i++
	}
	assert.Equal(t, 1000, i)
}
