package ui

import (
	"context"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/drc"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

// blocking is a check that waits until release is closed.
type blocking struct{ release chan struct{} }

func (blocking) Name() string              { return "blocking" }
func (blocking) Total(*board.Snapshot) int { return 1 }
func (b blocking) Run(context.Context, drc.Env) error {
	<-b.release
	return nil
}

func drcEnv(s *Session) drc.Env {
	return drc.Env{Board: s.Board, Rules: rules.Default()}
}
