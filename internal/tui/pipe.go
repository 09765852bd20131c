package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/lostfound/internal/result"
)

// op tags which request a pipeMsg belongs to, so one screen can run several.
type op int

const (
	opList op = iota
	opGet
	opCreate
	opUpdate
	opToggle
	opDelete
	opLogin
	opRegister
	opMe
)

// pipeMsg delivers one state of a result stream to the screen that started it.
// After a Loading state, return next to keep listening.
type pipeMsg[T any] struct {
	op     op
	id     int // item id for per-item operations
	result result.Result[T]
	next   tea.Cmd
}

// subscribe starts stream and returns the Cmd that delivers its first state.
func subscribe[T any](ctx context.Context, stream result.Stream[T], o op, id int) tea.Cmd {
	return listen(stream.Subscribe(ctx), o, id)
}

// listen reads one state from ch. The returned message re-arms itself through
// its next field until the channel closes.
func listen[T any](ch <-chan result.Result[T], o op, id int) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return pipeMsg[T]{op: o, id: id, result: r, next: listen(ch, o, id)}
	}
}
