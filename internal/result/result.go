// Package result carries one remote operation from start to finish as a
// short stream of states: Loading, then exactly one of Success or Error.
package result

import (
	"context"
	"errors"

	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/logging"
)

// FallbackMessage is shown when a failure carries no readable server message.
const FallbackMessage = "Something went wrong, please try again"

// Kind discriminates the three result variants.
type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Result is one state of an operation. Value is set only for KindSuccess and
// Message only for KindError.
type Result[T any] struct {
	Kind    Kind
	Value   T
	Message string
}

// Loading returns the in-flight state.
func Loading[T any]() Result[T] {
	return Result[T]{Kind: KindLoading}
}

// Success returns a terminal state carrying v.
func Success[T any](v T) Result[T] {
	return Result[T]{Kind: KindSuccess, Value: v}
}

// Error returns a terminal failure state carrying msg.
func Error[T any](msg string) Result[T] {
	return Result[T]{Kind: KindError, Message: msg}
}

// IsLoading reports whether r is the in-flight state.
func (r Result[T]) IsLoading() bool { return r.Kind == KindLoading }

// IsSuccess reports whether r succeeded.
func (r Result[T]) IsSuccess() bool { return r.Kind == KindSuccess }

// IsError reports whether r failed.
func (r Result[T]) IsError() bool { return r.Kind == KindError }

// Terminal reports whether no further states follow r.
func (r Result[T]) Terminal() bool { return r.Kind != KindLoading }

// Message converts err into the text shown to the user. API errors yield the
// message from their envelope body; everything else, or an unreadable body,
// yields FallbackMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if msg, ok := apiErr.ServerMessage(); ok {
			return msg
		}
	}
	logging.Warn("operation failed", "err", err)
	return FallbackMessage
}

// Op is a single remote operation.
type Op[T any] func(ctx context.Context) (T, error)

// Stream is a cold sequence of results for one operation. Every Subscribe
// runs the operation again.
type Stream[T any] struct {
	op Op[T]
}

// New wraps op in a Stream.
func New[T any](op Op[T]) Stream[T] {
	return Stream[T]{op: op}
}

// Subscribe starts the operation and returns its states. The channel yields
// Loading, then one terminal result, then is closed. It never blocks the
// operation's goroutine, even if the receiver stops reading.
func (s Stream[T]) Subscribe(ctx context.Context) <-chan Result[T] {
	ch := make(chan Result[T], 2)
	ch <- Loading[T]()
	go func() {
		defer close(ch)
		if s.op == nil {
			ch <- Error[T](FallbackMessage)
			return
		}
		v, err := s.op(ctx)
		if err != nil {
			ch <- Error[T](Message(err))
			return
		}
		ch <- Success(v)
	}()
	return ch
}

// Await subscribes and returns the terminal result.
func (s Stream[T]) Await(ctx context.Context) Result[T] {
	var last Result[T]
	for r := range s.Subscribe(ctx) {
		last = r
	}
	return last
}

// Collect subscribes and returns every state in order.
func (s Stream[T]) Collect(ctx context.Context) []Result[T] {
	var all []Result[T]
	for r := range s.Subscribe(ctx) {
		all = append(all, r)
	}
	return all
}
