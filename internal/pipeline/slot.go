package pipeline

import "context"

// slot carries one loader's result to the stages that need it. It is
// written once and then closed.
type slot[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newSlot[T any]() *slot[T] {
	return &slot[T]{done: make(chan struct{})}
}

func (s *slot[T]) set(v T, err error) {
	s.val, s.err = v, err
	close(s.done)
}

func (s *slot[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		return s.val, s.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
