package channel

// Unbuffered is a Channel with no buffer. Every Send rendezvouses with a
// receiver, which surfaces lost consumers immediately in debug builds.
type Unbuffered[T any] struct {
	ch chan T
}

// NewUnbuffered returns a rendezvous channel.
func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

func (u *Unbuffered[T]) Send(v T) {
	u.ch <- v
}

func (u *Unbuffered[T]) Receive() <-chan T {
	return u.ch
}

// Len is always zero, nothing is ever queued.
func (u *Unbuffered[T]) Len() int {
	return 0
}

func (u *Unbuffered[T]) Close() {
	close(u.ch)
}
