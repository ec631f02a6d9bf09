package channel

// Buffered is a Channel backed by a buffered Go channel. Send blocks once
// the buffer is full, so callers that must not stall check Len first.
type Buffered[T any] struct {
	ch chan T
}

// NewBuffered returns a channel holding up to size queued values.
func NewBuffered[T any](size int) *Buffered[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

func (b *Buffered[T]) Send(v T) {
	b.ch <- v
}

func (b *Buffered[T]) Receive() <-chan T {
	return b.ch
}

// Len reports how many values are queued but not yet received.
func (b *Buffered[T]) Len() int {
	return len(b.ch)
}

func (b *Buffered[T]) Close() {
	close(b.ch)
}
