//go:build debug

package channel

// New ignores size and returns an unbuffered channel so debug builds block
// on the first slow consumer instead of hiding it behind a buffer.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
