// Package channel wraps Go channels behind small generic interfaces so the
// feed fan-out can swap buffered queues for unbuffered ones in debug builds.
package channel

// Receiver is the consuming half of a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender is the producing half of a channel.
type Sender[T any] interface {
	Send(T)
}

// Channel is a sender and receiver that can be closed once.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
