// Package channels holds small generic helpers for delivering values over
// channels without stalling the sender.
package channels

import (
	"errors"
	"time"
)

var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrChannelTimeout = errors.New("send timeout")
	ErrChannelFull    = errors.New("channel full")
)

// SendNonBlock delivers msg only if the channel can take it right now.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer recoverClosed(&err)

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendWithTimeout waits up to timeout for the channel to take msg.
func SendWithTimeout[T any](ch chan<- T, msg T, timeout time.Duration) (err error) {
	defer recoverClosed(&err)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- msg:
		return nil
	case <-timer.C:
		return ErrChannelTimeout
	}
}

// Sending on a closed channel panics; report it as an error instead.
func recoverClosed(err *error) {
	if r := recover(); r != nil {
		*err = ErrChannelClosed
	}
}
