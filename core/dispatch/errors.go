package dispatch

import "errors"

var (
	ErrClosed          = errors.New("dispatch: dispatcher closed")
	ErrNilSender       = errors.New("dispatch: sender is nil")
	ErrInvalidSchedule = errors.New("dispatch: invalid schedule")

	// ErrCircuitOpen is the reason carried by reports for push services whose breaker is open.
	ErrCircuitOpen = errors.New("circuit open")
)
