package lockingqueue

import (
	"context"
	"errors"
)

// ErrCanceled is returned by WaitAndPopContext when ctx is canceled before an
// element arrives.
var ErrCanceled = context.Canceled

// ErrDeadlineExceeded is returned by WaitAndPopContext when the ctx deadline
// passes first. TryWaitAndPop hits the same condition when its timeout
// expires but reports it only as a false ok result; callers that need the
// error value should use WaitAndPopContext with context.WithTimeout.
var ErrDeadlineExceeded = context.DeadlineExceeded

// IsContextError reports whether err came from a wait ending because its
// context was done, either by cancellation or by deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
