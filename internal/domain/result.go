package domain

import (
	"context"
	"errors"
	"net"
	"os"
)

// PushStatus tags the terminal outcome of a publish attempt.
type PushStatus int

const (
	PushSucceeded PushStatus = iota
	PushFailed
)

// String returns a human-readable representation of the status.
func (s PushStatus) String() string {
	switch s {
	case PushSucceeded:
		return "succeeded"
	case PushFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PushResult is the single terminal outcome of one publish attempt. Message
// carries the human-readable failure reason when Status is PushFailed.
// ProgressCount records how many progress notifications preceded the terminal
// one.
type PushResult struct {
	Status        PushStatus
	Message       string
	ProgressCount int
	Timeout       bool
}

// Failed reports whether the attempt ended on the error path.
func (r PushResult) Failed() bool { return r.Status == PushFailed }

// IsTimeoutErr reports whether err is classified as a transport timeout:
// a deadline-exceeded context, a net.Error that timed out, or an os-level
// timeout.
func IsTimeoutErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
