package app

import (
	"errors"
	"sync"

	"github.com/pkgship/pkgship/internal/domain"
)

// collectorSink adapts the callback-style ProgressSink contract into a single
// tagged PushResult. Any count of progress notifications may precede exactly
// one terminal notification; the first terminal wins and everything after it
// is ignored.
type collectorSink struct {
	mu         sync.Mutex
	onProgress func(percent float64)

	progressCount int
	terminal      bool
	res           domain.PushResult
}

func newCollectorSink(onProgress func(percent float64)) *collectorSink {
	return &collectorSink{onProgress: onProgress}
}

// Progress records one progress notification.
func (c *collectorSink) Progress(percent float64) {
	c.mu.Lock()
	if c.terminal {
		c.mu.Unlock()
		return
	}
	c.progressCount++
	fn := c.onProgress
	c.mu.Unlock()

	if fn != nil {
		fn(percent)
	}
}

// Completed records the success terminal notification.
func (c *collectorSink) Completed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		return
	}
	c.terminal = true
	c.res = domain.PushResult{Status: domain.PushSucceeded, ProgressCount: c.progressCount}
}

// Error records the failure terminal notification.
func (c *collectorSink) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		return
	}
	msg := "push failed"
	if err != nil {
		msg = err.Error()
	}
	c.terminal = true
	c.res = domain.PushResult{Status: domain.PushFailed, Message: msg, ProgressCount: c.progressCount}
}

// result resolves the attempt outcome once the push call has returned.
// A fault that escaped the channel without a terminal notification is forced
// onto the error path so the session is never left stuck in Publishing;
// timeouts get a distinguished message.
func (c *collectorSink) result(pushErr error) domain.PushResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminal {
		return c.res
	}

	if pushErr == nil {
		pushErr = errors.New("channel returned without a terminal notification")
	}
	res := domain.PushResult{
		Status:        domain.PushFailed,
		Message:       pushErr.Error(),
		ProgressCount: c.progressCount,
	}
	if domain.IsTimeoutErr(pushErr) {
		res.Timeout = true
		res.Message = "push timed out: " + res.Message
	}
	c.terminal = true
	c.res = res
	return res
}
