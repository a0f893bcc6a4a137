package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pkgship/pkgship/internal/domain"
)

// Driver runs publish attempts. The blocking upload is dispatched on a worker
// goroutine that reports through a collector sink; the calling goroutine
// stays the sole mutator of session state, applying the terminal outcome and
// the post-publish bookkeeping in that order once the worker delivers its
// single result.
type Driver struct {
	logger zerolog.Logger
}

// NewDriver creates a driver that logs attempts with the given logger.
func NewDriver(logger zerolog.Logger) *Driver {
	return &Driver{logger: logger}
}

// Publish runs one publish attempt for the session. A non-nil error is
// returned only for dispatch failures (attempt already in flight, disposed
// session, no endpoint, unreadable artifact stream), before any state
// change. Once dispatched, the attempt always runs to a terminal outcome
// surfaced through the returned result and the session's state fields, never
// as an error.
func (d *Driver) Publish(ctx context.Context, s *Session) (domain.PushResult, error) {
	attemptID := uuid.NewString()

	job, err := s.beginPublish(attemptID)
	if err != nil {
		return domain.PushResult{}, err
	}

	logger := d.logger.With().
		Str("attempt", attemptID).
		Str("endpoint", job.channel.Source()).
		Str("package", job.meta.Name).
		Str("version", job.meta.Version).
		Logger()
	logger.Info().Bool("v1", job.channel.IsV1()).Msg("publishing package")

	results := make(chan domain.PushResult, 1)
	go func() {
		sink := newCollectorSink(func(percent float64) {
			logger.Debug().Float64("percent", percent).Msg("upload progress")
		})
		err := job.channel.Push(ctx, job.credential, job.stream, sink, job.meta)
		results <- sink.result(err)
	}()

	// Marshal the single terminal outcome back onto this goroutine before
	// any session state changes.
	res := <-results

	s.applyResult(res)
	s.finishBookkeeping()

	if res.Failed() {
		logger.Error().
			Str("reason", res.Message).
			Bool("timeout", res.Timeout).
			Int("progress_events", res.ProgressCount).
			Msg("publish failed")
	} else {
		logger.Info().
			Int("progress_events", res.ProgressCount).
			Msg("publish succeeded")
	}
	return res, nil
}
