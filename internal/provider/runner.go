package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// maxConsecutivePollFailures bounds how many poll requests in a row may fail
// before the job is declared terminally failed. A single network blip during
// a ten-minute poll cycle should not kill an otherwise healthy job.
const maxConsecutivePollFailures = 3

// Generate drives a provider through one full job cycle and returns a reader
// over the finished video bytes. Progress reporting is normalized here so the
// two providers' divergent progress semantics surface through one callback:
// the reported value never decreases within a single call.
func Generate(ctx context.Context, p VideoProvider, job Job, report ProgressFunc, logger *zap.Logger) (io.ReadCloser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if report == nil {
		report = func(ProgressUpdate) {}
	}

	policy := p.Policy()
	progress := 0

	emit := func(stage Stage, value int, message string) {
		if value > progress {
			progress = value
		}
		report(ProgressUpdate{Stage: stage, Progress: progress, Message: message})
	}

	emit(StageGenerating, policy.SubmitProgress, "submitting generation request")

	handle, err := p.Submit(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("submitting %s job: %w", p.Name(), err)
	}
	logger.Info("video job submitted",
		zap.String("provider", p.Name()),
		zap.String("model", string(job.Model)),
		zap.String("handle", handle))

	emit(StagePolling, policy.PollProgress, "waiting for the video to render")

	start := time.Now()
	pollFailures := 0

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Interval):
		}

		status, err := p.Poll(ctx, job, handle)
		if err != nil {
			if isTerminal(err) {
				return nil, err
			}
			pollFailures++
			logger.Warn("poll request failed",
				zap.String("provider", p.Name()),
				zap.Int("consecutive_failures", pollFailures),
				zap.Error(err))
			if pollFailures >= maxConsecutivePollFailures {
				return nil, fmt.Errorf("polling %s job status: %w", p.Name(), err)
			}
			continue
		}
		pollFailures = 0

		if status.Done {
			emit(StageFetching, 95, "fetching the finished video")
			body, err := p.Download(ctx, job, status.DownloadRef)
			if err != nil {
				return nil, fmt.Errorf("downloading %s result: %w", p.Name(), err)
			}
			logger.Info("video job completed",
				zap.String("provider", p.Name()),
				zap.Duration("elapsed", time.Since(start)))
			return body, nil
		}

		switch {
		case status.Progress >= 0:
			emit(StagePolling, status.Progress, "")
		case policy.ProgressStep > 0:
			next := progress + policy.ProgressStep
			if next > policy.ProgressCap {
				next = policy.ProgressCap
			}
			emit(StagePolling, next, "")
		}
	}

	return nil, &TimeoutError{Provider: p.Name(), Elapsed: time.Since(start)}
}

// isTerminal reports whether a poll error already carries a final verdict and
// must not be retried or re-wrapped.
func isTerminal(err error) bool {
	var terminal *TerminalError
	var quota *QuotaExceededError
	return errors.As(err, &terminal) || errors.As(err, &quota)
}
