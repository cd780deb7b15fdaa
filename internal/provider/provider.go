package provider

import (
	"context"
	"io"
	"time"

	"github.com/kdimtricp/videoarena/internal/models"
)

// Job holds everything a provider needs for one request/poll/download cycle.
// A Job is built once per generation attempt and never mutated.
type Job struct {
	Model       models.ModelType
	Prompt      string
	ImageBytes  []byte
	ImageMIME   string
	AspectRatio models.AspectRatio
	Duration    models.VideoDuration
	APIKey      string
}

// Stage tells the caller which phase of the cycle a progress update belongs to.
type Stage string

const (
	StageGenerating Stage = "generating"
	StagePolling    Stage = "polling"
	StageFetching   Stage = "fetching"
)

type ProgressUpdate struct {
	Stage    Stage
	Progress int
	Message  string
}

type ProgressFunc func(ProgressUpdate)

// Status is the normalized outcome of a single poll.
type Status struct {
	// Done is true once the remote job reached a successful terminal state.
	Done bool
	// Progress is a display progress value in the 0-100 range, or -1 when the
	// provider reports no usable progress for this poll.
	Progress int
	// DownloadRef identifies the finished artifact; set only when Done.
	DownloadRef string
}

// PollPolicy describes a provider's polling cadence and how display progress
// advances when the remote side reports none.
type PollPolicy struct {
	Interval       time.Duration
	MaxAttempts    int
	SubmitProgress int
	PollProgress   int
	// ProgressStep is added to the display progress on each successful poll
	// that carries no remote progress, capped at ProgressCap. Zero means the
	// display progress holds until the provider reports a value.
	ProgressStep int
	ProgressCap  int
}

// VideoProvider is the capability shared by all remote video generators:
// submit a job, poll it to a terminal state, download the finished artifact.
// Implementations map their own failure signals into the package error types.
type VideoProvider interface {
	Name() string
	Submit(ctx context.Context, job Job) (handle string, err error)
	Poll(ctx context.Context, job Job, handle string) (Status, error)
	Download(ctx context.Context, job Job, ref string) (io.ReadCloser, error)
	Policy() PollPolicy
}
