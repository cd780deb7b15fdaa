package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdimtricp/videoarena/internal/models"
)

// fakeProvider scripts a sequence of poll outcomes for driving the runner.
type fakeProvider struct {
	name        string
	policy      PollPolicy
	submitErr   error
	polls       []fakePoll
	pollCount   int
	downloadErr error
	payload     []byte
}

type fakePoll struct {
	status Status
	err    error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Policy() PollPolicy { return f.policy }

func (f *fakeProvider) Submit(ctx context.Context, job Job) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "job-1", nil
}

func (f *fakeProvider) Poll(ctx context.Context, job Job, handle string) (Status, error) {
	f.pollCount++
	if f.pollCount > len(f.polls) {
		return Status{Progress: -1}, nil
	}
	poll := f.polls[f.pollCount-1]
	return poll.status, poll.err
}

func (f *fakeProvider) Download(ctx context.Context, job Job, ref string) (io.ReadCloser, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return io.NopCloser(bytes.NewReader(f.payload)), nil
}

func fastPolicy() PollPolicy {
	return PollPolicy{
		Interval:       time.Millisecond,
		MaxAttempts:    60,
		SubmitProgress: 10,
		PollProgress:   30,
		ProgressStep:   5,
		ProgressCap:    90,
	}
}

func testJob() Job {
	return Job{
		Model:       models.ModelVeo2,
		Prompt:      "a test prompt",
		AspectRatio: models.AspectLandscape,
		Duration:    models.DurationShort,
		APIKey:      "key",
	}
}

func TestGenerateSuccess(t *testing.T) {
	p := &fakeProvider{
		name:   "veo",
		policy: fastPolicy(),
		polls: []fakePoll{
			{status: Status{Progress: -1}},
			{status: Status{Progress: -1}},
			{status: Status{Done: true, Progress: 95, DownloadRef: "ref"}},
		},
		payload: []byte("video-bytes"),
	}

	var updates []ProgressUpdate
	body, err := Generate(context.Background(), p, testJob(), func(u ProgressUpdate) {
		updates = append(updates, u)
	}, nil)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	require.NotEmpty(t, updates)
	assert.Equal(t, StageGenerating, updates[0].Stage)
	assert.Equal(t, 10, updates[0].Progress)
	assert.Equal(t, StageFetching, updates[len(updates)-1].Stage)
	assert.Equal(t, 95, updates[len(updates)-1].Progress)
}

func TestGenerateProgressNeverDecreases(t *testing.T) {
	p := &fakeProvider{
		name:   "sora",
		policy: PollPolicy{Interval: time.Millisecond, MaxAttempts: 60, SubmitProgress: 5, PollProgress: 20, ProgressCap: 95},
		polls: []fakePoll{
			{status: Status{Progress: 50}},
			// A remote progress value lower than the one already shown must
			// not move the display backwards.
			{status: Status{Progress: 35}},
			{status: Status{Progress: 80}},
			{status: Status{Done: true, Progress: 95, DownloadRef: "ref"}},
		},
	}

	var progress []int
	body, err := Generate(context.Background(), p, testJob(), func(u ProgressUpdate) {
		progress = append(progress, u.Progress)
	}, nil)
	require.NoError(t, err)
	body.Close()

	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1], "progress decreased at update %d", i)
	}
}

func TestGenerateStepProgressCapped(t *testing.T) {
	polls := make([]fakePoll, 20)
	for i := range polls {
		polls[i] = fakePoll{status: Status{Progress: -1}}
	}
	polls = append(polls, fakePoll{status: Status{Done: true, DownloadRef: "ref"}})

	p := &fakeProvider{name: "veo", policy: fastPolicy(), polls: polls}

	var maxSeen int
	body, err := Generate(context.Background(), p, testJob(), func(u ProgressUpdate) {
		if u.Stage == StagePolling && u.Progress > maxSeen {
			maxSeen = u.Progress
		}
	}, nil)
	require.NoError(t, err)
	body.Close()

	// 30 + 20*5 would overshoot; the step advance must cap at 90.
	assert.Equal(t, 90, maxSeen)
}

func TestGenerateTimeout(t *testing.T) {
	p := &fakeProvider{
		name:   "sora",
		policy: PollPolicy{Interval: time.Millisecond, MaxAttempts: 60, SubmitProgress: 5, PollProgress: 20},
	}

	_, err := Generate(context.Background(), p, testJob(), nil, nil)
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "sora", timeoutErr.Provider)
	assert.Equal(t, 60, p.pollCount, "no more than 60 poll requests may be issued")
}

func TestGenerateTransientPollFailuresRetried(t *testing.T) {
	blip := errors.New("connection reset")
	p := &fakeProvider{
		name:   "veo",
		policy: fastPolicy(),
		polls: []fakePoll{
			{err: blip},
			{err: blip},
			{status: Status{Done: true, DownloadRef: "ref"}},
		},
	}

	body, err := Generate(context.Background(), p, testJob(), nil, nil)
	require.NoError(t, err, "two transient blips must not fail the job")
	body.Close()
}

func TestGenerateConsecutivePollFailuresTerminal(t *testing.T) {
	blip := errors.New("connection reset")
	p := &fakeProvider{
		name:   "veo",
		policy: fastPolicy(),
		polls:  []fakePoll{{err: blip}, {err: blip}, {err: blip}},
	}

	_, err := Generate(context.Background(), p, testJob(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, blip)
	assert.Equal(t, 3, p.pollCount)
}

func TestGenerateTerminalPollErrorNotRetried(t *testing.T) {
	p := &fakeProvider{
		name:   "veo",
		policy: fastPolicy(),
		polls: []fakePoll{
			{err: &TerminalError{Provider: "veo", Message: "render exploded"}},
		},
	}

	_, err := Generate(context.Background(), p, testJob(), nil, nil)
	require.Error(t, err)

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, "render exploded", terminal.Message)
	assert.Equal(t, 1, p.pollCount)
}

func TestGenerateContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProvider{
		name:   "veo",
		policy: PollPolicy{Interval: time.Second, MaxAttempts: 60},
	}

	_, err := Generate(ctx, p, testJob(), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateSubmitQuotaErrorSurfaces(t *testing.T) {
	p := &fakeProvider{
		name:      "veo",
		policy:    fastPolicy(),
		submitErr: &QuotaExceededError{Message: "free tier quota likely exceeded"},
	}

	_, err := Generate(context.Background(), p, testJob(), nil, nil)
	require.Error(t, err)

	var quota *QuotaExceededError
	assert.ErrorAs(t, err, &quota)
}
