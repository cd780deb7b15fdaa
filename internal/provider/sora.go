package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultSoraBaseURL = "https://api.openai.com/v1"

// SoraClient talks to the Sora video API: POST /videos to start a render job,
// GET /videos/{id} to poll it, GET /videos/{id}/content for the binary result.
// Every request carries a bearer credential header.
type SoraClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	policy     PollPolicy
}

func NewSoraClient(baseURL string, logger *zap.Logger) *SoraClient {
	if baseURL == "" {
		baseURL = defaultSoraBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SoraClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		policy: PollPolicy{
			Interval:       10 * time.Second,
			MaxAttempts:    60,
			SubmitProgress: 5,
			PollProgress:   20,
			ProgressCap:    95,
		},
	}
}

func (c *SoraClient) Name() string { return "sora" }

func (c *SoraClient) Policy() PollPolicy { return c.policy }

// soraCreateRequest carries no duration: the remote API does not honor one,
// clip length is fixed upstream.
type soraCreateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

type soraVideoJob struct {
	ID       string     `json:"id"`
	Status   string     `json:"status"`
	Progress float64    `json:"progress"`
	Error    *soraError `json:"error"`
}

type soraError struct {
	Message string `json:"message"`
}

func (c *SoraClient) Submit(ctx context.Context, job Job) (string, error) {
	if job.APIKey == "" {
		return "", fmt.Errorf("Sora API key is required, set it in the settings")
	}

	reqBody := soraCreateRequest{
		Model:  string(job.Model),
		Prompt: job.Prompt,
		Size:   job.AspectRatio.SizeString(),
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.doJSON(ctx, "POST", "/videos", job.APIKey, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	var created soraVideoJob
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("Sora API returned no video id")
	}

	return created.ID, nil
}

func (c *SoraClient) Poll(ctx context.Context, job Job, handle string) (Status, error) {
	body, err := c.doJSON(ctx, "GET", "/videos/"+handle, job.APIKey, nil)
	if err != nil {
		return Status{}, err
	}

	var state soraVideoJob
	if err := json.Unmarshal(body, &state); err != nil {
		return Status{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch state.Status {
	case "completed":
		return Status{Done: true, Progress: 95, DownloadRef: handle}, nil
	case "failed":
		message := ""
		if state.Error != nil {
			message = state.Error.Message
		}
		return Status{}, &TerminalError{Provider: c.Name(), Message: message}
	case "in_progress":
		// Rescale the remote 0-100 figure into the 20-95 display band.
		return Status{Progress: 20 + int(state.Progress*0.75)}, nil
	default:
		// queued: keep polling, display progress holds.
		return Status{Progress: -1}, nil
	}
}

// Download re-issues an authenticated request without the JSON content type:
// the response is the raw video payload.
func (c *SoraClient) Download(ctx context.Context, job Job, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/videos/"+ref+"/content", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+job.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download video: %s", resp.Status)
	}

	return resp.Body, nil
}

func (c *SoraClient) doJSON(ctx context.Context, method, endpoint, apiKey string, reqBody io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error *soraError `json:"error"`
		}
		message := resp.Status
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		c.logger.Warn("sora api request rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return nil, fmt.Errorf("Sora API error: %s", message)
	}

	return body, nil
}
