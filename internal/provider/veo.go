package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultVeoBaseURL = "https://generativelanguage.googleapis.com"

// VeoClient talks to the Veo long-running generation API. Authentication uses
// the caller's key as a query parameter on every request, including the final
// signed download URI.
type VeoClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	policy     PollPolicy
}

func NewVeoClient(baseURL string, logger *zap.Logger) *VeoClient {
	if baseURL == "" {
		baseURL = defaultVeoBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VeoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		policy: PollPolicy{
			Interval:       10 * time.Second,
			MaxAttempts:    60,
			SubmitProgress: 10,
			PollProgress:   30,
			ProgressStep:   5,
			ProgressCap:    90,
		},
	}
}

func (c *VeoClient) Name() string { return "veo" }

func (c *VeoClient) Policy() PollPolicy { return c.policy }

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoParameters struct {
	AspectRatio     string `json:"aspectRatio"`
	DurationSeconds int    `json:"durationSeconds"`
	SampleCount     int    `json:"sampleCount"`
}

type veoGenerateRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type veoOperation struct {
	Name     string       `json:"name"`
	Done     bool         `json:"done"`
	Error    *veoError    `json:"error"`
	Response *veoResponse `json:"response"`
}

type veoResponse struct {
	GeneratedVideos []veoGeneratedVideo `json:"generatedVideos"`
}

type veoGeneratedVideo struct {
	Video veoVideo `json:"video"`
}

type veoVideo struct {
	URI string `json:"uri"`
}

func (c *VeoClient) Submit(ctx context.Context, job Job) (string, error) {
	if job.APIKey == "" {
		return "", fmt.Errorf("API key is missing for Veo generation")
	}

	reqBody := veoGenerateRequest{
		Instances: []veoInstance{{Prompt: job.Prompt}},
		Parameters: veoParameters{
			AspectRatio:     string(job.AspectRatio),
			DurationSeconds: job.Duration.Seconds(),
			SampleCount:     1,
		},
	}
	if len(job.ImageBytes) > 0 {
		reqBody.Instances[0].Image = &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(job.ImageBytes),
			MimeType:           job.ImageMIME,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predictLongRunning?key=%s", c.baseURL, job.Model, job.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.mapHTTPError(resp.StatusCode, body)
	}

	var op veoOperation
	if err := json.Unmarshal(body, &op); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if op.Name == "" {
		return "", fmt.Errorf("Veo API returned no operation handle")
	}

	return op.Name, nil
}

func (c *VeoClient) Poll(ctx context.Context, job Job, handle string) (Status, error) {
	url := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, handle, job.APIKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return Status{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("failed to poll operation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Status{}, c.mapHTTPError(resp.StatusCode, body)
	}

	var op veoOperation
	if err := json.Unmarshal(body, &op); err != nil {
		return Status{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !op.Done {
		// The operation exposes no progress figure while rendering.
		return Status{Progress: -1}, nil
	}

	if op.Error != nil {
		if isQuotaMessage(op.Error.Message) || op.Error.Status == "RESOURCE_EXHAUSTED" {
			return Status{}, &QuotaExceededError{Message: op.Error.Message}
		}
		return Status{}, &TerminalError{Provider: c.Name(), Message: op.Error.Message}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video.URI == "" {
		return Status{}, &TerminalError{Provider: c.Name(), Message: "video generation completed, but no download link was found"}
	}

	return Status{Done: true, Progress: 95, DownloadRef: op.Response.GeneratedVideos[0].Video.URI}, nil
}

// Download fetches the finished clip from the signed URI returned by the
// operation, re-appending the caller's key as the URI requires it.
func (c *VeoClient) Download(ctx context.Context, job Job, ref string) (io.ReadCloser, error) {
	sep := "?"
	if strings.Contains(ref, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, "GET", ref+sep+"key="+job.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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

func (c *VeoClient) mapHTTPError(statusCode int, body []byte) error {
	var apiErr struct {
		Error *veoError `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		message = apiErr.Error.Message
	}

	c.logger.Warn("veo api request rejected",
		zap.Int("status", statusCode),
		zap.String("message", message))

	if statusCode == http.StatusTooManyRequests || isQuotaMessage(message) {
		if message == "" {
			message = "free tier quota likely exceeded"
		}
		return &QuotaExceededError{Message: message}
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", statusCode)
	}
	return fmt.Errorf("Veo API error: %s", message)
}

func isQuotaMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(message, "RESOURCE_EXHAUSTED") || strings.Contains(lower, "quota")
}
