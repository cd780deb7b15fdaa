package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdimtricp/videoarena/internal/models"
)

func newTestVeoClient(baseURL string) *VeoClient {
	c := NewVeoClient(baseURL, nil)
	c.policy.Interval = time.Millisecond
	return c
}

func veoJob() Job {
	return Job{
		Model:       models.ModelVeo2,
		Prompt:      "a cat on a skateboard",
		AspectRatio: models.AspectLandscape,
		Duration:    models.DurationMedium,
		APIKey:      "test-key",
	}
}

func TestVeoSubmitPayload(t *testing.T) {
	var captured veoGenerateRequest
	var capturedKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(veoOperation{Name: "operations/op-1"})
	}))
	defer server.Close()

	client := newTestVeoClient(server.URL)
	job := veoJob()
	job.ImageBytes = []byte("fake-image")
	job.ImageMIME = "image/png"

	handle, err := client.Submit(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "operations/op-1", handle)

	assert.Equal(t, "test-key", capturedKey)
	require.Len(t, captured.Instances, 1)
	assert.Equal(t, "a cat on a skateboard", captured.Instances[0].Prompt)
	require.NotNil(t, captured.Instances[0].Image)
	assert.Equal(t, "image/png", captured.Instances[0].Image.MimeType)
	assert.Equal(t, "16:9", captured.Parameters.AspectRatio)
	assert.Equal(t, 8, captured.Parameters.DurationSeconds)
	assert.Equal(t, 1, captured.Parameters.SampleCount)
}

func TestVeoSubmitRequiresKey(t *testing.T) {
	client := newTestVeoClient("http://unused")
	job := veoJob()
	job.APIKey = ""

	_, err := client.Submit(context.Background(), job)
	assert.Error(t, err)
}

func TestVeoQuotaDetection(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
	}{
		{"http 429", http.StatusTooManyRequests, "slow down"},
		{"resource exhausted marker", http.StatusBadRequest, "RESOURCE_EXHAUSTED: generate quota"},
		{"quota marker", http.StatusForbidden, "free tier quota exceeded for this project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(map[string]*veoError{"error": {Code: tt.statusCode, Message: tt.message}})
			}))
			defer server.Close()

			client := newTestVeoClient(server.URL)
			_, err := client.Submit(context.Background(), veoJob())
			require.Error(t, err)

			var quota *QuotaExceededError
			assert.ErrorAs(t, err, &quota, "expected quota error, got: %v", err)
		})
	}
}

func TestVeoNonQuotaErrorIsPlain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]*veoError{"error": {Code: 400, Message: "invalid prompt"}})
	}))
	defer server.Close()

	client := newTestVeoClient(server.URL)
	_, err := client.Submit(context.Background(), veoJob())
	require.Error(t, err)

	var quota *QuotaExceededError
	assert.NotErrorAs(t, err, &quota)
	assert.Contains(t, err.Error(), "invalid prompt")
}

func TestVeoPollStates(t *testing.T) {
	tests := []struct {
		name     string
		op       veoOperation
		wantDone bool
		wantErr  string
	}{
		{
			name:     "still running",
			op:       veoOperation{Name: "operations/op-1"},
			wantDone: false,
		},
		{
			name: "done with result",
			op: veoOperation{
				Name: "operations/op-1",
				Done: true,
				Response: &veoResponse{GeneratedVideos: []veoGeneratedVideo{
					{Video: veoVideo{URI: "https://example.com/video?sig=abc"}},
				}},
			},
			wantDone: true,
		},
		{
			name:    "done with provider error",
			op:      veoOperation{Name: "operations/op-1", Done: true, Error: &veoError{Message: "render failed"}},
			wantErr: "render failed",
		},
		{
			name:    "done without link",
			op:      veoOperation{Name: "operations/op-1", Done: true, Response: &veoResponse{}},
			wantErr: "no download link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.op)
			}))
			defer server.Close()

			client := newTestVeoClient(server.URL)
			status, err := client.Poll(context.Background(), veoJob(), "operations/op-1")

			if tt.wantErr != "" {
				require.Error(t, err)
				var terminal *TerminalError
				require.ErrorAs(t, err, &terminal)
				assert.Contains(t, terminal.Message, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDone, status.Done)
			if tt.wantDone {
				assert.NotEmpty(t, status.DownloadRef)
			} else {
				assert.Equal(t, -1, status.Progress)
			}
		})
	}
}

func TestVeoPollQuotaInOperationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(veoOperation{
			Name:  "operations/op-1",
			Done:  true,
			Error: &veoError{Message: "RESOURCE_EXHAUSTED", Status: "RESOURCE_EXHAUSTED"},
		})
	}))
	defer server.Close()

	client := newTestVeoClient(server.URL)
	_, err := client.Poll(context.Background(), veoJob(), "operations/op-1")
	require.Error(t, err)

	var quota *QuotaExceededError
	assert.ErrorAs(t, err, &quota)
}

func TestVeoDownloadAppendsKey(t *testing.T) {
	var capturedKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedKey = r.URL.Query().Get("key")
		fmt.Fprint(w, "binary-video")
	}))
	defer server.Close()

	client := newTestVeoClient(server.URL)
	body, err := client.Download(context.Background(), veoJob(), server.URL+"/download?sig=abc")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "binary-video", string(data))
	assert.Equal(t, "test-key", capturedKey)
}
