package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kdimtricp/videoarena/internal/arena"
	"github.com/kdimtricp/videoarena/internal/models"
)

type generateRequest struct {
	Prompt      string `json:"prompt"`
	Image       string `json:"image,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
	AspectRatio string `json:"aspect_ratio"`
	Duration    string `json:"duration"`
	Mode        string `json:"mode"`
	LeftModel   string `json:"left_model"`
	RightModel  string `json:"right_model"`
}

func (req *generateRequest) arenaRequest() (arena.Request, error) {
	out := arena.Request{
		Prompt:      req.Prompt,
		AspectRatio: models.AspectRatio(req.AspectRatio),
		Duration:    models.VideoDuration(req.Duration),
		ImageMIME:   req.ImageMIME,
	}
	if out.AspectRatio == "" {
		out.AspectRatio = models.AspectLandscape
	}
	if out.Duration == "" {
		out.Duration = models.DurationShort
	}
	if req.Image != "" {
		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return arena.Request{}, fmt.Errorf("invalid reference image encoding")
		}
		out.ImageBytes = data
	}
	return out, nil
}

// GenerateHandler launches a comparison (both panels) or a single-panel run.
// Generation continues after the response; progress streams via SSE.
func (app *App) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	arenaReq, err := req.arenaRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var selections []arena.Selection
	if req.LeftModel != "" && req.LeftModel != "none" {
		selections = append(selections, arena.Selection{Panel: arena.PanelLeft, Model: models.ModelType(req.LeftModel)})
	}
	if req.Mode != "single" && req.RightModel != "" && req.RightModel != "none" {
		selections = append(selections, arena.Selection{Panel: arena.PanelRight, Model: models.ModelType(req.RightModel)})
	}
	if len(selections) == 0 {
		writeError(w, http.StatusBadRequest, "no model selected")
		return
	}

	// The run must outlive this request: in-flight jobs are not tied to the
	// HTTP connection that started them.
	if err := app.Arena.RunGeneration(context.Background(), arenaReq, selections); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, arena.ErrPanelBusy) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	panels := make([]string, len(selections))
	for i, sel := range selections {
		panels[i] = string(sel.Panel)
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"panels": panels})
}

type singleGenerateRequest struct {
	Prompt      string `json:"prompt"`
	Image       string `json:"image,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
	AspectRatio string `json:"aspect_ratio"`
	Duration    string `json:"duration"`
	Model       string `json:"model"`
}

// SingleGenerateHandler re-runs one panel alone with the same prompt and
// settings, used once the other side of a comparison has finished.
func (app *App) SingleGenerateHandler(w http.ResponseWriter, r *http.Request) {
	panel := arena.PanelID(chi.URLParam(r, "panel"))
	if !panel.Valid() {
		writeError(w, http.StatusNotFound, "unknown panel")
		return
	}

	var req singleGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	full := generateRequest{
		Prompt:      req.Prompt,
		Image:       req.Image,
		ImageMIME:   req.ImageMIME,
		AspectRatio: req.AspectRatio,
		Duration:    req.Duration,
	}
	arenaReq, err := full.arenaRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sel := arena.Selection{Panel: panel, Model: models.ModelType(req.Model)}
	if err := app.Arena.RunSingle(context.Background(), arenaReq, sel); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, arena.ErrPanelBusy) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{"panels": []string{string(panel)}})
}

func (app *App) PanelStateHandler(w http.ResponseWriter, r *http.Request) {
	panel := arena.PanelID(chi.URLParam(r, "panel"))

	state, err := app.Arena.PanelState(panel)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown panel")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PanelEventsHandler streams a panel's state transitions as server-sent
// events until the current run reaches a terminal state.
func (app *App) PanelEventsHandler(w http.ResponseWriter, r *http.Request) {
	panel := arena.PanelID(chi.URLParam(r, "panel"))

	updates, err := app.Arena.Updates(panel)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown panel")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	clientGone := r.Context().Done()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				return
			}

			data, err := json.Marshal(state)
			if err != nil {
				app.Logger.Error("failed to marshal panel state", zap.Error(err))
				continue
			}

			fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
			flusher.Flush()

		case <-clientGone:
			return
		}
	}
}

type confirmRequest struct {
	Accepted bool `json:"accepted"`
}

// ConfirmHandler resolves the quota prompt for a suspended panel.
func (app *App) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	panel := arena.PanelID(chi.URLParam(r, "panel"))

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := app.Arena.Confirm(panel, req.Accepted); err != nil {
		if errors.Is(err, arena.ErrNotAwaitingConfirmation) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
