package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kdimtricp/videoarena/internal/arena"
	"github.com/kdimtricp/videoarena/internal/database"
	"github.com/kdimtricp/videoarena/internal/models"
	"github.com/kdimtricp/videoarena/internal/storage"
)

type App struct {
	Arena   *arena.Service
	Ratings *database.RatingRepository
	Prompts *database.PromptRepository
	Storage storage.Storage
	Logger  *zap.Logger
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	history := app.Arena.History()
	if history == nil {
		history = []models.VideoResult{}
	}
	writeJSON(w, http.StatusOK, history)
}

type ratingRequest struct {
	ResultID string           `json:"result_id"`
	Model    models.ModelType `json:"model"`
	Rating   int              `json:"rating"`
	Prompt   string           `json:"prompt"`
}

func (app *App) AddRatingHandler(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rating := models.NewRating(req.ResultID, req.Model, req.Rating, req.Prompt)
	if err := rating.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := app.Ratings.AddRating(rating); err != nil {
		if errors.Is(err, database.ErrAlreadyRated) {
			writeError(w, http.StatusConflict, "result already rated")
			return
		}
		app.Logger.Error("failed to save rating", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save rating")
		return
	}

	writeJSON(w, http.StatusCreated, rating)
}

type ratingsResponse struct {
	Locked  bool            `json:"locked"`
	Ratings []models.Rating `json:"ratings"`
}

// ListRatingsHandler serves the leaderboard data. The view stays locked until
// the first generation of the session completes.
func (app *App) ListRatingsHandler(w http.ResponseWriter, r *http.Request) {
	ratings, err := app.Ratings.GetAllRatings()
	if err != nil {
		app.Logger.Error("failed to list ratings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list ratings")
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}

	writeJSON(w, http.StatusOK, ratingsResponse{
		Locked:  !app.Arena.HasGenerated(),
		Ratings: ratings,
	})
}

type promptsResponse struct {
	Presets []models.PresetPrompt `json:"presets"`
	Custom  []models.CustomPrompt `json:"custom"`
}

func (app *App) ListPromptsHandler(w http.ResponseWriter, r *http.Request) {
	custom, err := app.Prompts.GetAllPrompts()
	if err != nil {
		app.Logger.Error("failed to list prompts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list prompts")
		return
	}
	if custom == nil {
		custom = []models.CustomPrompt{}
	}

	writeJSON(w, http.StatusOK, promptsResponse{
		Presets: models.PresetPrompts,
		Custom:  custom,
	})
}

func (app *App) AddPromptHandler(w http.ResponseWriter, r *http.Request) {
	var prompt models.CustomPrompt
	if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prompt.ID = 0

	if err := prompt.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := app.Prompts.AddPrompt(&prompt); err != nil {
		app.Logger.Error("failed to save prompt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save prompt")
		return
	}

	writeJSON(w, http.StatusCreated, prompt)
}

func (app *App) DeletePromptHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prompt id")
		return
	}

	if err := app.Prompts.DeletePrompt(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type settingsRequest struct {
	GoogleAPIKey *string `json:"google_api_key"`
	SoraAPIKey   *string `json:"sora_api_key"`
}

// SettingsHandler updates the in-memory provider credentials. Absent fields
// leave the corresponding key untouched.
func (app *App) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	keys := app.Arena.Keys()
	if req.GoogleAPIKey != nil {
		keys.SetGoogleKey(*req.GoogleAPIKey)
	}
	if req.SoraAPIKey != nil {
		keys.SetSoraKey(*req.SoraAPIKey)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *App) VideoHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	file, err := app.Storage.OpenVideo(filename)
	if err != nil {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, filename, time.Time{}, file)
}
