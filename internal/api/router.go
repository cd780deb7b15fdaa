package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", app.GenerateHandler)

		r.Route("/panels/{panel}", func(r chi.Router) {
			r.Get("/", app.PanelStateHandler)
			r.Get("/events", app.PanelEventsHandler)
			r.Post("/generate", app.SingleGenerateHandler)
			r.Post("/confirm", app.ConfirmHandler)
		})

		r.Get("/history", app.HistoryHandler)

		r.Get("/ratings", app.ListRatingsHandler)
		r.Post("/ratings", app.AddRatingHandler)

		r.Get("/prompts", app.ListPromptsHandler)
		r.Post("/prompts", app.AddPromptHandler)
		r.Delete("/prompts/{id}", app.DeletePromptHandler)

		r.Put("/settings", app.SettingsHandler)
	})

	r.Get("/videos/{filename}", app.VideoHandler)

	return r
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
