package main

import (
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/kdimtricp/videoarena/internal/api"
	"github.com/kdimtricp/videoarena/internal/arena"
	"github.com/kdimtricp/videoarena/internal/config"
	"github.com/kdimtricp/videoarena/internal/database"
	"github.com/kdimtricp/videoarena/internal/models"
	"github.com/kdimtricp/videoarena/internal/provider"
	"github.com/kdimtricp/videoarena/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.Development)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	localStorage, err := storage.NewLocalStorage(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	db, err := database.NewDB(database.Config{Path: cfg.DBPath})
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	ratingRepo := database.NewRatingRepository(db)
	promptRepo := database.NewPromptRepository(db)

	providers := map[models.ModelFamily]provider.VideoProvider{
		models.FamilyVeo:  provider.NewVeoClient(cfg.VeoBaseURL, logger),
		models.FamilySora: provider.NewSoraClient(cfg.SoraBaseURL, logger),
	}

	arenaService := arena.NewService(providers, localStorage, arena.NewKeyring(), cfg.VeoAPIKey, logger)

	app := &api.App{
		Arena:   arenaService,
		Ratings: ratingRepo,
		Prompts: promptRepo,
		Storage: localStorage,
		Logger:  logger,
	}

	router := api.NewRouter(app)

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("data_dir", cfg.DataDir),
		zap.String("db_path", cfg.DBPath),
		zap.Bool("veo_free_key_configured", cfg.VeoAPIKey != ""))
	if cfg.VeoAPIKey == "" {
		logger.Warn("VEO_API_KEY not set, Veo generations will require a user key from settings")
	}

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
