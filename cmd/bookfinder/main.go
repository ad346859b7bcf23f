package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookfinder/internal/config"
	"bookfinder/internal/favorites"
	"bookfinder/internal/googlebooks"
	"bookfinder/internal/search"
	"bookfinder/internal/shell"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load(".env.local")

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	configPath := getEnv("BOOKFINDER_CONFIG", "bookfinder.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}
	if dbPath := os.Getenv("BOOKFINDER_DB"); dbPath != "" {
		cfg.Favorites.DBPath = dbPath
	}
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := favorites.OpenSQLite(cfg.Favorites.DBPath)
	if err != nil {
		log.WithError(err).Fatal("could not open favorites storage")
	}
	defer repo.Close()

	favStore := favorites.NewStore(repo, log)
	if err := favStore.Rehydrate(ctx); err != nil {
		// Start with an empty set rather than refusing to run; favorites
		// stay usable for the session even if the old state is unreadable.
		log.WithError(err).Warn("could not rehydrate favorites")
	}

	client := googlebooks.NewClient(googlebooks.Options{
		BaseURL:    cfg.API.BaseURL,
		UserAgent:  cfg.API.UserAgent,
		Timeout:    cfg.API.Timeout(),
		RPS:        cfg.API.RPS,
		MaxRetries: cfg.API.MaxRetries,
	})

	var ui *shell.Shell
	ctrl := search.NewController(client, search.Options{
		Debounce:  cfg.Search.Debounce(),
		OnChange:  func(st search.State) { ui.HandleState(st) },
		ScrollTop: func() { ui.ScrollTop() },
		Logger:    log,
	})
	defer ctrl.Close()

	ui = shell.New(ctrl, favStore, client, log)

	// A shared query string reproduces a search state on startup.
	if share := os.Getenv("BOOKFINDER_SHARE"); share != "" {
		ui.SeedFromShare(ctx, share)
	}

	if err := ui.Run(ctx); err != nil {
		log.WithError(err).Fatal("shell terminated")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
