package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.DatabaseFilePath = os.Getenv("DATABASE_FILE_PATH")
	if cfg.DatabaseFilePath == "" {
		cfg.DatabaseFilePath = "/config/data.sqlite"
	}

	cfg.FrontendURL = os.Getenv("FRONTEND_URL")
	cfg.ServerHost = "0.0.0.0"

	if name := os.Getenv("BOOKSHELF_LIBRARY_NAME"); name != "" {
		cfg.BookshelfLibraryName = name
	}

	hours, err := strconv.Atoi(os.Getenv("SYNC_INTERVAL_HOURS"))
	if err == nil && hours > 0 {
		cfg.SyncIntervalHours = hours
	}
}
