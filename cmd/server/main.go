package main

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"taskpad/internal/config"
	"taskpad/internal/serverapp"
)

func main() {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	path := strings.TrimSpace(os.Getenv("TASKPAD_CONFIG"))
	if path == "" {
		path = "taskpad_config.yml"
	}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("load config: %v", err)
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:  cfg,
		DataDir: cfg.DataDir,
		Logger:  log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on http://localhost%s", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, handler))
}
