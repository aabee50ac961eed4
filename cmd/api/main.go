package main

import (
	"log"

	"csvpilot/internal/config"
	"csvpilot/internal/container"
	"csvpilot/ui"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	deps, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer deps.Close()

	app := ui.NewApp(deps)
	if err := app.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
