package main

import (
	"log"

	"github.com/joho/godotenv"

	"reviewer/internal/app"
)

func main() {
	// Optional .env for local runs; real deployments set the env directly.
	godotenv.Load()

	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize reviewer: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Failed to start reviewer: %v", err)
	}
}
