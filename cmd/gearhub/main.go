package main

import (
	"gearhub-client/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Relying on system env vars when no .env file is present.
	_ = godotenv.Load()

	cli.Execute()
}
