package main

import (
	"github.com/joho/godotenv"

	"github.com/kavya-jain14/sentiment-tracker/internal/cli"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()
	cli.Execute()
}
