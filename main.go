package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"nicodb/cmd"
	"nicodb/internal/domain"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var friendly *domain.UserFriendlyError
		if errors.As(err, &friendly) && friendly.ExitCode != 0 {
			os.Exit(friendly.ExitCode)
		}
		os.Exit(1)
	}
}
