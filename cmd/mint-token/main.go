package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/config"
	"github.com/praxia/medprep-backend/internal/service"
)

// mint-token prints a fresh API token signed with the configured secret.
// The client app stores it and sends it as a Bearer token on every call.
func main() {
	cfg := config.Load()

	authService := service.NewAuthService(cfg.APISecret, cfg.TokenExpiry, zerolog.Nop())

	token, err := authService.IssueToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint-token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
