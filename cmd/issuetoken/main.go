// Command issuetoken prints a bearer token signed with the configured
// JWT secret.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/assessgen/backend/internal/auth"
	"github.com/assessgen/backend/internal/config"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.String("config", "./configs", "directory containing config.yaml")
	subject := pflag.String("subject", "", "token subject (user id)")
	role := pflag.String("role", "admin", "caller role")
	ttl := pflag.Duration("ttl", 72*time.Hour, "token lifetime")
	pflag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "--subject is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	token, err := auth.NewTokens(cfg.Auth.JWTSecret).Issue(*subject, *role, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
