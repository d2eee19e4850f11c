// Command token mints a bearer token for an identity using the service secret.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/devrep/reputation-registry/internal/api/dto"
	"github.com/devrep/reputation-registry/internal/auth"
	"github.com/devrep/reputation-registry/internal/config"
	"github.com/devrep/reputation-registry/internal/domain"
)

func main() {
	identity := flag.String("identity", "", "caller identity to embed as the token subject")
	flag.Parse()

	cfg, err := config.LoadAuth()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *identity == "" {
		log.Fatal("-identity is required")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	token, exp, err := tokens.GenerateToken(domain.Identity(*identity))
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.AuthResponse{Token: token, ExpiresAt: exp.Unix()}); err != nil {
		log.Fatalf("write token: %v", err)
	}
}
