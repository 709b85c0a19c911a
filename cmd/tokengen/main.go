// Package main provides a CLI tool for minting test tokens against a local
// opsgate instance. Tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	jwttoken "opsgate/internal/jwt_token"
)

const (
	// Dev signing key, matches config.go when JWT_SIGNING_KEY is not set.
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "opsgate"
	defaultAudience = "opsgate-admin"
	defaultTokenTTL = 30 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	adminID := flag.String("admin-id", "", "Admin ID (UUID). Generated if empty.")
	username := flag.String("username", "admin", "Username claim")
	signingKey := flag.String("signing-key", devSigningKey, "HMAC signing key")
	issuer := flag.String("issuer", defaultIssuer, "Issuer claim")
	audience := flag.String("audience", defaultAudience, "Audience claim")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	id := parseOrGenerateUUID(*adminID)

	svc := jwttoken.NewService(*signingKey, *issuer, *audience, *ttl)
	token, jti, err := svc.Generate(id, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "access_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"admin_id": id.String(),
				"username": *username,
				"jti":      jti,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Expires In: %s\n", *ttl)
	fmt.Printf("Admin ID:   %s\n", id)
	fmt.Printf("Username:   %s\n", *username)
	fmt.Printf("JTI:        %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/auth/info")
}

func printUsage() {
	fmt.Println(`tokengen - Mint test tokens for a local opsgate instance

WARNING: Tokens signed with the dev key will NOT work in production.
         A minted token passes signature checks but has no cached session,
         so stateful endpoints still ask you to log in.

Usage:
  tokengen [flags]

Examples:
  # Token with generated admin ID
  tokengen

  # Token for a known admin with a custom TTL
  tokengen -admin-id "550e8400-e29b-41d4-a716-446655440000" -ttl 1h

  # JSON output
  tokengen -json`)
	fmt.Println()
	flag.PrintDefaults()
}

func parseOrGenerateUUID(input string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid admin-id UUID: %s\n", input)
		os.Exit(1)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
