package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Infisical/pki-issuance/internal/auth"
	"github.com/Infisical/pki-issuance/internal/config"
)

// Token command flags
var (
	tokenProject string
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a project-scoped API token",
	Long: `Mint a project-scoped bearer token for the REST API.

The token is signed with JWT_SECRET, so the same environment the service
runs with must be loaded.

Examples:
  issuanced token --project 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --subject admin
  issuanced token --project 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --subject ci --ttl 1h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenProject, "project", "", "Project id the token is scoped to (required)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "Optional role claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: JWT_EXPIRE_MINUTES)")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenProject == "" {
		return fmt.Errorf("--project is required")
	}
	if tokenSubject == "" {
		return fmt.Errorf("--subject is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	auth.InitJWT(cfg.JWT.Secret)

	ttl := tokenTTL
	if ttl == 0 {
		ttl = time.Duration(cfg.JWT.ExpireMinutes) * time.Minute
	}

	token, err := auth.GenerateToken(tokenSubject, tokenProject, tokenRole, time.Now().Add(ttl), cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
