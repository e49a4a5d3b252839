// Command issuanced runs the certificate issuance REST service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "issuanced",
	Short: "Certificate issuance service",
	Long: `issuanced is the certificate issuance REST service: certificate
profiles bind an internal CA and an optional policy template; clients pass
a profile id to issue, sign or order certificates.

Examples:
  # Start the service (configuration from environment / .env)
  issuanced serve

  # Start with a YAML config file
  issuanced serve --config issuanced.yaml

  # Mint a project-scoped API token
  issuanced token --project 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --subject admin`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}
