package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Infisical/pki-issuance/internal/api/router"
	"github.com/Infisical/pki-issuance/internal/api/server"
	"github.com/Infisical/pki-issuance/internal/auth"
	"github.com/Infisical/pki-issuance/internal/config"
	"github.com/Infisical/pki-issuance/internal/kms"
	"github.com/Infisical/pki-issuance/internal/store"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the issuance REST service",
	Long: `Start the issuance REST service.

Configuration comes from environment variables (a .env file is honored),
optionally seeded from a YAML file via --config.

Environment variables:
  HTTP_HOST / HTTP_PORT   Listen address (default :8080)
  MYSQL_DSN               MySQL DSN (required unless DEV_MODE=1)
  JWT_SECRET              HMAC secret for API tokens (required)
  KMS_MASTER_KEY          Master key sealing stored private keys (required)
  DEV_MODE                1 runs with the in-memory store`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	var cfg *config.Config
	var err error
	if serveConfigPath != "" {
		cfg, err = config.LoadFromFile(serveConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	auth.InitJWT(cfg.JWT.Secret)

	enc, err := kms.New(cfg.KMS.MasterKey)
	if err != nil {
		return err
	}

	var st store.Store
	ready := func(ctx context.Context) bool { return true }
	if cfg.DevMode {
		log.Warn("running in dev mode with the in-memory store")
		st = store.NewMemoryStore()
	} else {
		gormStore, err := store.OpenGorm(cfg.MySQL.DSN)
		if err != nil {
			return err
		}
		st = gormStore
		ready = func(ctx context.Context) bool {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return gormStore.Ping(ctx) == nil
		}
	}

	handler := router.New(&router.Config{
		Version: version,
		Store:   st,
		KMS:     enc,
		Logger:  log,
		Ready:   ready,
	})

	srv := server.New(&server.Config{
		Addr:            cfg.HTTP.Address(),
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, handler, log)

	return srv.Start()
}
