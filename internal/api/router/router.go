// Package router provides HTTP routing configuration using Chi.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Infisical/pki-issuance/internal/api/handler"
	"github.com/Infisical/pki-issuance/internal/api/middleware"
	"github.com/Infisical/pki-issuance/internal/api/service"
	"github.com/Infisical/pki-issuance/internal/audit"
	"github.com/Infisical/pki-issuance/internal/ca"
	"github.com/Infisical/pki-issuance/internal/kms"
	"github.com/Infisical/pki-issuance/internal/store"
)

// Config holds router configuration.
type Config struct {
	Version string
	Store   store.Store
	KMS     *kms.Encryptor
	Logger  *logrus.Logger

	// Ready probes the storage backend for the readiness endpoint; nil
	// means always ready.
	Ready func(ctx context.Context) bool
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.CORS)

	// Health endpoints (no auth)
	healthHandler := handler.NewHealthHandler(cfg.Version, cfg.Ready)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Create services
	issuer := ca.NewInternalIssuer(cfg.Store, cfg.KMS)
	auditLog := audit.NewLogger(cfg.Logger)
	certService := service.NewCertService(cfg.Store, issuer, cfg.KMS, auditLog)
	profileService := service.NewProfileService(cfg.Store)
	templateService := service.NewTemplateService(cfg.Store)
	caService := service.NewCAService(cfg.Store, cfg.KMS)

	// Create handlers
	certHandler := handler.NewCertHandler(certService)
	profileHandler := handler.NewProfileHandler(profileService)
	templateHandler := handler.NewTemplateHandler(templateService)
	caHandler := handler.NewCAHandler(caService)

	// Issuance API
	r.Route("/api/v3/certificates", func(r chi.Router) {
		r.Use(middleware.Auth)

		r.Post("/issue-certificate", certHandler.Issue)
		r.Post("/sign-certificate", certHandler.Sign)
		r.Post("/order-certificate", certHandler.Order)
		r.Post("/{certificateId}/renew", certHandler.Renew)
		r.Get("/{certificateId}", certHandler.Get)
	})

	// Admin API
	r.Route("/api/v1/pki", func(r chi.Router) {
		r.Use(middleware.Auth)

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", profileHandler.Create)
			r.Get("/", profileHandler.List)
			r.Get("/{id}", profileHandler.Get)
			r.Patch("/{id}", profileHandler.Update)
			r.Delete("/{id}", profileHandler.Delete)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", templateHandler.Create)
			r.Get("/", templateHandler.List)
			r.Get("/{id}", templateHandler.Get)
			r.Delete("/{id}", templateHandler.Delete)
		})

		r.Route("/ca", func(r chi.Router) {
			r.Post("/", caHandler.Create)
			r.Get("/", caHandler.List)
			r.Get("/{id}", caHandler.Get)
		})
	})

	return r
}
