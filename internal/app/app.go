// Package app assembles coinfolio's components and runs the server.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mkaminski/coinfolio/internal/auth"
	"github.com/mkaminski/coinfolio/internal/auth/coinpost"
	"github.com/mkaminski/coinfolio/internal/auth/session"
	"github.com/mkaminski/coinfolio/internal/config"
	"github.com/mkaminski/coinfolio/internal/platform/otel"
	"github.com/mkaminski/coinfolio/internal/storage/sqlite"
	"github.com/mkaminski/coinfolio/internal/web"
)

// Run wires storage, the CoinPost client, session management, and the web
// server, then serves until the context ends.
func Run(ctx context.Context, cfg config.Config) error {
	shutdownOtel, err := otel.Setup(ctx, "coinfolio")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	provider, err := coinpost.New(coinpost.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		BaseURL:      cfg.ProviderURL,
		Scopes:       cfg.Scopes,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		return fmt.Errorf("build coinpost client: %w", err)
	}

	sessions := session.NewManager(store, store, cfg.SessionLifetime)
	sessions.StartCleanup(ctx, cfg.CleanupInterval)

	service := auth.NewService(provider, store, sessions)
	server := web.NewServer(service, sessions, web.Options{
		AttemptTTL:          cfg.LoginAttemptTTL,
		TrustForwardedProto: cfg.TrustForwardedProto,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("coinfolio listening")
	return server.Run(ctx, cfg.HTTPAddr)
}
