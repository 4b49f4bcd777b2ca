package app

import (
	"context"
	"net/http"
	"os"

	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/server"
	"github.com/matteuzdev/VerbAI-Studio/socket"
	"github.com/matteuzdev/VerbAI-Studio/users"
	"github.com/rs/zerolog/log"
)

// Service is the remote document service: per-tenant JSON documents behind
// the HTTP API, with a websocket feed of changes.
type Service struct {
	HTTP *http.Server
	Docs *docstore.Store
	Hub  *socket.Hub

	cancel context.CancelFunc
}

// NewService opens the document folder and builds the HTTP server. The hub
// runs until Close.
func NewService(cfg config.Config) (*Service, error) {
	if err := os.MkdirAll(cfg.GetDataFolder(), 0o755); err != nil {
		return nil, err
	}

	table, generated, err := users.EnsureTable(cfg.GetCredentialsFile(), cfg.GetSystemAdminEmail(), cfg.GetSystemAdminPassword())
	if err != nil {
		return nil, err
	}
	if generated != "" {
		log.Warn().
			Str("email", cfg.GetSystemAdminEmail()).
			Str("password", generated).
			Msg("created super admin, store this password now; it is not shown again")
	}

	hub := socket.NewHub()
	docs, err := docstore.Open(cfg.GetDataFolder(),
		docstore.WithDefaultTenantID(cfg.GetDefaultTenantID()),
		docstore.WithChangeHook(hub.Notify),
	)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(cfg, docs, table, server.WithHub(hub))
	if err != nil {
		_ = docs.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	if cfg.GetAPISecret() == "" {
		log.Warn().Msg("no API secret configured, write routes are open")
	}
	return &Service{
		HTTP:   &http.Server{Addr: cfg.GetPort(), Handler: srv},
		Docs:   docs,
		Hub:    hub,
		cancel: cancel,
	}, nil
}

// Shutdown stops accepting requests, then closes the hub and the document store.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	s.cancel()
	if cerr := s.Docs.Close(); err == nil {
		err = cerr
	}
	return err
}
