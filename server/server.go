package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/socket"
	"github.com/matteuzdev/VerbAI-Studio/token"
	"github.com/matteuzdev/VerbAI-Studio/users"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds request bodies; contents may carry base64 images.
const maxBodyBytes = 50 << 20

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	docs    *docstore.Store
	users   users.UserRepo
	hub     *socket.Hub
	issuer  *token.Issuer
	nowTime func() time.Time
}

type Option func(*Server)

// WithHub enables the websocket change feed on RouteWebsocket.
func WithHub(hub *socket.Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithTokenIssuer overrides the issuer built from the configured API secret.
func WithTokenIssuer(issuer *token.Issuer) Option {
	return func(s *Server) {
		s.issuer = issuer
	}
}

func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// New builds the document service. Bearer tokens are required on protected
// routes only when an API secret is configured.
func New(cfg config.Config, docs *docstore.Store, userRepo users.UserRepo, options ...Option) (*Server, error) {
	if docs == nil {
		return nil, fmt.Errorf("[Server New] document store is required")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		docs:    docs,
		users:   userRepo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.issuer == nil && cfg.GetAPISecret() != "" {
		s.issuer = token.NewIssuer(token.NewHMACSigner(cfg.GetAPISecret()), cfg.GetTokenTTL(), token.WithNowTime(s.nowTime))
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}

func logError(method, path, error string) {
	log.Warn().Msgf("[%-19s] %s %s", colourMethod(method), path, Red+error+ResetColor)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
