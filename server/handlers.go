package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/sessions"
	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/matteuzdev/VerbAI-Studio/socket"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   s.nowTime().UTC().Format(time.RFC3339),
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Initials string `json:"initials"`
}

// LoginHandler checks credentials against the user table and issues an API
// token. Without an API secret the token is empty.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.users == nil {
			writeError(w, r, errors.Wrapf(errors.ErrUnsupported, "no user table"))
			return
		}
		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := sessions.Check(s.users, req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := loginResponse{User: loginUser{
			Email:    user.Email,
			Name:     user.Name,
			Role:     string(user.Role),
			Initials: user.DisplayInitials(),
		}}
		if s.issuer != nil {
			if resp.Token, err = s.issuer.Issue(user.Email, user.Name, string(user.Role)); err != nil {
				writeError(w, r, err)
				return
			}
		}
		log.Info().Str("email", user.Email).Msg("api login")
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := s.docs.SiteConfig(tenantFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// MergeConfigHandler merges the posted keys into the stored site config.
func (s *Server) MergeConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		if !decodeBody(w, r, &patch) {
			return
		}
		cfg, err := s.docs.MergeSiteConfig(tenantFromContext(r.Context()), patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func (s *Server) GetSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, found, err := s.docs.Settings(tenantFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !found {
			writeMessage(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func (s *Server) PutSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings site.Settings
		if !decodeBody(w, r, &settings) {
			return
		}
		if err := s.docs.PutSettings(tenantFromContext(r.Context()), settings); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// GetSegmentHandler returns a whole segment as stored, 404 when the tenant
// never wrote it.
func (s *Server) GetSegmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment, err := persistence.ParseSegment(r.PathValue("segment"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		raw, found, err := s.docs.ReadSegment(tenantFromContext(r.Context()), segment)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !found {
			writeMessage(w, http.StatusNotFound, "Not found")
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

func (s *Server) PutSegmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment, err := persistence.ParseSegment(r.PathValue("segment"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		limitBody(w, r)
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Unreadable body")
			return
		}
		if err := s.docs.WriteSegment(tenantFromContext(r.Context()), segment, raw); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SitemapHandler renders the tenant's published posts. The domain query
// parameter overrides the configured base URL.
func (s *Server) SitemapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := s.docs.Posts(tenantFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		domain := r.URL.Query().Get("domain")
		if domain == "" {
			domain = s.config.GetBaseURL()
		}
		sitemap, err := content.GenerateSitemap(domain, posts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = io.WriteString(w, sitemap)
	}
}

func (s *Server) RobotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := s.docs.SiteConfig(tenantFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		robots := cfg.RobotsTxt
		if robots == "" {
			robots = site.ServiceSiteConfig().RobotsTxt
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, robots)
	}
}

func (s *Server) WebsocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(s.hub, w, r, tenantFromContext(r.Context()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps store errors onto HTTP statuses. Server errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "Internal error"
	switch {
	case errors.Is(err, errors.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, errors.ErrInvalidRequest),
		errors.Is(err, errors.ErrInvalidSegment),
		errors.Is(err, errors.ErrInvalidTenant):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, errors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, errors.ErrInvalidToken), errors.Is(err, errors.ErrTokenExpired):
		status, message = http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, errors.ErrUnsupported):
		status, message = http.StatusNotImplemented, "Not supported"
	}
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("request", requestLabel(r)).Msg("request failed")
	} else if status != http.StatusNotFound {
		logError(r.Method, r.URL.Path, err.Error())
	}
	writeMessage(w, status, message)
}

// decodeBody decodes a JSON body into out, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	limitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		logError(r.Method, r.URL.Path, err.Error())
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
