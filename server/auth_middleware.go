package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/persistence/remote"
	"github.com/matteuzdev/VerbAI-Studio/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyTenantID stores the resolved tenant ID
	ContextKeyTenantID ContextKey = "tenant_id"
	// ContextKeyClaims stores the introspected bearer token
	ContextKeyClaims ContextKey = "claims"
)

// TenantMiddleware resolves the tenant from the X-Tenant-ID header or the
// tenant query parameter. Requests without either go to the default tenant.
func (s *Server) TenantMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(remote.TenantHeader)
		if raw == "" {
			raw = r.URL.Query().Get("tenant")
		}
		tenantID, err := s.docs.Resolve(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyTenantID, tenantID)
		next(w, r.WithContext(ctx))
	}
}

// RequireAuth validates a Bearer token when the server has an issuer.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.issuer == nil {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeMessage(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			writeMessage(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := s.issuer.Introspect(parts[1])
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		next(w, r.WithContext(ctx))
	}
}

func tenantFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyTenantID).(string)
	return id
}

// ClaimsFromContext returns the introspected token of an authenticated request.
func ClaimsFromContext(ctx context.Context) (*token.Introspection, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Introspection)
	return claims, ok
}
