package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
)

const issuer = "verbai-studio"

// Claims carried by a studio API token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Introspection describes a presented token. When Active is false the other
// fields may not be populated.
type Introspection struct {
	Active    bool      `json:"active"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}

// Issuer creates and checks the bearer tokens handed out at sign in.
type Issuer struct {
	signer  Signer
	ttl     time.Duration
	nowTime func() time.Time
}

type IssuerOption func(*Issuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

func NewIssuer(signer Signer, ttl time.Duration, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Issue signs a token for the given identity.
func (i *Issuer) Issue(email, name, role string) (string, error) {
	now := i.nowTime()
	claims := Claims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrapf(err, "[Issuer Issue] failed to sign token for %s", email)
	}
	return signed, nil
}

// Introspect validates rawToken. Expired tokens return ErrTokenExpired and
// anything else unverifiable returns ErrInvalidToken.
func (i *Issuer) Introspect(rawToken string) (*Introspection, error) {
	rawToken = strings.TrimSpace(strings.TrimPrefix(rawToken, "Bearer "))
	if rawToken == "" {
		return &Introspection{Active: false}, errors.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, i.signer.GetVerificationKey,
		jwt.WithTimeFunc(i.nowTime),
		jwt.WithIssuer(issuer),
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return &Introspection{Active: false}, errors.Wrapf(errors.ErrTokenExpired, "[Issuer Introspect] %v", err)
		}
		return &Introspection{Active: false}, errors.Wrapf(errors.ErrInvalidToken, "[Issuer Introspect] %v", err)
	}
	if !parsed.Valid {
		return &Introspection{Active: false}, errors.ErrInvalidToken
	}

	out := &Introspection{
		Active: true,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
