package sessions

import (
	"context"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/users"
)

// Session is the signed-in studio user. There is at most one per install and
// it is independent of the selected tenant.
type Session struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Role       users.RoleType `json:"role"`
	Initials   string         `json:"initials"`
	AvatarURL  string         `json:"avatarUrl,omitempty"`
	SignedInAt time.Time      `json:"signedInAt"`
	Token      string         `json:"token,omitempty"` // API bearer token, when an API secret is configured
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// RecordRepo persists the session record.
type RecordRepo interface {
	// Load returns the stored session, or nil when there is none.
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Clear(ctx context.Context) error
}

// ProfilePatch holds the profile fields a signed-in user may change. Nil
// fields are left as they are.
type ProfilePatch struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func fromUser(u *users.User, now time.Time) *Session {
	return &Session{
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Initials:   u.DisplayInitials(),
		AvatarURL:  u.AvatarURL,
		SignedInAt: now,
	}
}
