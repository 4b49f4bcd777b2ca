package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/internal/utils"
	"github.com/matteuzdev/VerbAI-Studio/token"
	"github.com/matteuzdev/VerbAI-Studio/users"
	"github.com/rs/zerolog/log"
)

// Check validates email and password against the credential table.
// Unknown users and wrong passwords are indistinguishable to the caller.
func Check(repo users.UserRepo, email, password string) (*users.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.ErrInvalidCredentials
	}
	user, err := repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, errors.Wrapf(err, "[sessions Check] failed to look up %s", email)
	}
	if !user.CheckPassword(password) {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

// Manager owns the current session.
type Manager struct {
	users   users.UserRepo
	records RecordRepo
	issuer  *token.Issuer
	nowTime func() time.Time

	current *Session
	lock    sync.RWMutex
}

type ManagerOption func(*Manager)

// WithTokenIssuer attaches a signed API token to every new session.
func WithTokenIssuer(issuer *token.Issuer) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(userRepo users.UserRepo, records RecordRepo, options ...ManagerOption) (*Manager, error) {
	if userRepo == nil {
		return nil, errors.New("[NewManager] users repo is required")
	}
	if records == nil {
		return nil, errors.New("[NewManager] session record repo is required")
	}

	m := &Manager{
		users:   userRepo,
		records: records,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Load restores the stored session, if any. It is called once at startup.
func (m *Manager) Load(ctx context.Context) error {
	s, err := m.records.Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "[Manager Load] failed to read session")
	}
	m.lock.Lock()
	m.current = s
	m.lock.Unlock()
	return nil
}

// Authenticate checks the credentials and, on success, persists and returns
// the new session. A failed check leaves the current session untouched.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := Check(m.users, email, password)
	if err != nil {
		log.Warn().Str("email", users.NormalizeEmail(email)).Msg("sign in rejected")
		return nil, err
	}

	s := fromUser(user, m.nowTime())
	if m.issuer != nil {
		s.Token, err = m.issuer.Issue(user.Email, user.Name, string(user.Role))
		if err != nil {
			return nil, errors.Wrapf(err, "[Manager Authenticate] failed to issue token")
		}
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.records.Save(ctx, s); err != nil {
		return nil, errors.Wrapf(err, "[Manager Authenticate] failed to persist session")
	}
	m.current = s
	log.Info().Str("email", s.Email).Str("role", string(s.Role)).Msg("signed in")
	return s.Clone(), nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.records.Clear(ctx); err != nil {
		return errors.Wrapf(err, "[Manager Logout] failed to clear session")
	}
	m.current = nil
	return nil
}

// Current returns a copy of the session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current.Clone()
}

// UpdateProfile merges patch into the session and the matching credential
// entry.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) (*Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.current == nil {
		return nil, errors.ErrSessionNotFound
	}

	next := m.current.Clone()
	utils.Assign(&next.Name, patch.Name)
	utils.Assign(&next.AvatarURL, patch.AvatarURL)
	if patch.Name != nil {
		next.Initials = users.Initials(next.Name)
	}

	user, err := m.users.GetByEmail(next.Email)
	switch {
	case err == nil:
		user.Name = next.Name
		user.AvatarURL = next.AvatarURL
		user.Initials = next.Initials
		if err := m.users.Upsert(user); err != nil {
			return nil, errors.Wrapf(err, "[Manager UpdateProfile] failed to update %s", next.Email)
		}
	case errors.Is(err, errors.ErrUserNotFound):
		log.Warn().Str("email", next.Email).Msg("profile updated for a user missing from the credential table")
	default:
		return nil, errors.Wrapf(err, "[Manager UpdateProfile] failed to look up %s", next.Email)
	}

	if err := m.records.Save(ctx, next); err != nil {
		return nil, errors.Wrapf(err, "[Manager UpdateProfile] failed to persist session")
	}
	m.current = next
	return next.Clone(), nil
}

// Introspect validates an API token issued by this manager.
func (m *Manager) Introspect(raw string) (*token.Introspection, error) {
	if m.issuer == nil {
		return nil, errors.Wrapf(errors.ErrUnsupported, "[Manager Introspect] no api secret configured")
	}
	return m.issuer.Introspect(raw)
}
