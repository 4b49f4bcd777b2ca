package users

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"gopkg.in/yaml.v2"
)

var _ UserRepo = (*Table)(nil)

// Table is the in-memory credential table, optionally backed by a YAML file.
type Table struct {
	users map[string]*User
	lock  sync.RWMutex
}

func NewTable(seed ...*User) *Table {
	t := &Table{users: make(map[string]*User)}
	for _, u := range seed {
		_ = t.Upsert(u)
	}
	return t
}

type tableFile struct {
	Users []*User `yaml:"users"`
}

func (t *Table) Upsert(user *User) error {
	if user == nil || NormalizeEmail(user.Email) == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "[Table Upsert] email is required")
	}
	if !user.Role.Valid() {
		return errors.Wrapf(errors.ErrInvalidRequest, "[Table Upsert] unknown role %q", user.Role)
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	u := *user
	u.Email = NormalizeEmail(u.Email)
	if u.Initials == "" {
		u.Initials = Initials(u.Name)
	}
	t.users[u.Email] = &u
	return nil
}

func (t *Table) Delete(email string) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	key := NormalizeEmail(email)
	if _, ok := t.users[key]; !ok {
		return errors.Wrapf(errors.ErrUserNotFound, "[Table Delete] %s", email)
	}
	delete(t.users, key)
	return nil
}

func (t *Table) GetByEmail(email string) (*User, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	u, ok := t.users[NormalizeEmail(email)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUserNotFound, "[Table GetByEmail] %s", email)
	}
	c := *u
	return &c, nil
}

// List returns the users ordered by email.
func (t *Table) List() ([]*User, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	out := make([]*User, 0, len(t.users))
	for _, u := range t.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Load replaces the table with the users stored in the YAML file at path.
func (t *Table) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("[Table Load] failed to read %s: %w", path, err)
	}
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("[Table Load] failed to parse %s: %w", path, err)
	}

	loaded := NewTable()
	for _, u := range f.Users {
		if err := loaded.Upsert(u); err != nil {
			return fmt.Errorf("[Table Load] bad entry in %s: %w", path, err)
		}
	}
	t.lock.Lock()
	t.users = loaded.users
	t.lock.Unlock()
	return nil
}

// Save writes the table to path with owner-only permissions.
func (t *Table) Save(path string) error {
	list, _ := t.List()
	raw, err := yaml.Marshal(tableFile{Users: list})
	if err != nil {
		return fmt.Errorf("[Table Save] failed to encode users: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("[Table Save] failed to create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("[Table Save] failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("[Table Save] failed to replace %s: %w", path, err)
	}
	return nil
}

// EnsureTable loads the credential file at path. When it does not exist a
// super admin is created, using adminPassword or a generated one, and the file
// is written. The generated password is returned so it can be shown once.
func EnsureTable(path, adminEmail, adminPassword string) (table *Table, generatedPassword string, err error) {
	table = NewTable()
	err = table.Load(path)
	if err == nil {
		return table, "", nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, "", err
	}

	password := adminPassword
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return nil, "", fmt.Errorf("[users EnsureTable] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("[users EnsureTable] failed to hash password: %w", err)
	}
	if err := table.Upsert(&User{
		Email:        adminEmail,
		Name:         "System Administrator",
		Role:         RoleSuperAdmin,
		PasswordHash: passwordHash,
	}); err != nil {
		return nil, "", err
	}
	if err := table.Save(path); err != nil {
		return nil, "", err
	}
	return table, generatedPassword, nil
}
