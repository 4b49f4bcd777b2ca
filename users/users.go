package users

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the role a user holds across the studio
type RoleType string

const (
	RoleSuperAdmin RoleType = "super_admin" // Can manage tenants and the team
	RoleAdmin      RoleType = "admin"       // Can manage the content and settings of any tenant
	RoleEditor     RoleType = "editor"      // Can edit content
)

func (r RoleType) Valid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleEditor
}

// User is an entry of the credential table. The password hash is never
// serialised to JSON; it is only written to the credentials file.
type User struct {
	Email        string   `json:"email" yaml:"email"`
	Name         string   `json:"name" yaml:"name"`
	Role         RoleType `json:"role" yaml:"role"`
	Initials     string   `json:"initials" yaml:"initials,omitempty"`
	AvatarURL    string   `json:"avatarUrl,omitempty" yaml:"avatar_url,omitempty"`
	PasswordHash string   `json:"-" yaml:"password_hash"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return u.PasswordHash != "" && CheckPasswordHash(password, u.PasswordHash)
}

// IsSuperAdmin returns true if the user has super admin privileges
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// CanEditSettings reports whether the user may change brand, sections and site config.
func (u *User) CanEditSettings() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleAdmin
}

// DisplayInitials returns the stored initials or derives them from the name.
func (u *User) DisplayInitials() string {
	if u.Initials != "" {
		return u.Initials
	}
	return Initials(u.Name)
}

// Initials takes the first letter of the first two words of name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		out = append(out, unicode.ToUpper([]rune(word)[0]))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// NormalizeEmail is the lookup key used for credentials.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
