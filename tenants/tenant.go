package tenants

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
)

type Plan string

const (
	PlanStarter    Plan = "Starter"
	PlanPro        Plan = "Pro"
	PlanEnterprise Plan = "Enterprise"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

const (
	DefaultTenantID     = "verbai-agency"
	defaultTenantName   = "VerbAI Agency"
	defaultTenantDomain = "verbai.com"
)

var (
	validID   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)
	idRunes   = regexp.MustCompile(`[^a-z0-9]+`)
	domainFix = strings.NewReplacer("https://", "", "http://", "")
)

// Tenant is a client workspace. Its data segments are keyed by ID.
type Tenant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	LogoURL string `json:"logoUrl,omitempty"`
	Plan    Plan   `json:"plan,omitempty"`
	Status  Status `json:"status,omitempty"`
}

// New builds a tenant, deriving the id from the name when id is empty.
func New(id, name, domain string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrapf(errors.ErrInvalidTenant, "[tenants New] name is required")
	}
	if id == "" {
		id = strings.Trim(idRunes.ReplaceAllString(strings.ToLower(name), "-"), "-")
		if id == "" {
			id = uuid.New().String()
		}
	}
	if !ValidID(id) {
		return nil, errors.Wrapf(errors.ErrInvalidTenant, "[tenants New] invalid id %q", id)
	}
	return &Tenant{
		ID:     id,
		Name:   name,
		Domain: strings.TrimRight(domainFix.Replace(strings.TrimSpace(domain)), "/"),
		Plan:   PlanStarter,
		Status: StatusActive,
	}, nil
}

// Default is the install's own tenant, present in every registry.
func Default() *Tenant {
	return &Tenant{
		ID:     DefaultTenantID,
		Name:   defaultTenantName,
		Domain: defaultTenantDomain,
		Plan:   PlanEnterprise,
		Status: StatusActive,
	}
}

// ValidID reports whether id is usable as a storage key and file name.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

func (t Tenant) IsActive() bool {
	return t.Status == "" || t.Status == StatusActive
}

func (t Tenant) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.ID)
}
