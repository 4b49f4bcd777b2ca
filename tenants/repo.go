package tenants

import "context"

// Repo persists the process-wide tenant list and the active selection.
type Repo interface {
	// List returns the stored tenants, or an empty slice when none are stored.
	List(ctx context.Context) ([]*Tenant, error)
	// SaveAll replaces the stored tenant list.
	SaveAll(ctx context.Context, tenants []*Tenant) error
	// ActiveID returns the selected tenant id, or "" when none was stored.
	ActiveID(ctx context.Context) (string, error)
	SetActiveID(ctx context.Context, id string) error
}
