package store

import (
	"context"
	"slices"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
)

const defaultLeadSource = "Manual"

// UpsertLead replaces the lead with the same id, or inserts it at the head of
// the list with a fresh id and creation time.
func (s *Store) UpsertLead(ctx context.Context, lead leads.Lead) (leads.Lead, error) {
	if lead.Status == "" {
		lead.Status = leads.StatusNew
	}
	if !lead.Status.Valid() {
		return leads.Lead{}, errors.Wrapf(errors.ErrInvalidRequest, "[Store UpsertLead] unknown status %q", lead.Status)
	}
	if lead.Source == "" {
		lead.Source = defaultLeadSource
	}

	err := s.mutate(ctx, persistence.SegmentLeads, func() (bool, error) {
		idx := -1
		if lead.ID != "" {
			idx = slices.IndexFunc(s.leads, func(l leads.Lead) bool { return l.ID == lead.ID })
		}
		if idx >= 0 {
			if lead.CreatedAt.IsZero() {
				lead.CreatedAt = s.leads[idx].CreatedAt
			}
			s.leads[idx] = lead
			return true, nil
		}
		if lead.ID == "" {
			lead.ID = s.newID()
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = s.nowTime()
		}
		s.leads = slices.Insert(s.leads, 0, lead)
		return true, nil
	})
	return lead, err
}

// SetLeadStatus moves a lead to status. Any transition is allowed and unknown
// ids are ignored.
func (s *Store) SetLeadStatus(ctx context.Context, id string, status leads.Status) error {
	if !status.Valid() {
		return errors.Wrapf(errors.ErrInvalidRequest, "[Store SetLeadStatus] unknown status %q", status)
	}
	return s.mutate(ctx, persistence.SegmentLeads, func() (bool, error) {
		idx := slices.IndexFunc(s.leads, func(l leads.Lead) bool { return l.ID == id })
		if idx < 0 {
			return false, nil
		}
		s.leads[idx].Status = status
		return true, nil
	})
}

// DeleteLead removes the lead with id. Unknown ids are ignored.
func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return s.mutate(ctx, persistence.SegmentLeads, func() (bool, error) {
		n := len(s.leads)
		s.leads = slices.DeleteFunc(s.leads, func(l leads.Lead) bool { return l.ID == id })
		return len(s.leads) != n, nil
	})
}
