package store

import (
	"context"
	"slices"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
)

// UpsertTerm merges term into the stored one with the same id, or appends it.
// Names and slugs are not required to be unique.
func (s *Store) UpsertTerm(ctx context.Context, term content.Term) (content.Term, error) {
	term.Name = strings.TrimSpace(term.Name)
	if term.Name == "" {
		return content.Term{}, errors.Wrapf(errors.ErrInvalidContent, "[Store UpsertTerm] name is required")
	}
	if term.Type == "" {
		term.Type = content.TermCategory
	}
	if term.Type != content.TermCategory && term.Type != content.TermTag {
		return content.Term{}, errors.Wrapf(errors.ErrInvalidContent, "[Store UpsertTerm] unknown term type %q", term.Type)
	}
	if term.Slug == "" {
		term.Slug = content.TermSlug(term.Name)
	}

	err := s.mutate(ctx, persistence.SegmentTerms, func() (bool, error) {
		if term.ID == "" {
			term.ID = s.newID()
		}
		idx := slices.IndexFunc(s.terms, func(t content.Term) bool { return t.ID == term.ID })
		if idx >= 0 {
			s.terms[idx] = term
		} else {
			s.terms = append(s.terms, term)
		}
		return true, nil
	})
	return term, err
}

// DeleteTerm removes the term with id. Unknown ids are ignored.
func (s *Store) DeleteTerm(ctx context.Context, id string) error {
	return s.mutate(ctx, persistence.SegmentTerms, func() (bool, error) {
		n := len(s.terms)
		s.terms = slices.DeleteFunc(s.terms, func(t content.Term) bool { return t.ID == id })
		return len(s.terms) != n, nil
	})
}
