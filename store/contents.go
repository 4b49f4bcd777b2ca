package store

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"golang.org/x/text/cases"
)

type upsertOptions struct {
	regenerateSlug bool
}

type UpsertOption func(*upsertOptions)

// RegenerateSlug derives the slug from the title even when one is set.
func RegenerateSlug() UpsertOption {
	return func(o *upsertOptions) {
		o.regenerateSlug = true
	}
}

// UpsertContent saves item. An item whose id exists replaces the stored one,
// keeping its creation time. Any other item is appended with a fresh id when
// it has none. The slug is made unique among items of the same type on every
// save. The returned item is what was stored, even when persisting failed.
func (s *Store) UpsertContent(ctx context.Context, item content.Content, opts ...UpsertOption) (content.Content, error) {
	var o upsertOptions
	for _, opt := range opts {
		opt(&o)
	}

	var saved content.Content
	err := s.mutate(ctx, persistence.SegmentContents, func() (bool, error) {
		saved = s.upsertContentLocked(item, o)
		return true, nil
	})
	return saved, err
}

func (s *Store) upsertContentLocked(item content.Content, o upsertOptions) content.Content {
	item = item.Clone()
	item.Normalize()
	now := s.nowTime()

	if item.ID == "" {
		item.ID = s.newID()
	}
	source := item.Slug
	if source == "" || o.regenerateSlug {
		source = item.Title
	}
	item.Slug = content.UniqueSlug(source, item.Type, item.ID, s.contents)
	if item.IsPublished() && item.PublishedAt == nil {
		item.PublishedAt = &now
	}

	idx := slices.IndexFunc(s.contents, func(c content.Content) bool { return c.ID == item.ID })
	if idx >= 0 {
		item.CreatedAt = s.contents[idx].CreatedAt
		item.UpdatedAt = now
		s.contents[idx] = item
	} else {
		item.CreatedAt = now
		item.UpdatedAt = now
		s.contents = append(s.contents, item)
	}
	return item.Clone()
}

// DeleteContent removes the item with id. Unknown ids are ignored.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return s.mutate(ctx, persistence.SegmentContents, func() (bool, error) {
		n := len(s.contents)
		s.contents = slices.DeleteFunc(s.contents, func(c content.Content) bool { return c.ID == id })
		return len(s.contents) != n, nil
	})
}

// AttachTags links tags named names to the content item, creating tag terms
// that do not exist yet. Names match existing tags case-insensitively. Terms
// and contents are written under one lock; a segment that did not change is
// not written.
func (s *Store) AttachTags(ctx context.Context, contentID string, names []string) ([]content.Term, error) {
	var attached []content.Term
	err := s.mutateSegments(ctx, termsAndContents, func() ([]persistence.Segment, error) {
		idx := slices.IndexFunc(s.contents, func(c content.Content) bool { return c.ID == contentID })
		if idx < 0 {
			return nil, errors.Wrapf(errors.ErrNotFound, "[Store AttachTags] content %s", contentID)
		}

		var created bool
		var tagIDs []string
		tagIDs, attached, created = s.ensureTermsLocked(content.TermTag, names)
		item := &s.contents[idx]
		linked := false
		for _, id := range tagIDs {
			if !item.HasTag(id) {
				item.TagIDs = append(item.TagIDs, id)
				linked = true
			}
		}

		var changed []persistence.Segment
		if created {
			changed = append(changed, persistence.SegmentTerms)
		}
		if linked {
			item.UpdatedAt = s.nowTime()
			changed = append(changed, persistence.SegmentContents)
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return attached, nil
}

// ImportMarkdown parses a markdown document with front matter and saves it as
// a new item, resolving its tags and categories to terms.
func (s *Store) ImportMarkdown(ctx context.Context, r io.Reader, filename string) (content.Content, error) {
	doc, err := content.ImportMarkdown(r, filename)
	if err != nil {
		return content.Content{}, errors.Wrapf(errors.ErrInvalidContent, "%v", err)
	}

	var saved content.Content
	err = s.mutateSegments(ctx, termsAndContents, func() ([]persistence.Segment, error) {
		tagIDs, _, tagsCreated := s.ensureTermsLocked(content.TermTag, doc.Tags)
		catIDs, _, catsCreated := s.ensureTermsLocked(content.TermCategory, doc.Categories)
		doc.Content.TagIDs = tagIDs
		doc.Content.CategoryIDs = catIDs
		saved = s.upsertContentLocked(doc.Content, upsertOptions{})

		if tagsCreated || catsCreated {
			return []persistence.Segment{persistence.SegmentTerms, persistence.SegmentContents}, nil
		}
		return []persistence.Segment{persistence.SegmentContents}, nil
	})
	return saved, err
}

// Terms are written before contents so stored items never reference a
// missing term.
var termsAndContents = []persistence.Segment{persistence.SegmentTerms, persistence.SegmentContents}

// ensureTermsLocked returns the ids of the terms of type t named names,
// creating the missing ones.
func (s *Store) ensureTermsLocked(t content.TermType, names []string) (ids []string, terms []content.Term, created bool) {
	fold := cases.Fold()
	seen := make(map[string]bool)
	ids = []string{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := fold.String(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true

		term, ok := content.FindTerm(s.terms, t, name)
		if !ok {
			term = content.Term{ID: s.newID(), Type: t, Name: name, Slug: content.TermSlug(name)}
			s.terms = append(s.terms, term)
			created = true
		}
		ids = append(ids, term.ID)
		terms = append(terms, term)
	}
	return ids, terms, created
}
