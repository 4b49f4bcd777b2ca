package store

import (
	"context"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/site"
)

// UpdateSection shallow-merges patch into the content of section id. Unknown
// ids are ignored; a patch that does not fit the section type is rejected.
func (s *Store) UpdateSection(ctx context.Context, id string, patch map[string]any) error {
	return s.mutate(ctx, persistence.SegmentSettings, func() (bool, error) {
		idx := site.FindSection(s.settings.Sections, id)
		if idx < 0 {
			return false, nil
		}
		next := s.settings.Sections[idx].Clone()
		if err := next.MergeContent(patch); err != nil {
			return false, errors.Wrapf(err, "[Store UpdateSection] %s", id)
		}
		s.settings.Sections[idx] = next
		return true, nil
	})
}

// ToggleSection flips whether section id is shown.
func (s *Store) ToggleSection(ctx context.Context, id string) error {
	return s.mutate(ctx, persistence.SegmentSettings, func() (bool, error) {
		idx := site.FindSection(s.settings.Sections, id)
		if idx < 0 {
			return false, nil
		}
		s.settings.Sections[idx].IsEnabled = !s.settings.Sections[idx].IsEnabled
		return true, nil
	})
}

func (s *Store) SetBrandConfig(ctx context.Context, patch site.BrandPatch) error {
	return s.mutate(ctx, persistence.SegmentSettings, func() (bool, error) {
		s.settings.BrandKit = s.settings.BrandKit.Apply(patch)
		return true, nil
	})
}

func (s *Store) SetPageSeo(ctx context.Context, patch site.PageSeoPatch) error {
	return s.mutate(ctx, persistence.SegmentSettings, func() (bool, error) {
		s.settings.PageSeo = s.settings.PageSeo.Apply(patch)
		return true, nil
	})
}

// SetSiteConfig replaces the site config wholesale.
func (s *Store) SetSiteConfig(ctx context.Context, cfg site.SiteConfig) error {
	return s.mutate(ctx, persistence.SegmentSettings, func() (bool, error) {
		s.settings.SiteConfig = cfg.Clone()
		return true, nil
	})
}
