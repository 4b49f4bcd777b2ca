package store

import (
	"slices"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/matteuzdev/VerbAI-Studio/site"
)

// Contents returns copies of all content items in insertion order.
func (s *Store) Contents() []content.Content {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := make([]content.Content, len(s.contents))
	for i, c := range s.contents {
		out[i] = c.Clone()
	}
	return out
}

func (s *Store) Posts() []content.Content {
	return content.FilterByType(s.Contents(), content.TypePost)
}

func (s *Store) Pages() []content.Content {
	return content.FilterByType(s.Contents(), content.TypePage)
}

func (s *Store) ContentByID(id string) (content.Content, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	idx := slices.IndexFunc(s.contents, func(c content.Content) bool { return c.ID == id })
	if idx < 0 {
		return content.Content{}, false
	}
	return s.contents[idx].Clone(), true
}

func (s *Store) ContentBySlug(t content.Type, slug string) (content.Content, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	idx := slices.IndexFunc(s.contents, func(c content.Content) bool { return c.Type == t && c.Slug == slug })
	if idx < 0 {
		return content.Content{}, false
	}
	return s.contents[idx].Clone(), true
}

func (s *Store) Terms() []content.Term {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return slices.Clone(s.terms)
}

func (s *Store) Categories() []content.Term {
	return content.FilterTerms(s.Terms(), content.TermCategory)
}

func (s *Store) Tags() []content.Term {
	return content.FilterTerms(s.Terms(), content.TermTag)
}

// Leads returns the leads, newest first.
func (s *Store) Leads() []leads.Lead {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return slices.Clone(s.leads)
}

func (s *Store) Settings() site.Settings {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.settings.Clone()
}

func (s *Store) Sections() []site.Section {
	return s.Settings().Sections
}

func (s *Store) Brand() site.BrandConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.settings.BrandKit
}

func (s *Store) PageSeo() site.PageSeoConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.settings.PageSeo
}

func (s *Store) SiteConfig() site.SiteConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.settings.SiteConfig.Clone()
}

// Sitemap renders the sitemap of the loaded tenant's published posts.
func (s *Store) Sitemap(domain string) (string, error) {
	return content.GenerateSitemap(domain, s.Posts())
}
