package site

import (
	"slices"

	"github.com/matteuzdev/VerbAI-Studio/internal/utils"
)

type BrandConfig struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontHeadings   string `json:"fontHeadings"`
	FontBody       string `json:"fontBody"`
	ToneOfVoice    string `json:"toneOfVoice"`
	LogoURL        string `json:"logoUrl,omitempty"`
	FaviconURL     string `json:"faviconUrl,omitempty"`
}

// BrandPatch is a partial BrandConfig; nil fields are left unchanged.
type BrandPatch struct {
	PrimaryColor   *string `json:"primaryColor,omitempty"`
	SecondaryColor *string `json:"secondaryColor,omitempty"`
	FontHeadings   *string `json:"fontHeadings,omitempty"`
	FontBody       *string `json:"fontBody,omitempty"`
	ToneOfVoice    *string `json:"toneOfVoice,omitempty"`
	LogoURL        *string `json:"logoUrl,omitempty"`
	FaviconURL     *string `json:"faviconUrl,omitempty"`
}

func (b BrandConfig) Apply(p BrandPatch) BrandConfig {
	utils.Assign(&b.PrimaryColor, p.PrimaryColor)
	utils.Assign(&b.SecondaryColor, p.SecondaryColor)
	utils.Assign(&b.FontHeadings, p.FontHeadings)
	utils.Assign(&b.FontBody, p.FontBody)
	utils.Assign(&b.ToneOfVoice, p.ToneOfVoice)
	utils.Assign(&b.LogoURL, p.LogoURL)
	utils.Assign(&b.FaviconURL, p.FaviconURL)
	return b
}

type PageSeoConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	OgImage     string `json:"ogImage,omitempty"`
}

type PageSeoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Keywords    *string `json:"keywords,omitempty"`
	OgImage     *string `json:"ogImage,omitempty"`
}

func (p PageSeoConfig) Apply(patch PageSeoPatch) PageSeoConfig {
	utils.Assign(&p.Title, patch.Title)
	utils.Assign(&p.Description, patch.Description)
	utils.Assign(&p.Keywords, patch.Keywords)
	utils.Assign(&p.OgImage, patch.OgImage)
	return p
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Header struct {
	LogoText string `json:"logoText"`
	Links    []Link `json:"links"`
}

type Footer struct {
	Copyright string `json:"copyright"`
	Links     []Link `json:"links"`
}

type SiteConfig struct {
	Header    Header `json:"header"`
	Footer    Footer `json:"footer"`
	RobotsTxt string `json:"robotsTxt"`
}

func (c SiteConfig) IsZero() bool {
	return c.Header.LogoText == "" && len(c.Header.Links) == 0 &&
		c.Footer.Copyright == "" && len(c.Footer.Links) == 0 && c.RobotsTxt == ""
}

// Clone returns a copy with its own link slices, never nil.
func (c SiteConfig) Clone() SiteConfig {
	c.Header.Links = cloneLinks(c.Header.Links)
	c.Footer.Links = cloneLinks(c.Footer.Links)
	return c
}

func cloneLinks(links []Link) []Link {
	if links == nil {
		return []Link{}
	}
	return slices.Clone(links)
}

// Settings is the persisted settings segment of a tenant.
type Settings struct {
	BrandKit   BrandConfig   `json:"brandKit"`
	PageSeo    PageSeoConfig `json:"pageSeo"`
	Sections   []Section     `json:"sections"`
	SiteConfig SiteConfig    `json:"siteConfig"`
}

// Normalize repairs a settings segment read from storage: a missing site
// config is replaced with fallback and nil collections become empty.
func (s *Settings) Normalize(fallback SiteConfig) {
	if s.SiteConfig.IsZero() {
		s.SiteConfig = fallback
	}
	s.SiteConfig = s.SiteConfig.Clone()
	if s.Sections == nil {
		s.Sections = []Section{}
	}
}

func (s Settings) Clone() Settings {
	s.SiteConfig = s.SiteConfig.Clone()
	sections := make([]Section, len(s.Sections))
	for i, sec := range s.Sections {
		sections[i] = sec.Clone()
	}
	s.Sections = sections
	return s
}

// FindSection returns the index of the section with id, or -1.
func FindSection(sections []Section, id string) int {
	return slices.IndexFunc(sections, func(s Section) bool { return s.ID == id })
}
