package content

import (
	"slices"
	"time"
)

// Type distinguishes blog posts from standalone pages. Slugs are unique per type.
type Type string

const (
	TypePost Type = "post"
	TypePage Type = "page"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
)

// Content is a post or page owned by a tenant.
type Content struct {
	ID             string     `json:"id"`
	Type           Type       `json:"type"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Body           string     `json:"body"`
	FeaturedImage  string     `json:"featuredImage,omitempty"`
	Status         Status     `json:"status"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	AuthorID       string     `json:"authorId"`
	AuthorName     string     `json:"authorName"`
	CategoryIDs    []string   `json:"categoryIds"`
	TagIDs         []string   `json:"tagIds"`
	SeoTitle       string     `json:"seoTitle,omitempty"`
	SeoDescription string     `json:"seoDescription,omitempty"`
	Keywords       string     `json:"keywords,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (c Content) IsPublished() bool {
	return c.Status == StatusPublished
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Content) Clone() Content {
	c.CategoryIDs = slices.Clone(c.CategoryIDs)
	c.TagIDs = slices.Clone(c.TagIDs)
	if c.PublishedAt != nil {
		p := *c.PublishedAt
		c.PublishedAt = &p
	}
	return c
}

// Normalize fills defaults so the item always serialises with arrays rather than null.
func (c *Content) Normalize() {
	if c.Type == "" {
		c.Type = TypePost
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.CategoryIDs == nil {
		c.CategoryIDs = []string{}
	}
	if c.TagIDs == nil {
		c.TagIDs = []string{}
	}
}

// HasTag reports whether termID is linked as a tag.
func (c Content) HasTag(termID string) bool {
	return slices.Contains(c.TagIDs, termID)
}

// ApplySeo merges generated SEO metadata into c. Empty values leave the
// existing field untouched.
func (c *Content) ApplySeo(title, description, keywords string) {
	if title != "" {
		c.SeoTitle = title
	}
	if description != "" {
		c.SeoDescription = description
	}
	if keywords != "" {
		c.Keywords = keywords
	}
}

type TermType string

const (
	TermCategory TermType = "category"
	TermTag      TermType = "tag"
)

// Term is a category or tag. Names and slugs are not required to be unique.
type Term struct {
	ID       string   `json:"id"`
	Type     TermType `json:"type"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	ParentID string   `json:"parentId,omitempty"`
}

// FilterByType returns the items of type t, preserving order.
func FilterByType(items []Content, t Type) []Content {
	out := make([]Content, 0, len(items))
	for _, c := range items {
		if c.Type == t {
			out = append(out, c.Clone())
		}
	}
	return out
}

// FilterTerms returns the terms of type t, preserving order.
func FilterTerms(terms []Term, t TermType) []Term {
	out := make([]Term, 0, len(terms))
	for _, term := range terms {
		if term.Type == t {
			out = append(out, term)
		}
	}
	return out
}
