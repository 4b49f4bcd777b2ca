package content

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matter is the YAML front matter accepted on imported markdown documents.
type Matter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Type        string   `yaml:"type"`
	Status      string   `yaml:"status"`
	Excerpt     string   `yaml:"excerpt"`
	Image       string   `yaml:"image"`
	Date        string   `yaml:"date"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Categories  []string `yaml:"categories"`
	SeoTitle    string   `yaml:"seo_title"`
	Description string   `yaml:"description"`
	Keywords    string   `yaml:"keywords"`
}

// Imported is a parsed document. Term names are resolved to ids by the store.
type Imported struct {
	Content    Content
	Tags       []string
	Categories []string
}

// ImportMarkdown parses a markdown document with optional front matter into a
// draft Content. The title falls back to the file name; the excerpt falls back
// to the opening text of the body.
func ImportMarkdown(r io.Reader, filename string) (Imported, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Imported{}, fmt.Errorf("[content ImportMarkdown] failed to read %s: %w", filename, err)
	}

	var m Matter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &m)
	if err != nil {
		return Imported{}, fmt.Errorf("[content ImportMarkdown] invalid front matter in %s: %w", filename, err)
	}

	html, err := RenderHTML(body)
	if err != nil {
		return Imported{}, err
	}

	c := Content{
		Type:           Type(strings.ToLower(m.Type)),
		Title:          m.Title,
		Slug:           m.Slug,
		Excerpt:        m.Excerpt,
		Body:           html,
		FeaturedImage:  m.Image,
		Status:         Status(strings.ToLower(m.Status)),
		AuthorName:     m.Author,
		SeoTitle:       m.SeoTitle,
		SeoDescription: m.Description,
		Keywords:       m.Keywords,
	}
	if c.Type != TypePage {
		c.Type = TypePost
	}
	switch c.Status {
	case StatusPublished, StatusScheduled:
	default:
		c.Status = StatusDraft
	}
	if c.Title == "" {
		c.Title = titleFromFilename(filename)
	}
	if c.Excerpt == "" {
		c.Excerpt = Excerpt(string(body), DefaultExcerptLength)
	}
	if m.Date != "" {
		published, err := parseDate(m.Date)
		if err != nil {
			return Imported{}, fmt.Errorf("[content ImportMarkdown] invalid date in %s: %w", filename, err)
		}
		c.PublishedAt = &published
	}
	c.Normalize()

	return Imported{Content: c, Tags: m.Tags, Categories: m.Categories}, nil
}

func titleFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	if strings.TrimSpace(base) == "" {
		return "Untitled"
	}
	return cases.Title(language.English).String(base)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
