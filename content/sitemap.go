package content

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// GenerateSitemap renders a sitemaps.org urlset: the site root followed by
// every published post, in input order. A bare domain is served over https.
func GenerateSitemap(domain string, posts []Content) (string, error) {
	base := siteBase(domain)
	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs: []sitemapURL{
			{Loc: base + "/", ChangeFreq: "daily", Priority: "1.0"},
		},
	}
	for _, post := range posts {
		if post.Type != TypePost || !post.IsPublished() {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + "/blog/" + post.Slug,
			LastMod:    post.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("[content GenerateSitemap] failed to encode sitemap: %w", err)
	}
	return xml.Header + string(out), nil
}

func siteBase(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		domain = "verbai.com"
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return domain
}
