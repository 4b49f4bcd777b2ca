package docstore

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matteuzdev/VerbAI-Studio/internal/utils"
	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/rs/zerolog/log"
)

// Record is one stored item of a collection. Records are kept as free-form
// JSON objects so fields written by newer clients survive a round trip.
type Record map[string]any

// ID returns the record id as a string, or "" when it has none.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) Clone() Record {
	raw, err := json.Marshal(r)
	if err != nil {
		return Record{}
	}
	var c Record
	_ = json.Unmarshal(raw, &c)
	return c
}

// Document is the file stored per tenant.
type Document struct {
	SiteConfig site.SiteConfig     `json:"siteConfig"`
	BrandKit   *site.BrandConfig   `json:"brandKit,omitempty"`
	PageSeo    *site.PageSeoConfig `json:"pageSeo,omitempty"`
	Sections   []site.Section      `json:"sections,omitempty"`
	Contents   []Record            `json:"contents"`
	Terms      []Record            `json:"terms"`
	Leads      []Record            `json:"leads"`
}

func seedDocument() *Document {
	return &Document{
		SiteConfig: site.ServiceSiteConfig(),
		Contents:   []Record{},
		Terms:      []Record{},
		Leads:      []Record{},
	}
}

// normalize fills collections missing from older files.
func (d *Document) normalize() {
	if d.Contents == nil {
		d.Contents = []Record{}
	}
	if d.Terms == nil {
		d.Terms = []Record{}
	}
	if d.Leads == nil {
		d.Leads = []Record{}
	}
}

func (d *Document) hasSettings() bool {
	return d.BrandKit != nil
}

func (d *Document) settings() site.Settings {
	s := site.Settings{
		BrandKit:   utils.Value(d.BrandKit),
		PageSeo:    utils.Value(d.PageSeo),
		Sections:   d.Sections,
		SiteConfig: d.SiteConfig,
	}
	s.Normalize(site.ServiceSiteConfig())
	return s.Clone()
}

func (d *Document) setSettings(s site.Settings) {
	s = s.Clone()
	d.BrandKit = &s.BrandKit
	d.PageSeo = &s.PageSeo
	d.Sections = s.Sections
	d.SiteConfig = s.SiteConfig
}

// decodeRecords converts records to typed values, skipping the ones that do
// not fit T.
func decodeRecords[T any](tenantID string, records []Record) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Warn().Err(err).Str("tenant", tenantID).Str("id", r.ID()).Msg("skipping malformed record")
			continue
		}
		out = append(out, v)
	}
	return out
}
