package site

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
)

type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionFeatures     SectionType = "features"
	SectionCTA          SectionType = "cta"
	SectionTestimonials SectionType = "testimonials"
	SectionFAQ          SectionType = "faq"
	SectionDeepDive     SectionType = "deep-dive"
	SectionStats        SectionType = "stats"
)

// SectionContent is the typed payload of a section. Keys a variant does not
// declare are kept in its Extra map and written back unchanged.
type SectionContent interface {
	SectionType() SectionType
	Extras() map[string]any
	SetExtras(map[string]any)
}

// ExtraFields holds content keys outside a variant's schema.
type ExtraFields struct {
	Extra map[string]any `json:"-"`
}

func (e *ExtraFields) Extras() map[string]any     { return e.Extra }
func (e *ExtraFields) SetExtras(m map[string]any) { e.Extra = m }

type HeroContent struct {
	ExtraFields
	Badge     string `json:"badge,omitempty"`
	Headline1 string `json:"headline_1,omitempty"`
	Headline2 string `json:"headline_2,omitempty"`
	Desc      string `json:"desc,omitempty"`
	CtaText   string `json:"ctaText,omitempty"`
	Image     string `json:"image,omitempty"`
}

type FeatureItem struct {
	Title   string `json:"title,omitempty"`
	Desc    string `json:"desc,omitempty"`
	Icon    string `json:"icon,omitempty"`
	ColSpan int    `json:"colSpan,omitempty"`
}

type FeaturesContent struct {
	ExtraFields
	Title     string        `json:"title,omitempty"`
	Highlight string        `json:"highlight,omitempty"`
	Desc      string        `json:"desc,omitempty"`
	Items     []FeatureItem `json:"items,omitempty"`
}

type CTAContent struct {
	ExtraFields
	Title       string `json:"title,omitempty"`
	Text        string `json:"text,omitempty"`
	ButtonLabel string `json:"buttonLabel,omitempty"`
	Image       string `json:"image,omitempty"`
}

type DeepDiveContent struct {
	ExtraFields
	Title     string `json:"title,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	Desc      string `json:"desc,omitempty"`
	Image     string `json:"image,omitempty"`
	Align     string `json:"align,omitempty"`
}

type StatItem struct {
	Value string `json:"value,omitempty"`
	Label string `json:"label,omitempty"`
}

type StatsContent struct {
	ExtraFields
	Title string     `json:"title,omitempty"`
	Items []StatItem `json:"items,omitempty"`
}

type Testimonial struct {
	Quote  string `json:"quote,omitempty"`
	Author string `json:"author,omitempty"`
	Role   string `json:"role,omitempty"`
	Image  string `json:"image,omitempty"`
}

type TestimonialsContent struct {
	ExtraFields
	Title string        `json:"title,omitempty"`
	Items []Testimonial `json:"items,omitempty"`
}

type FAQItem struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

type FAQContent struct {
	ExtraFields
	Title string    `json:"title,omitempty"`
	Items []FAQItem `json:"items,omitempty"`
}

// GenericContent carries sections of a type this build does not know.
type GenericContent struct {
	ExtraFields
	Type SectionType `json:"-"`
}

func (*HeroContent) SectionType() SectionType         { return SectionHero }
func (*FeaturesContent) SectionType() SectionType     { return SectionFeatures }
func (*CTAContent) SectionType() SectionType          { return SectionCTA }
func (*DeepDiveContent) SectionType() SectionType     { return SectionDeepDive }
func (*StatsContent) SectionType() SectionType        { return SectionStats }
func (*TestimonialsContent) SectionType() SectionType { return SectionTestimonials }
func (*FAQContent) SectionType() SectionType          { return SectionFAQ }
func (g *GenericContent) SectionType() SectionType    { return g.Type }

func newContent(t SectionType) SectionContent {
	switch t {
	case SectionHero:
		return &HeroContent{}
	case SectionFeatures:
		return &FeaturesContent{}
	case SectionCTA:
		return &CTAContent{}
	case SectionDeepDive:
		return &DeepDiveContent{}
	case SectionStats:
		return &StatsContent{}
	case SectionTestimonials:
		return &TestimonialsContent{}
	case SectionFAQ:
		return &FAQContent{}
	default:
		return &GenericContent{Type: t}
	}
}

// Section is one block of a tenant's landing page. Only Content and IsEnabled
// change at runtime.
type Section struct {
	ID        string
	Type      SectionType
	Title     string
	Content   SectionContent
	IsEnabled bool
}

type sectionJSON struct {
	ID        string         `json:"id"`
	Type      SectionType    `json:"type"`
	Title     string         `json:"title"`
	Content   map[string]any `json:"content"`
	IsEnabled bool           `json:"isEnabled"`
}

// NewSection builds a section whose content is decoded from m.
func NewSection(id string, t SectionType, title string, enabled bool, m map[string]any) (Section, error) {
	c, err := decodeContent(t, m, true)
	if err != nil {
		return Section{}, err
	}
	return Section{ID: id, Type: t, Title: title, Content: c, IsEnabled: enabled}, nil
}

func (s Section) MarshalJSON() ([]byte, error) {
	m, err := s.ContentMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{ID: s.ID, Type: s.Type, Title: s.Title, Content: m, IsEnabled: s.IsEnabled})
}

// UnmarshalJSON never fails on content whose values do not fit the typed
// schema; such content is carried entirely in Extra.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c, _ := decodeContent(raw.Type, raw.Content, false)
	*s = Section{ID: raw.ID, Type: raw.Type, Title: raw.Title, Content: c, IsEnabled: raw.IsEnabled}
	return nil
}

// ContentMap flattens the typed content and its extras into one object.
func (s Section) ContentMap() (map[string]any, error) {
	if s.Content == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(s.Content)
	if err != nil {
		return nil, fmt.Errorf("[Section ContentMap] failed to encode %s content: %w", s.Type, err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("[Section ContentMap] failed to flatten %s content: %w", s.Type, err)
	}
	for k, v := range s.Content.Extras() {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return m, nil
}

// MergeContent shallow-merges patch into the content. Values that do not fit
// the section's schema are rejected and leave the section unchanged.
func (s *Section) MergeContent(patch map[string]any) error {
	m, err := s.ContentMap()
	if err != nil {
		return err
	}
	maps.Copy(m, patch)
	c, err := decodeContent(s.Type, m, true)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidSection, "[Section MergeContent] section %s: %v", s.ID, err)
	}
	s.Content = c
	return nil
}

// Clone returns a deep copy.
func (s Section) Clone() Section {
	m, err := s.ContentMap()
	if err != nil {
		return s
	}
	raw, _ := json.Marshal(m)
	var copied map[string]any
	_ = json.Unmarshal(raw, &copied)
	c, _ := decodeContent(s.Type, copied, false)
	s.Content = c
	return s
}

func decodeContent(t SectionType, m map[string]any, strict bool) (SectionContent, error) {
	c := newContent(t)
	if len(m) == 0 {
		return c, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, c); err != nil {
		if strict {
			return nil, err
		}
		c = newContent(t)
		c.SetExtras(maps.Clone(m))
		return c, nil
	}

	known := jsonKeys(reflect.TypeOf(c).Elem())
	var extra map[string]any
	for k, v := range m {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = map[string]any{}
		}
		extra[k] = v
	}
	c.SetExtras(extra)
	return c, nil
}

var keyCache sync.Map

func jsonKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := keyCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := map[string]struct{}{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	keyCache.Store(t, keys)
	return keys
}
