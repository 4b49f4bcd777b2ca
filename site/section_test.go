package site_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/internal/utils"
	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/stretchr/testify/require"
)

// TestSection_UnmarshalTypedWithExtras verifies known keys land in the variant
// and unknown keys are preserved.
func TestSection_UnmarshalTypedWithExtras(t *testing.T) {
	raw := `{"id":"hero","type":"hero","title":"Hero","isEnabled":true,
		"content":{"headline_1":"Welcome","ctaText":"Go","videoUrl":"https://v.io/1"}}`

	var s site.Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	hero, ok := s.Content.(*site.HeroContent)
	require.True(t, ok)
	require.Equal(t, "Welcome", hero.Headline1)
	require.Equal(t, "Go", hero.CtaText)
	require.Equal(t, map[string]any{"videoUrl": "https://v.io/1"}, hero.Extra)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(out))
}

// TestSection_UnknownTypeRoundTrips verifies unknown section types survive.
func TestSection_UnknownTypeRoundTrips(t *testing.T) {
	raw := `{"id":"g","type":"gallery","title":"Gallery","isEnabled":false,"content":{"images":["a","b"]}}`

	var s site.Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.Equal(t, site.SectionType("gallery"), s.Content.SectionType())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(out))
}

// TestSection_MismatchedValuesAreKept verifies content that does not fit the
// typed schema is carried rather than rejected on load.
func TestSection_MismatchedValuesAreKept(t *testing.T) {
	raw := `{"id":"f","type":"features","title":"F","isEnabled":true,"content":{"items":[{"title":"A","colSpan":"wide"}]}}`

	var s site.Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(out))
}

// TestSection_MergeContent verifies partial content is shallow-merged.
func TestSection_MergeContent(t *testing.T) {
	s := site.NewTenantSettings("Acme", time.Now()).Sections[0]

	require.NoError(t, s.MergeContent(map[string]any{"headline_1": "Hello", "badge": "New"}))

	hero := s.Content.(*site.HeroContent)
	require.Equal(t, "Hello", hero.Headline1)
	require.Equal(t, "Acme", hero.Headline2)
	require.Equal(t, "New", hero.Badge)
}

// TestSection_MergeContentRejectsBadTypes verifies the section is unchanged on error.
func TestSection_MergeContentRejectsBadTypes(t *testing.T) {
	s := site.NewTenantSettings("Acme", time.Now()).Sections[0]

	err := s.MergeContent(map[string]any{"headline_1": 42})
	require.ErrorIs(t, err, errors.ErrInvalidSection)
	require.Equal(t, "Welcome", s.Content.(*site.HeroContent).Headline1)
}

// TestSection_CloneIsIndependent verifies clones do not share content.
func TestSection_CloneIsIndependent(t *testing.T) {
	s, err := site.NewSection("f", site.SectionFeatures, "F", true, map[string]any{
		"items": []any{map[string]any{"title": "A"}},
	})
	require.NoError(t, err)

	c := s.Clone()
	c.Content.(*site.FeaturesContent).Items[0].Title = "B"

	require.Equal(t, "A", s.Content.(*site.FeaturesContent).Items[0].Title)
}

// TestBrandConfig_Apply verifies nil patch fields leave values untouched.
func TestBrandConfig_Apply(t *testing.T) {
	b := site.DefaultBrand().Apply(site.BrandPatch{PrimaryColor: utils.Ptr("#FF0000")})

	require.Equal(t, "#FF0000", b.PrimaryColor)
	require.Equal(t, "#22C55E", b.SecondaryColor)
}

// TestSettings_NormalizeRepairsMissingSiteConfig verifies the fallback is used.
func TestSettings_NormalizeRepairsMissingSiteConfig(t *testing.T) {
	var s site.Settings
	require.NoError(t, json.Unmarshal([]byte(`{"brandKit":{"primaryColor":"#000"}}`), &s))

	fallback := site.DefaultSiteConfig(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Normalize(fallback)

	require.Equal(t, "© 2026", s.SiteConfig.Footer.Copyright)
	require.NotNil(t, s.Sections)
}

// TestDefaults_NewTenantHasSingleHero verifies the client tenant seed.
func TestDefaults_NewTenantHasSingleHero(t *testing.T) {
	s := site.NewTenantSettings("Acme", time.Now())

	require.Len(t, s.Sections, 1)
	require.Equal(t, site.SectionHero, s.Sections[0].Type)
	require.True(t, s.Sections[0].IsEnabled)
	require.Equal(t, "Acme", s.SiteConfig.Header.LogoText)
	require.Equal(t, "Acme", s.PageSeo.Title)
}

// TestDefaults_AgencySeed verifies the install tenant gets the full landing page.
func TestDefaults_AgencySeed(t *testing.T) {
	s := site.AgencySettings(time.Now())

	ids := make([]string, 0, len(s.Sections))
	for _, sec := range s.Sections {
		ids = append(ids, sec.ID)
	}
	require.Equal(t, []string{"hero", "deep-web", "deep-ai", "features", "cta"}, ids)
	require.Equal(t, 1, site.FindSection(s.Sections, "deep-web"))
	require.Equal(t, -1, site.FindSection(s.Sections, "faq"))
}
