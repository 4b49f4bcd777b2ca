package site

import (
	"fmt"
	"time"
)

const (
	defaultRobotsTxt = "User-agent: *\nDisallow:"
	heroImage        = "https://images.unsplash.com/photo-1497366216548-37526070297c?q=80&w=2301&auto=format&fit=crop"
	deepWebImage     = "https://images.unsplash.com/photo-1550751827-4bd374c3f58b?q=80&w=2670&auto=format&fit=crop"
	deepAIImage      = "https://images.unsplash.com/photo-1635070041078-e363dbe005cb?q=80&w=2670&auto=format&fit=crop"
)

// DefaultBrand is the brand kit given to new client tenants.
func DefaultBrand() BrandConfig {
	return BrandConfig{
		PrimaryColor:   "#0F172A",
		SecondaryColor: "#22C55E",
		FontHeadings:   "Inter",
		FontBody:       "Inter",
		ToneOfVoice:    "Professional",
	}
}

// DefaultSiteConfig is used when a stored settings segment has no site config.
func DefaultSiteConfig(now time.Time) SiteConfig {
	return SiteConfig{
		Header:    Header{LogoText: "My Business", Links: []Link{}},
		Footer:    Footer{Copyright: fmt.Sprintf("© %d", now.Year()), Links: []Link{}},
		RobotsTxt: defaultRobotsTxt,
	}
}

// NewTenantSettings seeds a client tenant: brand defaults, a site config
// named after the tenant and a single enabled hero section.
func NewTenantSettings(tenantName string, now time.Time) Settings {
	cfg := DefaultSiteConfig(now)
	if tenantName != "" {
		cfg.Header.LogoText = tenantName
	}
	return Settings{
		BrandKit: DefaultBrand(),
		PageSeo:  PageSeoConfig{Title: tenantName},
		Sections: []Section{
			{
				ID:    "hero",
				Type:  SectionHero,
				Title: "Hero",
				Content: &HeroContent{
					Headline1: "Welcome",
					Headline2: tenantName,
					Desc:      "Your new website.",
					CtaText:   "Contact",
					Image:     heroImage,
				},
				IsEnabled: true,
			},
		},
		SiteConfig: cfg,
	}
}

// AgencySettings seeds the install's own tenant with the full landing page.
func AgencySettings(now time.Time) Settings {
	return Settings{
		BrandKit: BrandConfig{
			PrimaryColor:   "#5E6AD2",
			SecondaryColor: "#E9E9EB",
			FontHeadings:   "Inter",
			FontBody:       "Inter",
			ToneOfVoice:    "Technical",
		},
		PageSeo: PageSeoConfig{Title: "Home", Description: "Welcome", Keywords: "web"},
		Sections: []Section{
			{ID: "hero", Type: SectionHero, Title: "Hero", Content: &HeroContent{}, IsEnabled: true},
			{ID: "deep-web", Type: SectionDeepDive, Title: "Deep Web", Content: &DeepDiveContent{Image: deepWebImage}, IsEnabled: true},
			{ID: "deep-ai", Type: SectionDeepDive, Title: "Deep AI", Content: &DeepDiveContent{Image: deepAIImage}, IsEnabled: true},
			{ID: "features", Type: SectionFeatures, Title: "Features", Content: &FeaturesContent{}, IsEnabled: true},
			{ID: "cta", Type: SectionCTA, Title: "CTA", Content: &CTAContent{}, IsEnabled: true},
		},
		SiteConfig: SiteConfig{
			Header: Header{
				LogoText: "VerbAI",
				Links:    []Link{{Label: "Metodologia", URL: "/about"}, {Label: "Preços", URL: "/pricing"}},
			},
			Footer:    Footer{Copyright: fmt.Sprintf("© %d VerbAI Inc.", now.Year()), Links: []Link{}},
			RobotsTxt: defaultRobotsTxt,
		},
	}
}

// ServiceSiteConfig is the site config of a freshly seeded document on the
// document service.
func ServiceSiteConfig() SiteConfig {
	return SiteConfig{
		Header: Header{
			LogoText: "My Agency",
			Links:    []Link{{Label: "About", URL: "/about"}, {Label: "Contact", URL: "/contact"}},
		},
		Footer: Footer{
			Copyright: "© 2024 All Rights Reserved.",
			Links:     []Link{{Label: "Privacy", URL: "/legal/privacy"}},
		},
		RobotsTxt: "User-agent: *\nAllow: /",
	}
}
