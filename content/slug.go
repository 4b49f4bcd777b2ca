package content

import (
	"fmt"
	"regexp"
	"strings"
)

const untitledSlug = "untitled"

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
	termSlugRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases raw, drops everything outside [a-z0-9\s-], turns
// whitespace runs into single hyphens and collapses repeated hyphens.
// An empty result becomes "untitled".
func Slugify(raw string) string {
	s := strings.ToLower(raw)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	if s == "" || s == "-" {
		return untitledSlug
	}
	return s
}

// UniqueSlug normalises raw and returns the first of base, base-1, base-2, ...
// that no other item of the same type (ignoring excludeID) already uses.
func UniqueSlug(raw string, t Type, excludeID string, items []Content) string {
	base := Slugify(raw)
	taken := make(map[string]struct{})
	for _, c := range items {
		if c.Type != t || (excludeID != "" && c.ID == excludeID) {
			continue
		}
		taken[c.Slug] = struct{}{}
	}

	candidate := base
	for counter := 1; ; counter++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

// TermSlug derives a term slug from its name: lowercase with every run of
// other characters replaced by one hyphen.
func TermSlug(name string) string {
	return termSlugRun.ReplaceAllString(strings.ToLower(name), "-")
}
