// Package assistant generates copy, images and SEO metadata. Every failure
// is logged and turned into a neutral result, so callers never see errors.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/rs/zerolog/log"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Backend is the generative model. Implementations return errors; the
// Assistant decides what the caller sees.
type Backend interface {
	Generate(ctx context.Context, messages []Message, jsonOutput bool) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Verdict string

const (
	VerdictExcellent Verdict = "Excellent"
	VerdictGood      Verdict = "Good"
	VerdictNeedsWork Verdict = "Needs Work"
	VerdictCritical  Verdict = "Critical"
)

type SeoTags struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

type SeoAudit struct {
	Score    int      `json:"score"`
	Verdict  Verdict  `json:"verdict"`
	Proof    string   `json:"proof"`
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

const (
	DefaultLanguage = "Portuguese"
	DefaultTone     = "professional"

	chatUnavailable  = "Connection to neural core unstable."
	chatEmpty        = "Neural link unstable."
	pollinationsBase = "https://image.pollinations.ai/prompt/"
)

type Assistant struct {
	backend Backend
	images  bool
	seed    func() int
}

type Option func(*Assistant)

// WithImageBackend lets GenerateImage call the backend before falling back to
// the public image service. It needs a personal API key on Gemini.
func WithImageBackend() Option {
	return func(a *Assistant) {
		a.images = true
	}
}

// WithSeed fixes the seed of fallback image URLs.
func WithSeed(fn func() int) Option {
	return func(a *Assistant) {
		a.seed = fn
	}
}

// New returns an Assistant. A nil backend makes every text call neutral.
func New(backend Backend, options ...Option) *Assistant {
	a := &Assistant{
		backend: backend,
		seed:    func() int { return rand.IntN(1000) },
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *Assistant) generate(ctx context.Context, op string, messages []Message, jsonOutput bool) (string, bool) {
	if a.backend == nil {
		log.Warn().Str("op", op).Msg("assistant has no backend configured")
		return "", false
	}
	out, err := a.backend.Generate(ctx, messages, jsonOutput)
	if err != nil {
		log.Err(err).Str("op", op).Msg("assistant request failed")
		return "", false
	}
	return out, true
}

var markdownMarks = strings.NewReplacer("**", "", "#", "", "`", "")

// GenerateText writes plain text copy for prompt.
func (a *Assistant) GenerateText(ctx context.Context, prompt, tone, language string) string {
	if tone == "" {
		tone = DefaultTone
	}
	full := fmt.Sprintf(`ROLE: You are an elite SEO Copywriter.
TASK: Write content based on the user request below.
CONSTRAINTS:
1. LANGUAGE: Output strictly in %s.
2. FORMAT: Plain text ONLY. No Markdown.
3. TONE: %s.
4. GOAL: High Conversion & SEO.
USER REQUEST: %s.
Output only the final text content:`, orDefault(language), tone, prompt)

	out, ok := a.generate(ctx, "text", []Message{{Role: RoleUser, Text: full}}, false)
	if !ok {
		return ""
	}
	return strings.TrimSpace(markdownMarks.Replace(out))
}

// GenerateImage returns an image URL for prompt. It never fails: without an
// image backend, or when it errors, a public generated image URL is returned.
func (a *Assistant) GenerateImage(ctx context.Context, prompt string) string {
	if a.images && a.backend != nil {
		img, err := a.backend.GenerateImage(ctx, prompt)
		if err == nil && img != "" {
			return img
		}
		log.Warn().Err(err).Msg("image generation failed, falling back to public image service")
	}
	return a.fallbackImageURL(prompt)
}

func (a *Assistant) fallbackImageURL(prompt string) string {
	p := url.PathEscape(prompt + " realistic, 4k, tech style, high quality")
	return fmt.Sprintf("%s%s?width=1920&height=1080&nologo=true&seed=%d", pollinationsBase, p, a.seed())
}

// GenerateSeoTags returns a title, description and keyword list for the
// described content. Failures return empty tags.
func (a *Assistant) GenerateSeoTags(ctx context.Context, description string, kind content.Type, language string) SeoTags {
	if kind == "" {
		kind = content.TypePage
	}
	prompt := fmt.Sprintf(`Act as a Technical SEO Specialist. Analyze the context below and generate a JSON SEO Pack for a %s.
Context: %s.
Language: %s.

Requirements:
- Title: High CTR, under 60 chars.
- Description: Action-oriented, includes keywords, under 160 chars.
- Keywords: 5-8 comma-separated semantic LSI keywords.

Return strictly JSON: { "title": "", "description": "", "keywords": "" }`, kind, description, orDefault(language))

	var tags SeoTags
	if out, ok := a.generate(ctx, "seo-tags", []Message{{Role: RoleUser, Text: prompt}}, true); ok {
		decode("seo-tags", out, &tags)
	}
	return tags
}

// SuggestTags proposes taxonomy tags for a post body.
func (a *Assistant) SuggestTags(ctx context.Context, body, language string) []string {
	prompt := fmt.Sprintf(`Analyze the following blog post content and suggest 5-7 relevant taxonomy tags.
Content Snippet: %s...
Language: %s

Return strictly a JSON array of strings: ["Tag1", "Tag2", ...]`, truncate(body, 1000), orDefault(language))

	out, ok := a.generate(ctx, "suggest-tags", []Message{{Role: RoleUser, Text: prompt}}, true)
	if !ok {
		return nil
	}
	var tags []string
	if !decode("suggest-tags", out, &tags) {
		return nil
	}
	clean := tags[:0]
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return clean
}

// AnalyzeSeoQuality scores content and its metadata. Failures return a
// Critical audit with a zero score.
func (a *Assistant) AnalyzeSeoQuality(ctx context.Context, body, title, description string) SeoAudit {
	failed := SeoAudit{Verdict: VerdictCritical, Proof: "AI unavailable", Positive: []string{}, Negative: []string{}}
	prompt := fmt.Sprintf(`Act as a Google Search Algorithm Simulator. Analyze the provided landing page content and metadata.

Metadata:
Title: %s
Description: %s

Content Sample: %s...

Task:
1. Score it from 0 to 100 based on modern ranking factors (EEAT, keyword placement, readability).
2. Provide a 'proof' statement explaining why this score is accurate based on algorithm logic.
3. List positive points.
4. List negative points/fixes.

Return strictly JSON:
{ "score": number, "verdict": "Excellent" | "Good" | "Needs Work" | "Critical", "proof": "string", "positive": ["string"], "negative": ["string"] }`,
		title, description, truncate(body, 1500))

	out, ok := a.generate(ctx, "seo-audit", []Message{{Role: RoleUser, Text: prompt}}, true)
	if !ok {
		return failed
	}
	var audit SeoAudit
	if !decode("seo-audit", out, &audit) {
		return failed
	}

	// Partial answers are filled like a middling audit.
	if audit.Score == 0 {
		audit.Score = 50
	}
	if audit.Verdict == "" {
		audit.Verdict = VerdictNeedsWork
	}
	if audit.Proof == "" {
		audit.Proof = "Analysis unavailable."
	}
	if audit.Positive == nil {
		audit.Positive = []string{}
	}
	if audit.Negative == nil {
		audit.Negative = []string{}
	}
	return audit
}

// Chat answers message given the conversation so far.
func (a *Assistant) Chat(ctx context.Context, history []Message, message, language string) string {
	messages := []Message{
		{Role: RoleUser, Text: fmt.Sprintf(`You are "VerbAI", an advanced Autonomous Artificial Intelligence specialized in Web Engineering. Answer in %s.`, orDefault(language))},
		{Role: RoleModel, Text: "System initialized."},
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Text: message})

	out, ok := a.generate(ctx, "chat", messages, false)
	if !ok {
		return chatUnavailable
	}
	if strings.TrimSpace(out) == "" {
		return chatEmpty
	}
	return out
}

// ApplySeoTags merges generated tags into c, keeping existing values where
// the assistant returned nothing.
func ApplySeoTags(c *content.Content, tags SeoTags) {
	c.ApplySeo(tags.Title, tags.Description, tags.Keywords)
}

func decode(op, raw string, out any) bool {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Err(err).Str("op", op).Msg("assistant returned malformed JSON")
		return false
	}
	return true
}

func orDefault(language string) string {
	if language == "" {
		return DefaultLanguage
	}
	return language
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
