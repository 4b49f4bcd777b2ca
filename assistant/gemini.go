package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultTextModel     = "gemini-2.5-flash"
	DefaultImageModel    = "imagen-4.0-generate-001"

	apiKeyHeader = "x-goog-api-key"
)

var _ Backend = (*GeminiClient)(nil)

// GeminiClient talks to the Gemini REST API.
type GeminiClient struct {
	http       *resty.Client
	textModel  string
	imageModel string
}

type GeminiOption func(*GeminiClient)

func WithTextModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.textModel = model
		}
	}
}

func WithImageModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.imageModel = model
		}
	}
}

func NewGeminiClient(baseURL, apiKey string, timeout time.Duration, options ...GeminiOption) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	c := &GeminiClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader(apiKeyHeader, apiKey).
			SetHeader("Content-Type", "application/json"),
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type predictRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]any      `json:"parameters"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// Generate sends messages to the text model. JSON asks the model for a
// JSON response body.
func (c *GeminiClient) Generate(ctx context.Context, messages []Message, jsonOutput bool) (string, error) {
	req := generateRequest{Contents: make([]geminiContent, 0, len(messages))}
	for _, m := range messages {
		req.Contents = append(req.Contents, geminiContent{Role: string(m.Role), Parts: []geminiPart{{Text: m.Text}}})
	}
	if jsonOutput {
		req.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetPathParam("model", c.textModel).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", errors.Wrapf(err, "[GeminiClient Generate] request failed")
	}
	if resp.IsError() {
		return "", statusError("Generate", resp)
	}

	if len(out.Candidates) == 0 {
		return "", errors.Wrapf(errors.ErrInternal, "[GeminiClient Generate] no candidates")
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// GenerateImage returns a 16:9 JPEG as a data URL.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	req := predictRequest{
		Instances: []map[string]string{{"prompt": prompt}},
		Parameters: map[string]any{
			"sampleCount":   1,
			"aspectRatio":   "16:9",
			"outputOptions": map[string]string{"mimeType": "image/jpeg"},
		},
	}

	var out predictResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetPathParam("model", c.imageModel).
		Post("/v1beta/models/{model}:predict")
	if err != nil {
		return "", errors.Wrapf(err, "[GeminiClient GenerateImage] request failed")
	}
	if resp.IsError() {
		return "", statusError("GenerateImage", resp)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return "", errors.Wrapf(errors.ErrInternal, "[GeminiClient GenerateImage] no image returned")
	}

	mime := out.Predictions[0].MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, out.Predictions[0].BytesBase64Encoded), nil
}

func statusError(method string, resp *resty.Response) error {
	return errors.Wrapf(errors.ErrInternal, "[GeminiClient %s] status %d: %s", method, resp.StatusCode(), strings.TrimSpace(resp.String()))
}
