package suggest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"cinemuse/internal/failure"
)

const (
	// DefaultGeminiBaseURL is the host root; the API version is appended per transport.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiAPIVersion     = "v1beta"
	maxReplyBytes        = 1 << 20
)

// AuthStyle selects how the REST transport presents its credential.
type AuthStyle string

const (
	AuthQuery  AuthStyle = "query"
	AuthBearer AuthStyle = "bearer"
)

type RESTConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Auth    AuthStyle
	// MinInterval spaces consecutive requests. Zero disables throttling.
	MinInterval time.Duration
}

// RESTGenerator calls the generateContent endpoint directly over HTTP.
type RESTGenerator struct {
	apiKey  string
	model   string
	baseURL string
	auth    AuthStyle
	httpc   *http.Client
	limiter *rate.Limiter
}

func NewRESTGenerator(cfg RESTConfig, httpc *http.Client) *RESTGenerator {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	auth := cfg.Auth
	if auth == "" {
		auth = AuthQuery
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return &RESTGenerator{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   cfg.Model,
		baseURL: baseURL,
		auth:    auth,
		httpc:   httpc,
		limiter: limiter,
	}
}

func (g *RESTGenerator) Configured() bool {
	return g.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64       `json:"temperature"`
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type             string                   `json:"type"`
	Description      string                   `json:"description,omitempty"`
	Items            *geminiSchema            `json:"items,omitempty"`
	Properties       map[string]*geminiSchema `json:"properties,omitempty"`
	Required         []string                 `json:"required,omitempty"`
	PropertyOrdering []string                 `json:"propertyOrdering,omitempty"`
}

// titleListSchema is array<{title: string, year: integer}>.
var titleListSchema = &geminiSchema{
	Type: "ARRAY",
	Items: &geminiSchema{
		Type: "OBJECT",
		Properties: map[string]*geminiSchema{
			"title": {Type: "STRING", Description: titleDescription},
			"year":  {Type: "INTEGER", Description: yearDescription},
		},
		Required:         []string{"title", "year"},
		PropertyOrdering: []string{"title", "year"},
	},
}

const (
	titleDescription = "The original title of the movie."
	yearDescription  = "The release year of the movie."
)

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends one generateContent request. It does not retry.
func (g *RESTGenerator) Generate(ctx context.Context, req Request) (string, error) {
	const op = "gemini generate"

	if err := g.limiter.Wait(ctx); err != nil {
		return "", failure.Transport(op, err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent", g.baseURL, geminiAPIVersion, url.PathEscape(g.model))
	if g.auth == AuthQuery {
		endpoint += "?key=" + url.QueryEscape(g.apiKey)
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Text}}},
		},
		GenerationConfig: &geminiGenerationConfig{Temperature: req.Temperature},
	}
	if req.Structured {
		body.GenerationConfig.ResponseMIMEType = "application/json"
		body.GenerationConfig.ResponseSchema = titleListSchema
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", g.redact(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.auth == AuthBearer {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", failure.Transport(op, ctx.Err())
		}
		return "", failure.Transport(op, g.redact(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", failure.Transport(op, fmt.Errorf("read gemini response: %w", err))
	}

	var parsed geminiResponse
	decodeErr := json.Unmarshal(data, &parsed)
	if decodeErr == nil && parsed.Error != nil {
		return "", failure.Upstream(failure.UpstreamRefusal, op, resp.StatusCode, data,
			fmt.Errorf("gemini error %d %s: %s", parsed.Error.Code, parsed.Error.Status, parsed.Error.Message))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", failure.Upstream(failure.TransportFailure, op, resp.StatusCode, data,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return "", failure.Upstream(failure.TransportFailure, op, resp.StatusCode, data,
			fmt.Errorf("decode gemini response: %w", decodeErr))
	}

	if len(parsed.Candidates) == 0 {
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			return "", failure.New(failure.UpstreamRefusal, op, "prompt blocked: "+parsed.PromptFeedback.BlockReason)
		}
		return "", failure.New(failure.SchemaViolation, op, "gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		if reason := parsed.Candidates[0].FinishReason; reason != "" && reason != "STOP" {
			return "", failure.New(failure.UpstreamRefusal, op, "generation stopped: "+reason)
		}
		return "", failure.New(failure.SchemaViolation, op, "gemini returned empty response")
	}
	return text.String(), nil
}

// redact strips the query-string credential from transport error messages.
func (g *RESTGenerator) redact(err error) error {
	if g.apiKey == "" || !strings.Contains(err.Error(), g.apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), g.apiKey, "REDACTED"))
}
