package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"cinemuse/internal/failure"
)

type SDKConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the service host root. Empty uses the SDK default.
	BaseURL string
}

// SDKGenerator calls the model through the genai SDK, which supports
// schema-constrained generation natively.
type SDKGenerator struct {
	client *genai.Client
	model  string
}

// NewSDKGenerator builds the SDK client. Without an API key it returns an
// unconfigured generator instead of failing, so the service can still start.
func NewSDKGenerator(ctx context.Context, cfg SDKConfig, httpc *http.Client) (*SDKGenerator, error) {
	g := &SDKGenerator{model: cfg.Model}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return g, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpc,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *SDKGenerator) Configured() bool {
	return g.client != nil
}

func sdkTitleListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title": {Type: genai.TypeString, Description: titleDescription},
				"year":  {Type: genai.TypeInteger, Description: yearDescription},
			},
			Required:         []string{"title", "year"},
			PropertyOrdering: []string{"title", "year"},
		},
	}
}

func (g *SDKGenerator) Generate(ctx context.Context, req Request) (string, error) {
	const op = "genai generate"

	if g.client == nil {
		return "", failure.New(failure.Configuration, op, "genai client not configured")
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.Structured {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = sdkTitleListSchema()
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Text), config)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			return "", &failure.Error{
				Kind:   failure.UpstreamRefusal,
				Op:     op,
				Status: apiErr.Code,
				Body:   failure.Truncate(apiErr.Message, 300),
				Err:    fmt.Errorf("genai error %d %s", apiErr.Code, apiErr.Status),
			}
		}
		if ctx.Err() != nil {
			return "", failure.Transport(op, ctx.Err())
		}
		return "", failure.Transport(op, err)
	}

	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		if res != nil && res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			return "", failure.New(failure.UpstreamRefusal, op, fmt.Sprintf("prompt blocked: %s", res.PromptFeedback.BlockReason))
		}
		return "", failure.New(failure.SchemaViolation, op, "genai returned empty response")
	}

	var text strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", failure.New(failure.SchemaViolation, op, "genai returned empty response")
	}
	return text.String(), nil
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}
