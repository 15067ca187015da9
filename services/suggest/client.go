// Package suggest asks a language model for a short list of movie titles that
// match a free-text mood or preference.
//
// The Client is transport-agnostic: a Generator sends the instruction to the
// model (RESTGenerator over plain HTTP, SDKGenerator through the genai SDK) and
// the Client validates the reply. In ModeSchema the model is constrained to a
// declared array<{title, year}> shape and any mismatch is a SchemaViolation.
// ModeText is the fallback for deployments without schema-constrained
// generation: one title per line, year 0.
package suggest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cinemuse/internal/failure"
	"cinemuse/internal/upstream"
	"cinemuse/models"
)

// Mode selects how the model reply is requested and parsed.
type Mode string

const (
	ModeSchema Mode = "schema"
	ModeText   Mode = "text"
)

// ParseMode maps a configuration string onto a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeSchema, "":
		return ModeSchema, nil
	case ModeText:
		return ModeText, nil
	}
	return "", fmt.Errorf("unknown suggestion mode %q", raw)
}

// Request is what a Generator sends to the model.
type Request struct {
	Text string
	// Structured constrains the reply to the title-list schema.
	Structured  bool
	Temperature float64
}

// Generator is one transport to the language model. It returns the raw reply text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Configured() bool
}

type Options struct {
	Mode        Mode
	Temperature float64
	Breaker     *upstream.Breaker
}

// Client is the title suggestion client.
type Client struct {
	gen         Generator
	mode        Mode
	temperature float64
	breaker     *upstream.Breaker
}

func NewClient(gen Generator, opts Options) *Client {
	mode := opts.Mode
	if mode == "" {
		mode = ModeSchema
	}
	return &Client{
		gen:         gen,
		mode:        mode,
		temperature: opts.Temperature,
		breaker:     opts.Breaker,
	}
}

// Configured reports whether the underlying transport has a credential.
func (c *Client) Configured() bool {
	return c.gen != nil && c.gen.Configured()
}

// Mode returns the output strategy in use.
func (c *Client) Mode() Mode {
	return c.mode
}

// SuggestTitles returns a non-empty list of candidates for prompt, or a
// classified failure. It never returns an empty list without an error.
func (c *Client) SuggestTitles(ctx context.Context, prompt string, lang models.Language) ([]models.TitleCandidate, error) {
	const op = "suggest titles"

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, failure.New(failure.InputValidation, op, "prompt is empty")
	}
	if !c.Configured() {
		return nil, failure.New(failure.Configuration, op, "language model api key not configured")
	}

	req := Request{
		Text:        buildPrompt(prompt, lang, c.mode),
		Structured:  c.mode == ModeSchema,
		Temperature: c.temperature,
	}

	reply, err := upstream.Execute(ctx, c.breaker, op, func(ctx context.Context) (string, error) {
		return c.gen.Generate(ctx, req)
	})
	if err != nil {
		log.Printf("[suggest] generate failed lang=%s mode=%s: %v", lang, c.mode, err)
		return nil, err
	}

	var titles []models.TitleCandidate
	if c.mode == ModeText {
		titles, err = parseLines(reply)
	} else {
		titles, err = parseStructured(reply)
	}
	if err != nil {
		log.Printf("[suggest] unusable reply mode=%s raw=%q: %v", c.mode, failure.Truncate(reply, 200), err)
		return nil, err
	}

	log.Printf("[suggest] %d candidates lang=%s mode=%s", len(titles), lang, c.mode)
	return titles, nil
}
