// Package suggest turns partial event details into an AI-written description,
// tagline, agenda and theme color, falling back to a fixed value on any
// backend or parsing failure.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventhorizon/src-server/model"
)

const (
	DefaultModel = "gemini-2.5-flash"

	FallbackDescription = "Could not generate description at this time."
	FallbackTagline     = "Event Planning In Progress"

	OutcomeOK                = "ok"
	OutcomeFallback          = "fallback"
	OutcomeMissingCredential = "missing_credential"
)

var ErrMissingCredential = errors.New("API key is missing, check your environment configuration")

// Fallback is returned whenever the backend can't produce a usable answer.
func Fallback() model.AISuggestionResponse {
	return model.AISuggestionResponse{
		Description: FallbackDescription,
		Tagline:     FallbackTagline,
		Agenda:      []model.SuggestedAgendaItem{},
		ThemeColor:  model.DefaultThemeColor,
	}
}

// Input is the partial event the suggestions are based on. Title and Date
// should be non-empty; nothing here enforces it.
type Input struct {
	Title    string
	Type     model.EventType
	Date     string
	Location string
}

type Suggester interface {
	GenerateSuggestions(ctx context.Context, in Input) (model.AISuggestionResponse, error)
}

// Backend performs the one outbound call and returns the raw text payload.
type Backend interface {
	GenerateContent(ctx context.Context, apiKey string, req Request) (string, error)
}

type Observer interface {
	SuggestionOutcome(outcome string)
}

type Client struct {
	apiKey   string
	model    string
	backend  Backend
	observer Observer
}

type Option func(*Client)

func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(apiKey string, backend Backend, opts ...Option) *Client {
	c := &Client{apiKey: apiKey, model: DefaultModel, backend: backend}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether a credential is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// GenerateSuggestions makes a single best-effort call. The only error it
// returns is ErrMissingCredential; everything else degrades to Fallback().
func (c *Client) GenerateSuggestions(ctx context.Context, in Input) (model.AISuggestionResponse, error) {
	if c.apiKey == "" {
		c.observe(OutcomeMissingCredential)
		return model.AISuggestionResponse{}, fmt.Errorf("(*Client).GenerateSuggestions: %w", ErrMissingCredential)
	}

	resp, err := c.generate(ctx, in)
	if err != nil {
		slog.Error("can't generate event suggestions", "title", in.Title, "model", c.model, "error", err)
		c.observe(OutcomeFallback)
		return Fallback(), nil
	}
	c.observe(OutcomeOK)
	return resp, nil
}

func (c *Client) generate(ctx context.Context, in Input) (model.AISuggestionResponse, error) {
	text, err := c.backend.GenerateContent(ctx, c.apiKey, NewRequest(c.model, in))
	if err != nil {
		return model.AISuggestionResponse{}, err
	}
	if text == "" {
		return model.AISuggestionResponse{}, fmt.Errorf("no response from AI")
	}
	return ParseResponse(text)
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.SuggestionOutcome(outcome)
	}
}
