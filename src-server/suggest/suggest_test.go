package suggest_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"eventhorizon/src-server/model"
	"eventhorizon/src-server/suggest"
)

type stubBackend struct {
	calls int
	text  string
	err   error
	last  suggest.Request
	key   string
}

func (b *stubBackend) GenerateContent(_ context.Context, apiKey string, req suggest.Request) (string, error) {
	b.calls++
	b.key = apiKey
	b.last = req
	return b.text, b.err
}

var summit = suggest.Input{
	Title: "Q4 Summit",
	Type:  model.EventTypeConference,
	Date:  "2024-11-01",
}

func TestMissingCredential(t *testing.T) {
	backend := new(stubBackend)
	client := suggest.NewClient("", backend)

	_, err := client.GenerateSuggestions(context.Background(), summit)
	if !errors.Is(err, suggest.ErrMissingCredential) {
		t.Error("expected missing credential error", err)
	}
	if backend.calls != 0 {
		t.Error("no backend call may be made without a credential", backend.calls)
	}
	if client.Available() {
		t.Error("client without key reports available")
	}
}

func TestGenerateSuggestions(t *testing.T) {
	backend := &stubBackend{text: `{
		"description": "Three days of talks.",
		"tagline": "Finish Strong",
		"themeColor": "#3B82F6",
		"agenda": [
			{"time": "09:00", "activity": "Keynote"},
			{"time": "10:00", "activity": "Breakout"}
		]
	}`}
	client := suggest.NewClient("secret", backend, suggest.WithModel("gemini-test"))

	got, err := client.GenerateSuggestions(context.Background(), summit)
	if err != nil {
		t.Fatal(err)
	}
	want := model.AISuggestionResponse{
		Description: "Three days of talks.",
		Tagline:     "Finish Strong",
		ThemeColor:  "#3B82F6",
		Agenda: []model.SuggestedAgendaItem{
			{Time: "09:00", Activity: "Keynote"},
			{Time: "10:00", Activity: "Breakout"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// request shape
	if backend.key != "secret" {
		t.Error("credential not forwarded", backend.key)
	}
	if backend.last.Model != "gemini-test" {
		t.Error("unexpected model", backend.last.Model)
	}
	if backend.last.ResponseMIMEType != "application/json" {
		t.Error("unexpected mime type", backend.last.ResponseMIMEType)
	}
	if !strings.Contains(backend.last.SystemInstruction, "JSON") {
		t.Error("system instruction must ask for JSON", backend.last.SystemInstruction)
	}
	required := backend.last.ResponseSchema.Required
	if !reflect.DeepEqual(required, []string{"description", "tagline", "themeColor", "agenda"}) {
		t.Error("unexpected required fields", required)
	}
	for _, want := range []string{`"Q4 Summit"`, `"Conference"`, `"2024-11-01"`, `"TBD"`} {
		if !strings.Contains(backend.last.Prompt, want) {
			t.Errorf("prompt is missing %s", want)
		}
	}
}

func TestFallback(t *testing.T) {
	for name, backend := range map[string]*stubBackend{
		"network error":    {err: errors.New("connection reset")},
		"empty response":   {text: ""},
		"not json":         {text: "Sure! Here is your plan:"},
		"missing tagline":  {text: `{"description":"d","themeColor":"#fff","agenda":[]}`},
		"null agenda":      {text: `{"description":"d","tagline":"t","themeColor":"#fff","agenda":null}`},
		"agenda item":      {text: `{"description":"d","tagline":"t","themeColor":"#fff","agenda":[{"time":"09:00"}]}`},
		"wrong field type": {text: `{"description":1,"tagline":"t","themeColor":"#fff","agenda":[]}`},
	} {
		client := suggest.NewClient("secret", backend)
		got, err := client.GenerateSuggestions(context.Background(), summit)
		if err != nil {
			t.Errorf("%s: fallback must not return an error, got %v", name, err)
		}
		if !reflect.DeepEqual(got, suggest.Fallback()) {
			t.Errorf("%s: expected fallback, got %+v", name, got)
		}
		if backend.calls != 1 {
			t.Errorf("%s: expected exactly one attempt, got %d", name, backend.calls)
		}
	}
}

func TestFallbackValue(t *testing.T) {
	fallback := suggest.Fallback()
	if fallback.Description != "Could not generate description at this time." ||
		fallback.Tagline != "Event Planning In Progress" ||
		fallback.ThemeColor != "#6366f1" ||
		fallback.Agenda == nil || len(fallback.Agenda) != 0 {
		t.Errorf("unexpected fallback %+v", fallback)
	}

	// callers mutating one fallback must not affect the next
	fallback.Agenda = append(fallback.Agenda, model.SuggestedAgendaItem{Activity: "x"})
	if len(suggest.Fallback().Agenda) != 0 {
		t.Error("fallback agenda is shared")
	}
}

type outcomes []string

func (o *outcomes) SuggestionOutcome(outcome string) { *o = append(*o, outcome) }

func TestObserver(t *testing.T) {
	observed := new(outcomes)
	ok := &stubBackend{text: `{"description":"d","tagline":"t","themeColor":"#fff","agenda":[]}`}
	bad := &stubBackend{err: errors.New("boom")}

	_, _ = suggest.NewClient("", ok, suggest.WithObserver(observed)).GenerateSuggestions(context.Background(), summit)
	_, _ = suggest.NewClient("k", ok, suggest.WithObserver(observed)).GenerateSuggestions(context.Background(), summit)
	_, _ = suggest.NewClient("k", bad, suggest.WithObserver(observed)).GenerateSuggestions(context.Background(), summit)

	want := outcomes{suggest.OutcomeMissingCredential, suggest.OutcomeOK, suggest.OutcomeFallback}
	if !reflect.DeepEqual(*observed, want) {
		t.Error("unexpected outcomes", *observed)
	}
}
