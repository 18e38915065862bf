package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Event struct {
	ID          string       `json:"id"`    // required
	Title       string       `json:"title"` // required
	Date        string       `json:"date"`  // required, YYYY-MM-DD
	Location    string       `json:"location"`
	Type        EventType    `json:"type"`
	Description string       `json:"description"`
	Agenda      []AgendaItem `json:"agenda"`
	ThemeColor  string       `json:"themeColor"`
	CreatedAt   int64        `json:"createdAt"` // epoch millis
}

// Validate checks what must hold before an event is persisted. It fills
// in defaults for the theme color, the type and a nil agenda.
func (e *Event) Validate() error {
	if e.ThemeColor == "" {
		e.ThemeColor = DefaultThemeColor
	}
	if e.Type == "" {
		e.Type = EventTypeOther
	}
	if e.Agenda == nil {
		e.Agenda = []AgendaItem{}
	}

	switch {
	case e.ID == "":
		return &ValidationError{Field: "id", Msg: "required"}
	case strings.TrimSpace(e.Title) == "":
		return &ValidationError{Field: "title", Msg: "required"}
	case e.Date == "":
		return &ValidationError{Field: "date", Msg: "required"}
	case !e.Type.Valid():
		return &ValidationError{Field: "type", Msg: fmt.Sprintf("unknown event type %q", e.Type)}
	case !IsHexColor(e.ThemeColor):
		return &ValidationError{Field: "themeColor", Msg: fmt.Sprintf("%q is not a hex color", e.ThemeColor)}
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return &ValidationError{Field: "date", Msg: fmt.Sprintf("%q is not a YYYY-MM-DD date", e.Date)}
	}

	seen := make(map[string]struct{}, len(e.Agenda))
	for i, item := range e.Agenda {
		if item.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("agenda[%d].id", i), Msg: "required"}
		}
		if _, ok := seen[item.ID]; ok {
			return &ValidationError{Field: fmt.Sprintf("agenda[%d].id", i), Msg: fmt.Sprintf("duplicate id %q", item.ID)}
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// DisplayLocation is what views show for the location.
func (e Event) DisplayLocation() string {
	if strings.TrimSpace(e.Location) == "" {
		return "TBD"
	}
	return e.Location
}

// Clone returns a deep copy so callers can't mutate a stored agenda.
func (e Event) Clone() Event {
	clone := e
	if e.Agenda != nil {
		clone.Agenda = make([]AgendaItem, len(e.Agenda))
		copy(clone.Agenda, e.Agenda)
	}
	return clone
}
