// Package draft is the edit-then-save workflow for a new event: the form
// state, optional AI enrichment, and the final commit into the store.
package draft

import (
	"fmt"
	"strings"
	"time"

	"eventhorizon/src-server/model"

	"github.com/google/uuid"
)

// Draft is an event that isn't in the store yet.
type Draft struct {
	Title       string             `json:"title"`
	Date        string             `json:"date"`
	Type        model.EventType    `json:"type"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	ThemeColor  string             `json:"themeColor"`
	Agenda      []model.AgendaItem `json:"agenda"`
}

// New returns the blank form: today's date, a meeting, indigo.
func New(now time.Time) *Draft {
	return &Draft{
		Date:       now.Format(model.DateLayout),
		Type:       model.EventTypeMeeting,
		ThemeColor: model.DefaultThemeColor,
		Agenda:     []model.AgendaItem{},
	}
}

// AddSlot appends an empty agenda item and returns it.
func (d *Draft) AddSlot() model.AgendaItem {
	item := model.NewAgendaItem("", "")
	d.Agenda = append(d.Agenda, item)
	return item
}

// UpdateSlot edits the agenda item with id in place.
func (d *Draft) UpdateSlot(id string, edit func(item *model.AgendaItem)) bool {
	for i := range d.Agenda {
		if d.Agenda[i].ID == id {
			edit(&d.Agenda[i])
			d.Agenda[i].ID = id
			return true
		}
	}
	return false
}

func (d *Draft) RemoveSlot(id string) bool {
	for i := range d.Agenda {
		if d.Agenda[i].ID == id {
			d.Agenda = append(d.Agenda[:i:i], d.Agenda[i+1:]...)
			return true
		}
	}
	return false
}

// Merge overwrites description, theme color and agenda with the
// suggestion. Every suggested agenda entry gets a fresh id; order is kept.
// An invalid suggested color leaves the current one in place.
func (d *Draft) Merge(s model.AISuggestionResponse) {
	d.Description = s.Description
	if model.IsHexColor(s.ThemeColor) {
		d.ThemeColor = s.ThemeColor
	}
	d.Agenda = make([]model.AgendaItem, 0, len(s.Agenda))
	for _, item := range s.Agenda {
		d.Agenda = append(d.Agenda, model.NewAgendaItem(item.Time, item.Activity))
	}
}

// Ready reports whether the draft has enough for a suggestion request.
func (d *Draft) Ready() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return &model.ValidationError{Field: "title", Msg: "required"}
	case strings.TrimSpace(d.Date) == "":
		return &model.ValidationError{Field: "date", Msg: "required"}
	}
	return nil
}

// Event stamps a new id and creation time onto a copy of the draft.
func (d *Draft) Event(now time.Time) (model.Event, error) {
	if strings.TrimSpace(d.Title) == "" {
		return model.Event{}, fmt.Errorf("(*Draft).Event: %w", &model.ValidationError{Field: "title", Msg: "required"})
	}
	agenda := make([]model.AgendaItem, len(d.Agenda))
	copy(agenda, d.Agenda)
	return model.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(d.Title),
		Date:        d.Date,
		Location:    strings.TrimSpace(d.Location),
		Type:        d.Type,
		Description: d.Description,
		Agenda:      agenda,
		ThemeColor:  d.ThemeColor,
		CreatedAt:   now.UnixMilli(),
	}, nil
}
