package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"eventhorizon/src-server/model"
)

// pointers tell a missing field apart from an empty one
type payload struct {
	Description *string `json:"description"`
	Tagline     *string `json:"tagline"`
	ThemeColor  *string `json:"themeColor"`
	Agenda      *[]struct {
		Time     *string `json:"time"`
		Activity *string `json:"activity"`
	} `json:"agenda"`
}

// ParseResponse decodes the backend's JSON text and rejects anything that
// doesn't carry every required field.
func ParseResponse(text string) (model.AISuggestionResponse, error) {
	var p payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return model.AISuggestionResponse{}, fmt.Errorf("ParseResponse: %w", err)
	}

	switch {
	case p.Description == nil:
		return model.AISuggestionResponse{}, fmt.Errorf("ParseResponse: description is missing")
	case p.Tagline == nil:
		return model.AISuggestionResponse{}, fmt.Errorf("ParseResponse: tagline is missing")
	case p.ThemeColor == nil:
		return model.AISuggestionResponse{}, fmt.Errorf("ParseResponse: themeColor is missing")
	case p.Agenda == nil:
		return model.AISuggestionResponse{}, fmt.Errorf("ParseResponse: agenda is missing")
	}

	resp := model.AISuggestionResponse{
		Description: *p.Description,
		Tagline:     *p.Tagline,
		ThemeColor:  *p.ThemeColor,
		Agenda:      make([]model.SuggestedAgendaItem, 0, len(*p.Agenda)),
	}
	for i, item := range *p.Agenda {
		if item.Time == nil || item.Activity == nil {
			return model.AISuggestionResponse{}, fmt.Errorf("ParseResponse: agenda[%d] needs time and activity", i)
		}
		resp.Agenda = append(resp.Agenda, model.SuggestedAgendaItem{
			Time:     *item.Time,
			Activity: *item.Activity,
		})
	}
	return resp, nil
}
