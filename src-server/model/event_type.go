package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type EventType string

const (
	EventTypeConference EventType = "Conference"
	EventTypeParty      EventType = "Party"
	EventTypeMeeting    EventType = "Meeting"
	EventTypeWorkshop   EventType = "Workshop"
	EventTypeWedding    EventType = "Wedding"
	EventTypeOther      EventType = "Other"
)

// EventTypes in the order a picker should list them
var EventTypes = []EventType{
	EventTypeConference,
	EventTypeParty,
	EventTypeMeeting,
	EventTypeWorkshop,
	EventTypeWedding,
	EventTypeOther,
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseEventType accepts any casing ("party", "PARTY", " Party ").
func ParseEventType(s string) (EventType, error) {
	t := EventType(cases.Title(language.English).String(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Msg: fmt.Sprintf("unknown event type %q", s)}
	}
	return t, nil
}
