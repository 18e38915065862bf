package model

import "github.com/google/uuid"

// Each event owns an ordered list of agenda items
type AgendaItem struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Notes    string `json:"notes,omitempty"`
}

func NewAgendaItem(time, activity string) AgendaItem {
	return AgendaItem{
		ID:       uuid.NewString(),
		Time:     time,
		Activity: activity,
	}
}
