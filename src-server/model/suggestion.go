package model

type SuggestedAgendaItem struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// AISuggestionResponse is what the generative backend is constrained to return.
type AISuggestionResponse struct {
	Description string                `json:"description"`
	Tagline     string                `json:"tagline"`
	ThemeColor  string                `json:"themeColor"`
	Agenda      []SuggestedAgendaItem `json:"agenda"`
}
