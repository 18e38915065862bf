package suggest

import (
	"fmt"
	"strings"
)

const SystemInstruction = "You are a helpful and creative event planning assistant. Output strictly in JSON format."

// Request is the vendor-neutral shape of one structured generation call.
type Request struct {
	Model             string
	Prompt            string
	SystemInstruction string
	ResponseMIMEType  string
	ResponseSchema    *Schema
}

// Schema is the subset of OpenAPI schema objects the backend understands.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

func NewRequest(modelName string, in Input) Request {
	return Request{
		Model:             modelName,
		Prompt:            BuildPrompt(in),
		SystemInstruction: SystemInstruction,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ResponseSchema(),
	}
}

func BuildPrompt(in Input) string {
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = "TBD"
	}

	var sb strings.Builder
	sb.WriteString("I am planning an event.\n")
	fmt.Fprintf(&sb, "Title: %q\n", in.Title)
	fmt.Fprintf(&sb, "Type: %q\n", string(in.Type))
	fmt.Fprintf(&sb, "Date: %q\n", in.Date)
	fmt.Fprintf(&sb, "Location: %q\n", location)
	sb.WriteString(`
Please act as a professional event organizer.
1. Write a compelling, short description for this event (2-3 sentences).
2. Create a catchy, short tagline.
3. Suggest a 3-5 item high-level agenda/schedule suitable for this event type.
4. Suggest a modern hex color code that fits the "vibe" of this event (e.g., professional blue for conference, warm orange for party).
`)
	return sb.String()
}

func ResponseSchema() *Schema {
	return &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"description": {Type: "STRING", Description: "A 2-3 sentence engaging description of the event."},
			"tagline":     {Type: "STRING", Description: "A short, punchy slogan for the event."},
			"themeColor":  {Type: "STRING", Description: "A hex color code string (e.g. #3B82F6)."},
			"agenda": {
				Type: "ARRAY",
				Items: &Schema{
					Type: "OBJECT",
					Properties: map[string]*Schema{
						"time":     {Type: "STRING", Description: "Time of day (e.g. 10:00 AM)"},
						"activity": {Type: "STRING", Description: "Name of the activity or session"},
					},
					Required: []string{"time", "activity"},
				},
			},
		},
		Required: []string{"description", "tagline", "themeColor", "agenda"},
	}
}
