package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EnvelopeVersion is bumped whenever the persisted Event shape changes.
const EnvelopeVersion = 1

type envelope struct {
	Version int     `json:"version"`
	Events  []Event `json:"events"`
}

func EncodeEvents(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	data, err := json.Marshal(envelope{Version: EnvelopeVersion, Events: events})
	if err != nil {
		return nil, fmt.Errorf("EncodeEvents: %w", err)
	}
	return data, nil
}

// DecodeEvents reads the versioned envelope, or a bare JSON array of
// events as written before the envelope existed.
func DecodeEvents(data []byte) ([]Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("DecodeEvents: empty payload")
	}

	if data[0] == '[' {
		var events []Event
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("DecodeEvents: legacy array: %w", err)
		}
		return events, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("DecodeEvents: %w", err)
	}
	if env.Version != EnvelopeVersion {
		return nil, fmt.Errorf("DecodeEvents: unsupported version %d", env.Version)
	}
	return env.Events, nil
}
