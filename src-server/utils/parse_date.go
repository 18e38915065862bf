package utils

import (
	"fmt"
	"strings"
	"time"

	"eventhorizon/src-server/model"

	"github.com/olebedev/when"
)

// ParseDate turns "2024-11-01", "tomorrow" or "next friday" into a
// YYYY-MM-DD date.
func ParseDate(w *when.Parser, s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("ParseDate: date is blank")
	}
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t.Format(model.DateLayout), nil
	}

	result, err := w.Parse(s, now)
	if err != nil {
		return "", fmt.Errorf("ParseDate: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("ParseDate: can't understand %q", s)
	}
	return result.Time.Format(model.DateLayout), nil
}
