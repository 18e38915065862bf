package model

import "regexp"

const DefaultThemeColor = "#6366f1" // indigo

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is a "#rgb" or "#rrggbb" color.
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}
