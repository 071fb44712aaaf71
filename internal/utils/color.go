package utils

import "regexp"

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidHexColor reports whether s is a #RGB or #RRGGBB hex color. Used to
// validate the accent color setting before it reaches the frontend theme.
func ValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}
