package models

import (
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName turns an arbitrary string (room title, email address)
// into a filesystem-safe name: leading/trailing whitespace is dropped
// and every run of unsafe characters collapses to a single underscore.
// "Team Sync" becomes "Team_Sync", "a@x.com" becomes "a_x.com".
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
}
