package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidEmail reports whether s looks like a deliverable address. Only the
// shape is checked.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
