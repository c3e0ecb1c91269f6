package service

import "strings"

// SplitName splits a display name: the last word is the last name and
// everything before it is the first name. Best effort, no locale rules.
func SplitName(display string) (first, last string) {
	parts := strings.Fields(display)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// displayName falls back to the local part of the email.
func displayName(name, email string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(local)
}
