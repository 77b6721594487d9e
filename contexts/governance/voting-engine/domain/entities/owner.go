package entities

import "strings"

// Owner is a voting participant. The ownership registry is managed outside
// this engine; only identity is consumed here.
type Owner struct {
	OwnerID    string
	LastName   string
	FirstName  string
	MiddleName string
}

// DisplayName renders "LastName F.M.", falling back to the surname alone,
// then the initials alone, then a placeholder dash.
func (o Owner) DisplayName() string {
	last := strings.TrimSpace(o.LastName)
	initials := initial(o.FirstName) + initial(o.MiddleName)
	switch {
	case last != "" && initials != "":
		return last + " " + initials
	case last != "":
		return last
	case initials != "":
		return initials
	default:
		return "—"
	}
}

func initial(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	runes := []rune(trimmed)
	return string(runes[0]) + "."
}
