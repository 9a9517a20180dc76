package cli

import "strings"

// NormalizeInput trims surrounding whitespace and then one layer of matching
// single or double quotes, as pasted by file managers and shells.
func NormalizeInput(line string) string {
	s := strings.TrimSpace(line)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return s
}

// IsQuit reports whether normalized input asks to leave the interactive loop.
func IsQuit(s string) bool {
	return strings.EqualFold(s, "q")
}
