package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// JoinTokens joins list answers back into a single line for prompts and logs.
// Tokens are joined as-is, so any whitespace the candidate typed is preserved.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, ", ")
}
