package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes,
// so the shell treats it as one literal word.
func ShellQuote(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}
