package infrastructure

import "strings"

const shellSpecialChars = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// shellQuote quotes a string for safe display in a logged command line.
// This is for logging only; exec.Command never goes through a shell.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecialChars) {
		return s
	}
	// single-quote everything, splicing embedded single quotes
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// shellQuoteCommand renders a binary and its arguments as one shell-safe
// command line for log output.
func shellQuoteCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(binary))
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}
