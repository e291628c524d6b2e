package predict

import (
	"regexp"
	"strings"
)

var categoryLineRe = regexp.MustCompile(`(?i)^\W*category\W*:\s*(.+)$`)

// ParseCategory extracts the category from model output.
// Expected format:
//
//	CATEGORY: Shopping
//
// Markdown emphasis and surrounding quotes are stripped. Without a CATEGORY
// line the first non-empty line is used.
func ParseCategory(output string) string {
	var first string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := categoryLineRe.FindStringSubmatch(trimmed); m != nil {
			return cleanCategory(m[1])
		}
		if first == "" {
			first = trimmed
		}
	}
	return cleanCategory(first)
}

func cleanCategory(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "*_`\"'.")
	return strings.TrimSpace(s)
}
