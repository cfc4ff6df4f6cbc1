package orchestrator

import "regexp"

// urlPattern matches http(s) URLs in free text. A URL ends at whitespace,
// angle brackets or quotes.
var urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s\p{Z}<>"']+`) //nolint: gochecknoglobals

// ExtractURLs returns the distinct URLs in text in order of first appearance.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}

	return out
}
