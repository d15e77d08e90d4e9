package entry

import (
	"regexp"
	"strings"
)

// clientPattern matches @client syntax (e.g., "@acme", "@big-co", "@client_2").
// Client names can contain letters, digits, hyphens, and underscores.
var clientPattern = regexp.MustCompile(`@([\p{L}\p{N}_-]+)`)

// tagPattern matches #tag syntax (e.g., "#bugfix", "#urgent", "#v1-release")
var tagPattern = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)

var spacePattern = regexp.MustCompile(`\s+`)

// Tags returns the #tag tokens embedded in the entry's meta text, in order.
func (e Entry) Tags() []string {
	return ParseTags(e.Meta)
}

// Clients returns the @client tokens embedded in the entry's meta text, in order.
func (e Entry) Clients() []string {
	return ParseClients(e.Meta)
}

// ParseTags extracts #tag tokens. Duplicates are kept once.
func ParseTags(meta string) []string {
	return collect(tagPattern, meta)
}

// ParseClients extracts @client tokens. Duplicates are kept once.
func ParseClients(meta string) []string {
	return collect(clientPattern, meta)
}

// StripTokens removes #tag and @client tokens and collapses whitespace.
// Example: "fix login @acme #bug" -> "fix login"
func StripTokens(meta string) string {
	clean := clientPattern.ReplaceAllString(meta, "")
	clean = tagPattern.ReplaceAllString(clean, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(clean, " "))
}

func collect(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}
