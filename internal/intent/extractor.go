package intent

import (
	"regexp"
	"strings"
)

var (
	// verb SOURCE to DESTINATION; the source is lazy so the first " to " splits.
	transferPattern = regexp.MustCompile(`(?:move|copy|rename)\s+(.*?)\s+to\s+(.*)`)
	quotedPattern   = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	keywordPattern  = regexp.MustCompile(`(?:file|folder|dir|directory)\s+([a-zA-Z0-9_\-.]+(?:\.[a-z]+)?)`)
	upgradePattern  = regexp.MustCompile(`(?:upgrade|update|install update)\s+([a-zA-Z0-9_\-.]+)`)
	// Longer verbs first so "kill process x" does not capture "process x".
	killPattern = regexp.MustCompile(`(?:kill process|stop process|stop program|end task|terminate|kill|stop)\s+(.*)`)
)

// Extractor pulls entities out of free text. Rules are tried in a fixed
// order and the first match wins; results are never merged across rules.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the entities found in text. Quotes typed by the user
// are kept in the captured values so the synthesized command carries them.
func (x *Extractor) Extract(text string) EntitySet {
	text = strings.ToLower(text)

	if m := transferPattern.FindStringSubmatch(text); m != nil {
		return EntitySet{
			Source:      Str(strings.TrimSpace(m[1])),
			Destination: Str(strings.TrimSpace(m[2])),
		}
	}

	if m := quotedPattern.FindString(text); m != "" {
		return EntitySet{Name: Str(m)}
	}

	if m := keywordPattern.FindStringSubmatch(text); m != nil {
		return EntitySet{Name: Str(m[1])}
	}

	if m := upgradePattern.FindStringSubmatch(text); m != nil {
		return EntitySet{Name: Str(strings.TrimSpace(m[1]))}
	}

	if m := killPattern.FindStringSubmatch(text); m != nil {
		return EntitySet{Name: Str(strings.TrimSpace(m[1]))}
	}

	return EntitySet{}
}

// Unquote strips one pair of matching enclosing quotes from an entity
// value, giving the literal path the quoted form refers to.
func Unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
