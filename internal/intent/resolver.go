package intent

import "strings"

// Resolver maps free text to an intent by case-insensitive substring
// match. It is immutable once built and safe to share.
type Resolver struct {
	base    Table
	plugins []Table
}

// NewResolver creates a resolver that scans base first, then each plugin
// table in registration order.
func NewResolver(base Table, plugins ...Table) *Resolver {
	r := &Resolver{base: lowerTable(base)}
	for _, t := range plugins {
		r.plugins = append(r.plugins, lowerTable(t))
	}
	return r
}

// Resolve returns the first intent whose phrase occurs in text, or Unknown.
func (r *Resolver) Resolve(text string) Intent {
	text = strings.ToLower(text)

	if in, ok := scan(r.base, text); ok {
		return in
	}
	for _, t := range r.plugins {
		if in, ok := scan(t, text); ok {
			return in
		}
	}
	return Unknown
}

// Intents returns every intent the resolver can produce: base table
// intents first, then plugin intents, without duplicates.
func (r *Resolver) Intents() []Intent {
	all := append(Table{}, r.base...)
	for _, t := range r.plugins {
		all = append(all, t...)
	}
	return all.Intents()
}

func scan(t Table, text string) (Intent, bool) {
	for _, ps := range t {
		for _, p := range ps.Phrases {
			if p != "" && strings.Contains(text, p) {
				return ps.Intent, true
			}
		}
	}
	return "", false
}

func lowerTable(t Table) Table {
	out := t.Clone()
	for i := range out {
		for j, p := range out[i].Phrases {
			out[i].Phrases[j] = strings.ToLower(p)
		}
	}
	return out
}

var nlKeywords = []string{
	"create", "delete", "remove", "make", "move", "copy", "rename",
	"show", "list", "where", "go", "open",
	"explain", "teach", "how",
	"change", "switch", "set", "read", "check", "what", "who",
	"install", "update", "upgrade", "undo", "rollback",
	"kill", "stop", "terminate", "clear",
}

// LooksLikeNL reports whether text reads like a natural-language request
// rather than a literal shell command.
func LooksLikeNL(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range nlKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
