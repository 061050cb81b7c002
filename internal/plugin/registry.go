package plugin

import (
	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// Conflict records an intent claimed by a later plugin and kept by an
// earlier one.
type Conflict struct {
	Intent intent.Intent
	Kept   string
	Lost   string
}

// Registry is the ordered, immutable set of loaded plugins.
type Registry struct {
	plugins   []Plugin
	owners    map[intent.Intent]Plugin
	conflicts []Conflict
}

// NewRegistry registers plugins in order. The first plugin to claim an
// intent owns it.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{owners: make(map[intent.Intent]Plugin)}
	for _, p := range plugins {
		if p == nil {
			continue
		}
		r.plugins = append(r.plugins, p)
		for _, in := range p.Intents() {
			if prev, taken := r.owners[in]; taken {
				if prev != p {
					r.conflicts = append(r.conflicts, Conflict{Intent: in, Kept: prev.Name(), Lost: p.Name()})
				}
				continue
			}
			r.owners[in] = p
		}
	}
	return r
}

// Owner returns the plugin that owns in.
func (r *Registry) Owner(in intent.Intent) (Plugin, bool) {
	p, ok := r.owners[in]
	return p, ok
}

// Handler implements command.Lookup.
func (r *Registry) Handler(in intent.Intent) (command.Handler, bool) {
	p, ok := r.Owner(in)
	if !ok {
		return nil, false
	}
	return p, true
}

// Plugins returns the plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}

// Tables returns each plugin's phrase table in registration order.
func (r *Registry) Tables() []intent.Table {
	var out []intent.Table
	for _, p := range r.plugins {
		if t := p.Phrases(); len(t) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Intents returns every owned intent in registration order.
func (r *Registry) Intents() []intent.Intent {
	var out []intent.Intent
	seen := make(map[intent.Intent]bool)
	for _, p := range r.plugins {
		for _, in := range p.Intents() {
			if r.owners[in] == p && !seen[in] {
				seen[in] = true
				out = append(out, in)
			}
		}
	}
	return out
}

// Conflicts returns intents claimed by more than one plugin.
func (r *Registry) Conflicts() []Conflict {
	return append([]Conflict(nil), r.conflicts...)
}

// Len returns the number of plugins.
func (r *Registry) Len() int {
	return len(r.plugins)
}
