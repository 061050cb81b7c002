package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Builtins returns the plugins compiled into the binary.
func Builtins() []Plugin {
	return []Plugin{NewTimePlugin()}
}

// LoadError records a plugin file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.Path), e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Discover loads every plugin file in dir in lexical order, creating dir
// if it does not exist. Unreadable plugins are reported, not fatal.
func Discover(dir string) ([]Plugin, []*LoadError) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, []*LoadError{{Path: dir, Err: err}}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []*LoadError{{Path: dir, Err: err}}
	}

	var (
		plugins []Plugin
		failed  []*LoadError
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		path := filepath.Join(dir, name)

		var (
			p    Plugin
			lerr error
		)
		switch {
		case strings.HasSuffix(name, ManifestExt):
			p, lerr = asPlugin(LoadManifest(path))
		case strings.HasSuffix(name, ScriptExt) && !strings.HasSuffix(name, "_test.go"):
			p, lerr = asPlugin(LoadScript(path))
		default:
			continue
		}
		if lerr != nil {
			failed = append(failed, &LoadError{Path: path, Err: lerr})
			continue
		}
		plugins = append(plugins, p)
	}
	return plugins, failed
}

// asPlugin avoids storing a typed nil in the Plugin interface.
func asPlugin[T Plugin](p T, err error) (Plugin, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Load builds the registry from the builtins followed by the plugins in
// dir. Load failures are logged and skipped.
func Load(dir string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	plugins := Builtins()
	if dir != "" {
		found, failed := Discover(dir)
		for _, f := range failed {
			log.Warn("plugin skipped", zap.String("path", f.Path), zap.Error(f.Err))
		}
		plugins = append(plugins, found...)
	}

	r := NewRegistry(plugins...)
	for _, c := range r.Conflicts() {
		log.Warn("plugin intent already owned",
			zap.String("intent", c.Intent.String()),
			zap.String("owner", c.Kept),
			zap.String("ignored", c.Lost))
	}
	for _, p := range r.Plugins() {
		log.Debug("plugin loaded", zap.String("name", p.Name()), zap.Int("intents", len(p.Intents())))
	}
	return r
}
