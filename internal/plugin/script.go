package plugin

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// ScriptExt is the file extension of interpreted plugins.
const ScriptExt = ".go"

// scriptLoadTimeout bounds evaluation of a script's top-level code.
const scriptLoadTimeout = 5 * time.Second

// scriptImports is the stdlib surface a script may import.
var scriptImports = map[string]bool{
	"bytes":         true,
	"encoding/json": true,
	"fmt":           true,
	"math":          true,
	"path":          true,
	"path/filepath": true,
	"regexp":        true,
	"runtime":       true,
	"sort":          true,
	"strconv":       true,
	"strings":       true,
	"time":          true,
	"unicode":       true,
}

type executeFunc func(in string, entities map[string]string, dialect string) string

// ScriptPlugin is a plugin written as a Go source file and run by yaegi.
// The file is package main and defines:
//
//	func Name() string
//	func Description() string
//	func Intents() []string
//	func Phrases() map[string][]string // optional
//	func Execute(intent string, entities map[string]string, dialect string) string
type ScriptPlugin struct {
	name        string
	description string
	intents     []intent.Intent
	phrases     intent.Table
	execute     executeFunc
}

// LoadScript validates and evaluates a script plugin.
func LoadScript(path string) (*ScriptPlugin, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	if err := validateImports(path, src); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib symbols: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptLoadTimeout)
	defer cancel()
	if _, err := i.EvalWithContext(ctx, string(src)); err != nil {
		return nil, fmt.Errorf("failed to evaluate script: %w", err)
	}

	p := &ScriptPlugin{}
	var (
		nameFn    func() string
		descFn    func() string
		intentsFn func() []string
	)
	if err := lookup(i, "Name", &nameFn); err != nil {
		return nil, err
	}
	if err := lookup(i, "Description", &descFn); err != nil {
		return nil, err
	}
	if err := lookup(i, "Intents", &intentsFn); err != nil {
		return nil, err
	}
	var exec func(string, map[string]string, string) string
	if err := lookup(i, "Execute", &exec); err != nil {
		return nil, err
	}
	p.execute = exec

	if err := safely(func() {
		p.name = strings.TrimSpace(nameFn())
		p.description = strings.TrimSpace(descFn())
		for _, s := range intentsFn() {
			in := intent.Parse(s)
			if in == intent.Unknown || in == intent.Rollback {
				continue
			}
			p.intents = append(p.intents, in)
		}
	}); err != nil {
		return nil, err
	}
	if p.name == "" {
		return nil, errors.New("script Name() returned an empty name")
	}
	if len(p.intents) == 0 {
		return nil, errors.New("script declares no intents")
	}

	var phrasesFn func() map[string][]string
	if lookup(i, "Phrases", &phrasesFn) == nil {
		var raw map[string][]string
		if err := safely(func() { raw = phrasesFn() }); err != nil {
			return nil, err
		}
		p.phrases = phraseTable(p.intents, raw)
	}
	return p, nil
}

// lookup binds main.<name> to fn, which must point at a func variable of
// the expected signature.
func lookup[T any](i *interp.Interpreter, name string, fn *T) error {
	v, err := i.Eval("main." + name)
	if err != nil {
		return fmt.Errorf("script does not define %s: %w", name, err)
	}
	f, ok := v.Interface().(T)
	if !ok {
		return fmt.Errorf("script %s has signature %s", name, v.Type())
	}
	*fn = f
	return nil
}

func phraseTable(intents []intent.Intent, raw map[string][]string) intent.Table {
	byIntent := make(map[intent.Intent][]string, len(raw))
	for k, phrases := range raw {
		in := intent.Parse(k)
		for _, ph := range phrases {
			if ph = strings.TrimSpace(ph); ph != "" {
				byIntent[in] = append(byIntent[in], ph)
			}
		}
	}
	var t intent.Table
	for _, in := range intents {
		if phrases := byIntent[in]; len(phrases) > 0 {
			t = append(t, intent.PhraseSet{Intent: in, Phrases: phrases})
		}
	}
	return t
}

func validateImports(path string, src []byte) error {
	f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	if f.Name.Name != "main" {
		return fmt.Errorf("script must be package main, got %s", f.Name.Name)
	}

	var forbidden []string
	for _, imp := range f.Imports {
		pkg, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return fmt.Errorf("bad import %s", imp.Path.Value)
		}
		if !scriptImports[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		sort.Strings(forbidden)
		return fmt.Errorf("forbidden imports: %s", strings.Join(forbidden, ", "))
	}
	return nil
}

func safely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()
	fn()
	return nil
}

func (p *ScriptPlugin) Name() string        { return p.name }
func (p *ScriptPlugin) Description() string { return p.description }
func (p *ScriptPlugin) Phrases() intent.Table {
	return p.phrases.Clone()
}

func (p *ScriptPlugin) Intents() []intent.Intent {
	return append([]intent.Intent(nil), p.intents...)
}

// Execute calls the script's Execute. A panic inside the script is
// returned as an error.
func (p *ScriptPlugin) Execute(in intent.Intent, entities intent.EntitySet, d command.Dialect) (string, error) {
	var out string
	err := safely(func() {
		out = p.execute(in.String(), entities.Map(), d.String())
	})
	return out, err
}
