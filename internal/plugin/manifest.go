package plugin

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// ManifestExt is the file extension of declarative plugins.
const ManifestExt = ".toml"

type manifestFile struct {
	Name        string           `toml:"name"`
	Description string           `toml:"description"`
	Intents     []manifestIntent `toml:"intent"`
}

type manifestIntent struct {
	Name     string   `toml:"name"`
	Phrases  []string `toml:"phrases"`
	Windows  string   `toml:"windows"`
	Linux    string   `toml:"linux"`
	Requires []string `toml:"requires"`
	// Output is finished text; when set the intent never runs a command.
	Output string `toml:"output"`
}

type manifestRule struct {
	intent   intent.Intent
	template command.Template
	output   string
}

// ManifestPlugin is a plugin declared in a TOML file:
//
//	name = "git"
//	description = "Git shortcuts"
//
//	[[intent]]
//	name = "GIT_STATUS"
//	phrases = ["repo status"]
//	windows = "git status"
//	linux = "git status"
type ManifestPlugin struct {
	name        string
	description string
	rules       []manifestRule
	phrases     intent.Table
}

// LoadManifest reads and validates a manifest plugin.
func LoadManifest(path string) (*ManifestPlugin, error) {
	var mf manifestFile
	md, err := toml.DecodeFile(path, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown manifest keys: %s", strings.Join(keys, ", "))
	}

	if strings.TrimSpace(mf.Name) == "" {
		mf.Name = strings.TrimSuffix(filepath.Base(path), ManifestExt)
	}
	p := &ManifestPlugin{
		name:        strings.TrimSpace(mf.Name),
		description: strings.TrimSpace(mf.Description),
	}
	if len(mf.Intents) == 0 {
		return nil, errors.New("manifest declares no intents")
	}

	seen := make(map[intent.Intent]bool)
	for i, mi := range mf.Intents {
		rule, err := compileRule(mi)
		if err != nil {
			return nil, fmt.Errorf("intent %d: %w", i+1, err)
		}
		if seen[rule.intent] {
			return nil, fmt.Errorf("intent %s declared twice", rule.intent)
		}
		seen[rule.intent] = true
		p.rules = append(p.rules, rule)

		var phrases []string
		for _, ph := range mi.Phrases {
			if ph = strings.TrimSpace(ph); ph != "" {
				phrases = append(phrases, ph)
			}
		}
		if len(phrases) > 0 {
			p.phrases = append(p.phrases, intent.PhraseSet{Intent: rule.intent, Phrases: phrases})
		}
	}
	return p, nil
}

func compileRule(mi manifestIntent) (manifestRule, error) {
	in := intent.Parse(mi.Name)
	switch in {
	case intent.Unknown:
		return manifestRule{}, errors.New("missing intent name")
	case intent.Rollback:
		return manifestRule{}, errors.New("ROLLBACK cannot be claimed by a plugin")
	}
	if mi.Windows == "" && mi.Linux == "" && mi.Output == "" {
		return manifestRule{}, fmt.Errorf("%s: needs a windows, linux or output template", in)
	}

	var requires []intent.Field
	for _, r := range mi.Requires {
		f := intent.Field(strings.ToLower(strings.TrimSpace(r)))
		switch f {
		case intent.FieldName, intent.FieldSource, intent.FieldDestination:
			requires = append(requires, f)
		default:
			return manifestRule{}, fmt.Errorf("%s: unknown entity field %q", in, r)
		}
	}

	return manifestRule{
		intent:   in,
		template: command.Template{Windows: mi.Windows, Linux: mi.Linux, Requires: requires},
		output:   mi.Output,
	}, nil
}

func (p *ManifestPlugin) Name() string        { return p.name }
func (p *ManifestPlugin) Description() string { return p.description }
func (p *ManifestPlugin) Phrases() intent.Table {
	return p.phrases.Clone()
}

func (p *ManifestPlugin) Intents() []intent.Intent {
	out := make([]intent.Intent, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.intent
	}
	return out
}

// Execute renders the intent's template. A missing required field, or a
// dialect with no template, yields "".
func (p *ManifestPlugin) Execute(in intent.Intent, entities intent.EntitySet, d command.Dialect) (string, error) {
	for _, r := range p.rules {
		if r.intent != in {
			continue
		}
		if r.output != "" {
			out, ok := command.Expand(r.output, r.template.Requires, entities)
			if !ok {
				return "", nil
			}
			return Final(out), nil
		}
		tmpl := r.template.For(d)
		if tmpl == "" {
			return "", nil
		}
		out, _ := command.Expand(tmpl, r.template.Requires, entities)
		return out, nil
	}
	return "", fmt.Errorf("intent %s not handled by %s", in, p.name)
}
