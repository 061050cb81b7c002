// Package interpret is the fallback path for text the phrase table does
// not recognize: it asks the generative backend for an intent and decides,
// by confidence, whether to accept it, offer a menu, or give up.
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/nlsh/internal/ai"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// ErrNoJSON is reported when a reply carries no decodable JSON payload.
var ErrNoJSON = errors.New("no JSON payload in reply")

// Defaults for Options.
const (
	DefaultLowFloor        = 0.3
	DefaultAcceptThreshold = 0.6
	DefaultMaxSuggestions  = 3
	DefaultTimeout         = 10 * time.Second
)

// AIResult is the backend's structured reading of a sentence.
type AIResult struct {
	Intent     intent.Intent
	Entities   intent.EntitySet
	Confidence float64
}

// AISuggestion is one entry of the disambiguation menu.
type AISuggestion struct {
	Intent      intent.Intent
	Entities    intent.EntitySet
	Description string
}

// Label is the menu text for the suggestion.
func (s AISuggestion) Label() string {
	if d := strings.TrimSpace(s.Description); d != "" {
		return d
	}
	return s.Intent.String()
}

// Tier is the confidence band of an AIResult.
type Tier int

const (
	TierReject Tier = iota
	TierDisambiguate
	TierAccept
)

func (t Tier) String() string {
	switch t {
	case TierReject:
		return "reject"
	case TierDisambiguate:
		return "disambiguate"
	case TierAccept:
		return "accept"
	}
	return "unknown"
}

// Options configures an Interpreter.
type Options struct {
	Backend         ai.Backend
	Timeout         time.Duration
	LowFloor        float64
	AcceptThreshold float64
	MaxSuggestions  int
	// Vocabulary is the closed set of intents offered to the backend.
	Vocabulary []intent.Intent
	Logger     *zap.Logger
}

// Interpreter runs the AI interpretation path.
type Interpreter struct {
	opts Options
	log  *zap.Logger
}

// New creates an interpreter. Zero option values take the defaults.
func New(opts Options) *Interpreter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LowFloor == 0 && opts.AcceptThreshold == 0 {
		opts.LowFloor = DefaultLowFloor
		opts.AcceptThreshold = DefaultAcceptThreshold
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	if len(opts.Vocabulary) == 0 {
		opts.Vocabulary = intent.Vocabulary()
	}
	opts.Vocabulary = filterVocabulary(opts.Vocabulary)

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{opts: opts, log: log}
}

func filterVocabulary(in []intent.Intent) []intent.Intent {
	out := make([]intent.Intent, 0, len(in))
	for _, v := range in {
		if v != intent.Unknown && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Tier classifies a confidence value. The floor itself is not rejected
// and the accept threshold itself is accepted.
func (ip *Interpreter) Tier(conf float64) Tier {
	switch {
	case conf < ip.opts.LowFloor:
		return TierReject
	case conf < ip.opts.AcceptThreshold:
		return TierDisambiguate
	default:
		return TierAccept
	}
}

// Interpret asks the backend for an intent. Any failure yields
// {UNKNOWN, empty, 0}.
func (ip *Interpreter) Interpret(ctx context.Context, text string) AIResult {
	reply := ai.Invoke(ctx, ip.opts.Backend, buildInterpretPrompt(ip.opts.Vocabulary, text), ip.opts.Timeout, ip.log)
	res, err := ParseResult(reply)
	if err != nil {
		ip.log.Debug("interpret: unusable reply", zap.String("text", text), zap.Error(err))
		return AIResult{Intent: intent.Unknown}
	}
	return res
}

// Suggest asks the backend for up to MaxSuggestions alternatives.
func (ip *Interpreter) Suggest(ctx context.Context, text string) []AISuggestion {
	prompt := buildSuggestPrompt(ip.opts.Vocabulary, text, ip.opts.MaxSuggestions)
	reply := ai.Invoke(ctx, ip.opts.Backend, prompt, ip.opts.Timeout, ip.log)
	out, err := ParseSuggestions(reply)
	if err != nil {
		ip.log.Debug("suggest: unusable reply", zap.String("text", text), zap.Error(err))
		return nil
	}
	if len(out) > ip.opts.MaxSuggestions {
		out = out[:ip.opts.MaxSuggestions]
	}
	return out
}

type rawItem struct {
	Intent      string                     `json:"intent"`
	Entities    map[string]json.RawMessage `json:"entities"`
	Confidence  json.RawMessage            `json:"confidence"`
	Description string                     `json:"description"`
}

// ParseResult extracts an AIResult from a raw reply. The first top-level
// span that decodes as an object is used.
func ParseResult(reply string) (AIResult, error) {
	for _, c := range Candidates(reply) {
		if !strings.HasPrefix(c, "{") {
			continue
		}
		var item rawItem
		if err := json.Unmarshal([]byte(c), &item); err != nil {
			continue
		}
		res := AIResult{
			Intent:     intent.Parse(item.Intent),
			Entities:   decodeEntities(item.Entities),
			Confidence: parseConfidence(item.Confidence),
		}
		if res.Intent == intent.Unknown {
			res.Confidence = 0
		}
		return res, nil
	}
	return AIResult{Intent: intent.Unknown}, ErrNoJSON
}

// ParseSuggestions extracts suggestions from a raw reply. The first span
// that decodes as an array wins; failing that, a lone object is taken as a
// single suggestion. Entries without an intent are dropped.
func ParseSuggestions(reply string) ([]AISuggestion, error) {
	cands := Candidates(reply)

	for _, c := range cands {
		if !strings.HasPrefix(c, "[") {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(c), &items); err != nil {
			continue
		}
		var out []AISuggestion
		for _, raw := range items {
			var item rawItem
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			if s, ok := toSuggestion(item); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}

	for _, c := range cands {
		var item rawItem
		if err := json.Unmarshal([]byte(c), &item); err != nil {
			continue
		}
		if s, ok := toSuggestion(item); ok {
			return []AISuggestion{s}, nil
		}
	}
	return nil, ErrNoJSON
}

func toSuggestion(item rawItem) (AISuggestion, bool) {
	in := intent.Parse(item.Intent)
	if in == intent.Unknown {
		return AISuggestion{}, false
	}
	return AISuggestion{
		Intent:      in,
		Entities:    decodeEntities(item.Entities),
		Description: strings.TrimSpace(item.Description),
	}, true
}

// decodeEntities keeps string and number values. null and other types
// leave the field absent.
func decodeEntities(m map[string]json.RawMessage) intent.EntitySet {
	values := make(map[string]string, len(m))
	for k, raw := range m {
		key := strings.ToLower(strings.TrimSpace(k))
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if json.Unmarshal(raw, &s) == nil {
				values[key] = s
			}
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			values[key] = string(raw)
		}
	}
	return intent.FromMap(values)
}

// parseConfidence accepts numbers, numeric strings and percentages, and
// clamps the result to [0,1]. Anything else is 0.
func parseConfidence(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		s = strings.TrimSpace(s)
		percent := strings.HasSuffix(s, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0
		}
		if percent {
			v /= 100
		}
		f = v
	} else if json.Unmarshal(raw, &f) != nil {
		return 0
	}

	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
