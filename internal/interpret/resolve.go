package interpret

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// Chooser shows a numbered option list and returns the raw line typed.
type Chooser interface {
	Choose(options []string) (string, error)
}

// Outcome is how a Resolve call ended.
type Outcome int

const (
	// Accepted: confidence reached the accept threshold.
	Accepted Outcome = iota
	// Selected: the user picked a suggestion from the menu.
	Selected
	// Rejected: confidence below the floor, or no usable reply.
	Rejected
	// NoSuggestions: the menu would have been empty.
	NoSuggestions
	// Aborted: the selection was not a valid option number.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Selected:
		return "selected"
	case Rejected:
		return "rejected"
	case NoSuggestions:
		return "no_suggestions"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Resolution is the result of the interpretation state machine.
type Resolution struct {
	Outcome  Outcome
	Intent   intent.Intent
	Entities intent.EntitySet
	// Result is the backend's first reading, kept for display.
	Result      AIResult
	Suggestions []AISuggestion
	// Choice is the 1-based menu entry picked when Outcome is Selected.
	Choice int
}

// Resolved reports whether the resolution produced an intent to act on.
func (r Resolution) Resolved() bool {
	return r.Outcome == Accepted || r.Outcome == Selected
}

// Resolve interprets text and applies the confidence tiers. In the middle
// tier the user gets one chance to pick from chooser's menu.
func (ip *Interpreter) Resolve(ctx context.Context, text string, chooser Chooser) Resolution {
	res := ip.Interpret(ctx, text)
	out := Resolution{Result: res, Intent: intent.Unknown}

	if res.Intent == intent.Unknown {
		out.Outcome = Rejected
		return out
	}

	switch ip.Tier(res.Confidence) {
	case TierReject:
		out.Outcome = Rejected
		return out
	case TierAccept:
		out.Outcome = Accepted
		out.Intent = res.Intent
		out.Entities = res.Entities
		return out
	}

	out.Suggestions = ip.Suggest(ctx, text)
	if len(out.Suggestions) == 0 {
		out.Outcome = NoSuggestions
		return out
	}
	if chooser == nil {
		out.Outcome = Aborted
		return out
	}

	labels := make([]string, len(out.Suggestions))
	for i, s := range out.Suggestions {
		labels[i] = s.Label()
	}

	line, err := chooser.Choose(labels)
	if err != nil {
		ip.log.Debug("disambiguation prompt failed", zap.Error(err))
		out.Outcome = Aborted
		return out
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(out.Suggestions) {
		out.Outcome = Aborted
		return out
	}

	picked := out.Suggestions[n-1]
	out.Outcome = Selected
	out.Choice = n
	out.Intent = picked.Intent
	out.Entities = picked.Entities
	return out
}
