package security

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

// CheckResult represents the result of a security check.
type CheckResult struct {
	Allowed      bool
	RequiresAuth bool
	Warning      string
	Reason       string
}

// Prompter asks the user a yes/no question. danger selects the stronger
// styling used in safe mode.
type Prompter interface {
	Confirm(question string, danger bool) (bool, error)
}

// Gate coordinates the denylist and the confirmation prompt.
type Gate struct {
	policy   *Policy
	paths    *PathChecker
	prompter Prompter
}

// NewGate creates a new safety gate. A nil policy uses DefaultPolicy.
func NewGate(policy *Policy, prompter Prompter) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Gate{
		policy:   policy,
		paths:    NewPathChecker(policy),
		prompter: prompter,
	}
}

// IsSafe checks path against the built-in denylist and the policy.
func (g *Gate) IsSafe(path string) bool {
	return g.paths.IsSafe(path)
}

// Check screens a resolved intent. Non-destructive intents are always
// allowed. Destructive intents are refused when their target is protected
// and otherwise require confirmation.
func (g *Gate) Check(in intent.Intent, entities intent.EntitySet) *CheckResult {
	if !in.Destructive() {
		return &CheckResult{Allowed: true}
	}

	target, _ := entities.Get(intent.FieldName)
	if !g.paths.IsSafe(target) {
		return &CheckResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Access denied: %s is a protected system path", target),
		}
	}

	return &CheckResult{
		Allowed:      true,
		RequiresAuth: true,
		Warning:      fmt.Sprintf("%s on %s", in, target),
	}
}

// Confirm asks the user to approve an action. Expert mode approves without
// prompting; an unknown mode is treated as beginner.
func (g *Gate) Confirm(desc string, mode session.Mode) (bool, error) {
	switch mode {
	case session.Expert:
		return true, nil
	case session.Safe:
		return g.ask(fmt.Sprintf("SAFETY CHECK: Are you sure you want to %s?", desc), true)
	default:
		return g.ask(fmt.Sprintf("Confirm: Do you want to %s?", desc), false)
	}
}

func (g *Gate) ask(question string, danger bool) (bool, error) {
	if g.prompter == nil {
		return false, fmt.Errorf("no prompter configured for %q", question)
	}
	ok, err := g.prompter.Confirm(question, danger)
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}
