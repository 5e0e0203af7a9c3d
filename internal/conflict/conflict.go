// Package conflict decides what happens when a create operation would
// collide with an existing named artifact or catalog entry. Callers ask a
// Policy exactly once per conflict and block until it answers.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Decision is the answer to an overwrite prompt.
type Decision string

const (
	// Overwrite replaces the existing artifact or entry.
	Overwrite Decision = "overwrite"
	// Cancel leaves everything as it is; the calling operation becomes a no-op.
	Cancel Decision = "cancel"
)

// ErrScriptExhausted is returned by a Script that is asked more questions
// than it has answers for.
var ErrScriptExhausted = errors.New("conflict script has no decisions left")

// Policy resolves overwrite conflicts. The description names what would be
// overwritten in human-readable form.
type Policy interface {
	ConfirmOverwrite(ctx context.Context, description string) (Decision, error)
}

// Always answers every prompt with the same decision.
type Always Decision

// ConfirmOverwrite returns the fixed decision.
func (a Always) ConfirmOverwrite(_ context.Context, _ string) (Decision, error) {
	return Decision(a), nil
}

// ParseDecision maps a flag or config value to a Decision. "prompt" is not a
// decision and is rejected here; the CLI handles it before calling.
func ParseDecision(s string) (Decision, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "overwrite", "o", "yes", "y":
		return Overwrite, nil
	case "cancel", "c", "no", "n":
		return Cancel, nil
	default:
		return "", fmt.Errorf("unknown conflict decision %q (want overwrite or cancel)", s)
	}
}

// Script replays canned decisions in order and records every prompt it was
// shown. It is the test adapter for code that prompts.
type Script struct {
	mu        sync.Mutex
	decisions []Decision
	prompts   []string
}

// NewScript returns a Script that answers with decisions in order.
func NewScript(decisions ...Decision) *Script {
	return &Script{decisions: decisions}
}

// ConfirmOverwrite records the prompt and returns the next canned decision.
func (s *Script) ConfirmOverwrite(_ context.Context, description string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, description)
	if len(s.decisions) == 0 {
		return "", fmt.Errorf("%w (prompt: %s)", ErrScriptExhausted, description)
	}
	d := s.decisions[0]
	s.decisions = s.decisions[1:]
	return d, nil
}

// Prompts returns the descriptions shown so far, oldest first.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Remaining reports how many canned decisions are left.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decisions)
}
