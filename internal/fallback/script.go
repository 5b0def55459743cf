// Package fallback answers a caller with canned sales replies when the
// language model is unavailable.
package fallback

import (
	"math/rand/v2"
	"strings"
)

// Script is a keyword-driven reply table. It is safe for concurrent use.
type Script struct {
	replies  map[string]string
	rules    []Rule
	defaults []string
	pick     func(n int) int
}

// Option customizes a Script.
type Option func(*Script)

// WithPicker replaces the random default selector; pick must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *Script) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// WithRules swaps the ordered rule table.
func WithRules(rules []Rule) Option {
	return func(s *Script) { s.rules = rules }
}

// New returns the Digital Lab script.
func New(opts ...Option) *Script {
	s := &Script{
		replies:  replies,
		rules:    DefaultRules,
		defaults: defaults,
		pick:     rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply picks a canned answer for input. It never returns an empty string.
func (s *Script) Reply(input string) string {
	text, _ := s.Match(input)
	return text
}

// Match is Reply plus the name of the rule that fired: "exact", a rule name,
// or "default".
func (s *Script) Match(input string) (string, string) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	if text, ok := s.replies[normalized]; ok {
		return text, "exact"
	}

	for _, rule := range s.rules {
		if !containsAny(normalized, rule.Keywords) {
			continue
		}
		for _, target := range rule.Targets {
			if text, ok := s.replies[target]; ok {
				return text, rule.Name
			}
		}
	}

	idx := s.pick(len(s.defaults))
	if idx < 0 || idx >= len(s.defaults) {
		idx = 0
	}
	return s.defaults[idx], "default"
}

// Lookup returns the reply for an exact trigger phrase.
func (s *Script) Lookup(phrase string) (string, bool) {
	text, ok := s.replies[phrase]
	return text, ok
}

// Defaults lists the catch-all replies.
func (s *Script) Defaults() []string {
	out := make([]string, len(s.defaults))
	copy(out, s.defaults)
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
