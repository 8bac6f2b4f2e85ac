// Package scorer provides generic answer-extraction scorers for run
// results. Model-specific grading rules live outside the engine; these
// scorers only implement the mechanical part: pull candidate answers out
// of a completion with a regular expression and compare them to the
// sample's target.
package scorer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
)

// Score values reported by the built-in scorers.
const (
	CORRECT   = "C"
	INCORRECT = "I"
)

type patternScorer struct {
	re         *regexp.Regexp
	ignoreCase bool
	matchAll   bool
}

// Option defines a functional option for configuring the pattern scorer.
type Option func(*patternScorer)

// CaseSensitive disables the default case-insensitive matching.
func CaseSensitive() Option {
	return func(s *patternScorer) {
		s.ignoreCase = false
	}
}

// MatchAll requires every capture group to match the target, instead of
// any single group.
func MatchAll() Option {
	return func(s *patternScorer) {
		s.matchAll = true
	}
}

// Pattern creates a scorer that extracts answers via the capture groups of
// the given regular expression and grades CORRECT when a group exactly
// matches one of the target values.
func Pattern(pattern string, opts ...Option) (ports.Scorer, error) {
	s := &patternScorer{ignoreCase: true}
	for _, opt := range opts {
		opt(s)
	}

	if s.ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid score pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("score pattern %q has no capture group", pattern)
	}
	s.re = re
	return s, nil
}

// Score implements ports.Scorer.
func (s *patternScorer) Score(ctx context.Context, state *domain.TaskState, target []string) (*domain.Score, error) {
	completion := state.Completion()
	score := &domain.Score{Value: INCORRECT, Explanation: completion}

	match := s.re.FindStringSubmatch(completion)
	if match == nil {
		return score, nil
	}

	groups := make([]string, 0, len(match)-1)
	for _, group := range match[1:] {
		if group != "" {
			groups = append(groups, group)
		}
	}

	if s.matchAll {
		for _, group := range groups {
			if !s.inTarget(group, target) {
				return score, nil
			}
		}
		if len(groups) > 0 {
			score.Value = CORRECT
			score.Answer = groups[0]
		}
		return score, nil
	}

	for _, group := range groups {
		if s.inTarget(group, target) {
			score.Value = CORRECT
			score.Answer = group
			return score, nil
		}
	}
	return score, nil
}

func (s *patternScorer) inTarget(answer string, target []string) bool {
	for _, t := range target {
		if s.ignoreCase {
			if strings.EqualFold(answer, t) {
				return true
			}
		} else if answer == t {
			return true
		}
	}
	return false
}
