package scorer

import (
	"context"
	"testing"

	"github.com/aretw0/inquest/internal/testutils"
)

func scoreCompletion(t *testing.T, pattern string, completion string, target []string, opts ...Option) (string, string) {
	t.Helper()

	s, err := Pattern(pattern, opts...)
	if err != nil {
		t.Fatalf("Pattern(%q) returned error: %v", pattern, err)
	}
	score, err := s.Score(context.Background(), testutils.SimpleTaskState(completion), target)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	return score.Value, score.Answer
}

func TestPattern_SingleMatchSuccess(t *testing.T) {
	value, _ := scoreCompletion(t, "(foo)", "foo", []string{"foo"})
	if value != CORRECT {
		t.Errorf("value = %q, want %q", value, CORRECT)
	}
}

func TestPattern_SingleMatchFailureWithTarget(t *testing.T) {
	value, _ := scoreCompletion(t, "(foo)", "foo", []string{"target doesn't match"})
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
}

func TestPattern_SingleMatchFailureFromModel(t *testing.T) {
	value, _ := scoreCompletion(t, "(foo)", "model doesn't match", []string{"foo"})
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
}

func TestPattern_IgnoresCaseByDefault(t *testing.T) {
	value, _ := scoreCompletion(t, "(FOO)", "foo", []string{"foo"})
	if value != CORRECT {
		t.Errorf("value = %q, want %q", value, CORRECT)
	}
}

func TestPattern_CaseSensitive(t *testing.T) {
	value, _ := scoreCompletion(t, "(FOO)", "foo", []string{"foo"}, CaseSensitive())
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
}

func TestPattern_MultiMatchSuccessOnFirstMatch(t *testing.T) {
	value, answer := scoreCompletion(t, "(foo) (bar)", "foo bar", []string{"foo"})
	if value != CORRECT {
		t.Errorf("value = %q, want %q", value, CORRECT)
	}
	if answer != "foo" {
		t.Errorf("answer = %q, want %q", answer, "foo")
	}
}

func TestPattern_MultiMatchSuccessOnSubsequentMatch(t *testing.T) {
	value, answer := scoreCompletion(t, "(foo) (bar)", "foo bar", []string{"bar"})
	if value != CORRECT {
		t.Errorf("value = %q, want %q", value, CORRECT)
	}
	if answer != "bar" {
		t.Errorf("answer = %q, want %q", answer, "bar")
	}
}

func TestPattern_MatchAllSuccess(t *testing.T) {
	value, answer := scoreCompletion(t, "(foo) (foo)", "foo foo", []string{"foo"}, MatchAll())
	if value != CORRECT {
		t.Errorf("value = %q, want %q", value, CORRECT)
	}
	if answer != "foo" {
		t.Errorf("answer = %q, want %q", answer, "foo")
	}
}

func TestPattern_MatchAllFailure(t *testing.T) {
	value, answer := scoreCompletion(t, "(foo|bar) (foo|bar)", "foo bar", []string{"bar"}, MatchAll())
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
	if answer != "" {
		t.Errorf("answer = %q, want empty", answer)
	}
}

func TestPattern_MultiMatchFailureWithTarget(t *testing.T) {
	value, _ := scoreCompletion(t, "(foo) (bar)", "foo bar", []string{"target doesn't match"})
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
}

func TestPattern_MultiMatchFailureFromModel(t *testing.T) {
	value, _ := scoreCompletion(t, "(foo) (bar)", "model doesn't match", []string{"bar"})
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
}

func TestPattern_OnlyReturnsExactTargetMatches(t *testing.T) {
	value, _ := scoreCompletion(t, "(f[oz]o) (b[az]r)", "foo bzr", []string{"bar"})
	if value != INCORRECT {
		t.Errorf("value = %q, want %q", value, INCORRECT)
	}
}

func TestPattern_RejectsPatternWithoutGroup(t *testing.T) {
	if _, err := Pattern("foo"); err == nil {
		t.Fatal("expected error for pattern without capture group")
	}
}

func TestPattern_RejectsInvalidPattern(t *testing.T) {
	if _, err := Pattern("(foo"); err == nil {
		t.Fatal("expected error for unbalanced pattern")
	}
}
