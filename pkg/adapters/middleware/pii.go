package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
)

type piiMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks occurrences of the
// patterns in the persisted conversation: sample input, message contents,
// the completion, score text and metadata string values. The record held
// in memory by the engine is never modified.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, record *domain.RunRecord) error {
	return m.next.Save(ctx, m.maskRecord(record))
}

func (m *piiMiddleware) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	return m.next.Load(ctx, runID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

// maskRecord deep-clones the record and masks every text field that can
// carry conversation content.
func (m *piiMiddleware) maskRecord(record *domain.RunRecord) *domain.RunRecord {
	cloned := *record
	cloned.Error = m.mask(record.Error)

	if record.Score != nil {
		score := *record.Score
		score.Answer = m.mask(score.Answer)
		score.Explanation = m.mask(score.Explanation)
		cloned.Score = &score
	}

	if record.State != nil {
		state := *record.State
		state.Input = m.mask(state.Input)
		state.Messages = make([]domain.ChatMessage, len(record.State.Messages))
		for i, msg := range record.State.Messages {
			msg.Content = m.mask(msg.Content)
			state.Messages[i] = msg
		}
		if record.State.Output != nil {
			output := *record.State.Output
			output.Completion = m.mask(output.Completion)
			state.Output = &output
		}
		state.Metadata, _ = m.maskValue(record.State.Metadata).(map[string]any)
		cloned.State = &state
	}

	return &cloned
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, "***")
	}
	return text
}

// maskValue masks string values, recursing into nested maps.
func (m *piiMiddleware) maskValue(v any) any {
	switch val := v.(type) {
	case string:
		return m.mask(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = m.maskValue(inner)
		}
		return out
	default:
		return v
	}
}
