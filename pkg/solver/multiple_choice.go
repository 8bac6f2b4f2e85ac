package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"github.com/aretw0/inquest/pkg/domain"
)

// Metadata keys written by the multiple-choice solver.
const (
	// MetadataAnswerIndex holds the pre-shuffle index of the answer the
	// model selected.
	MetadataAnswerIndex = "answer_index"

	// MetadataAnswerLetter holds the raw letter the model answered with.
	MetadataAnswerLetter = "answer_letter"

	// MetadataChoiceOrder holds the displayed-position -> original-index
	// mapping used to render the choices.
	MetadataChoiceOrder = "choice_order"
)

const multipleChoiceTemplate = `Answer the following multiple choice question. The entire content of your response should be of the following format: 'ANSWER: $LETTER' (without quotes) where LETTER is one of {letters}.

{question}

{choices}`

// defaultAnswerPattern extracts the letter answer from a completion.
const defaultAnswerPattern = `(?i)ANSWER\s*:\s*([A-Za-z])`

// MultipleChoiceOptions configures the multiple-choice solver.
type MultipleChoiceOptions struct {
	// Template overrides the built-in question template. It may reference
	// {question}, {choices} and {letters}.
	Template string

	// AnswerPattern overrides the regular expression used to extract the
	// letter answer. It must contain at least one capture group.
	AnswerPattern string

	// Shuffle randomizes the presentation order of the choices.
	Shuffle bool

	// Rand is the randomness source used when shuffling. Supplying one
	// makes shuffles deterministic in tests. Ignored when Shuffle is
	// false; defaults to the shared math/rand source.
	Rand *rand.Rand
}

type multipleChoice struct {
	template string
	pattern  *regexp.Regexp
	shuffle  bool

	// mu guards rand: one solver instance serves concurrent runs of the
	// same plan, and *rand.Rand is not goroutine-safe.
	mu   sync.Mutex
	rand *rand.Rand
}

// MultipleChoice returns a solver that renders the state's answer choices,
// generates once, and reverse-maps the model's letter answer back to the
// original pre-shuffle choice index in Metadata[MetadataAnswerIndex].
func MultipleChoice(opts MultipleChoiceOptions) (Solver, error) {
	template := opts.Template
	if template == "" {
		template = multipleChoiceTemplate
	}
	patternText := opts.AnswerPattern
	if patternText == "" {
		patternText = defaultAnswerPattern
	}
	pattern, err := regexp.Compile(patternText)
	if err != nil {
		return nil, fmt.Errorf("invalid answer pattern: %w", err)
	}
	if pattern.NumSubexp() < 1 {
		return nil, fmt.Errorf("answer pattern %q has no capture group", patternText)
	}
	return &multipleChoice{
		template: template,
		pattern:  pattern,
		shuffle:  opts.Shuffle,
		rand:     opts.Rand,
	}, nil
}

func (s *multipleChoice) Name() string { return "multiple_choice" }

func (s *multipleChoice) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	if len(state.Choices) == 0 {
		return nil, errors.New("multiple choice requires state choices")
	}
	prompt, ok := state.UserPrompt()
	if !ok {
		return nil, errors.New("multiple choice requires a user prompt")
	}

	order := s.choiceOrder(len(state.Choices))

	var rendered strings.Builder
	letters := make([]string, len(order))
	for position, original := range order {
		letter := string(rune('A' + position))
		letters[position] = letter
		fmt.Fprintf(&rendered, "%s) %s\n", letter, state.Choices[original])
	}

	prompt.Content = substitute(s.template, map[string]string{
		"question": prompt.Content,
		"choices":  strings.TrimRight(rendered.String(), "\n"),
		"letters":  strings.Join(letters, ","),
	})

	state, err := generate(ctx, state)
	if err != nil {
		return nil, err
	}

	letter, err := s.extractLetter(state.Completion())
	if err != nil {
		return nil, err
	}

	position := int(letter - 'A')
	if position < 0 || position >= len(order) {
		return nil, fmt.Errorf("answer letter %q is out of range for %d choices", string(letter), len(order))
	}

	if state.Metadata == nil {
		state.Metadata = make(map[string]any)
	}
	state.Metadata[MetadataAnswerIndex] = order[position]
	state.Metadata[MetadataAnswerLetter] = string(letter)
	state.Metadata[MetadataChoiceOrder] = order

	return state, nil
}

// choiceOrder returns the displayed-position -> original-index mapping.
func (s *multipleChoice) choiceOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if !s.shuffle {
		return order
	}
	swap := func(i, j int) {
		order[i], order[j] = order[j], order[i]
	}
	if s.rand != nil {
		s.mu.Lock()
		s.rand.Shuffle(n, swap)
		s.mu.Unlock()
		return order
	}
	rand.Shuffle(n, swap)
	return order
}

func (s *multipleChoice) extractLetter(completion string) (rune, error) {
	match := s.pattern.FindStringSubmatch(completion)
	if match == nil || match[1] == "" {
		return 0, fmt.Errorf("no answer matching %q in completion", s.pattern.String())
	}
	letter := rune(strings.ToUpper(match[1])[0])
	return letter, nil
}
