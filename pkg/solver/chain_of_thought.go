package solver

// chainOfThoughtTemplate asks for step-by-step reasoning with the final
// answer on its own line, so downstream answer extraction stays trivial.
const chainOfThoughtTemplate = `{prompt}

Before answering, reason in a step-by-step manner as to get the right answer. Provide your answer at the end on its own line in the form "ANSWER: $ANSWER" (without quotes) where $ANSWER is the answer to the question.`

// ChainOfThought returns a solver that rewrites the user prompt with the
// built-in chain-of-thought template. It never calls generate.
func ChainOfThought() Solver {
	s := PromptTemplate(chainOfThoughtTemplate, nil).(*promptTemplate)
	return &chainOfThought{promptTemplate: s}
}

type chainOfThought struct {
	*promptTemplate
}

func (s *chainOfThought) Name() string { return "chain_of_thought" }
