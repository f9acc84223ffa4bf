package discovery

import (
	"fmt"
	"strings"

	"github.com/storyarc/narrative-backend/internal/apperr"
	"github.com/storyarc/narrative-backend/internal/types"
)

// Prompt is one questionnaire step.
type Prompt struct {
	ID          string
	Label       string
	Placeholder string
}

// Prompts returns the fixed ordered questionnaire. The order matches the
// field order of types.AnswerSet.
func Prompts() []Prompt {
	return []Prompt{
		{ID: "audience", Label: "Who is this story for?", Placeholder: "Potential clients, recruiters, investors..."},
		{ID: "goal", Label: "What is the primary goal?", Placeholder: "Attract clients, raise trust, justify premium pricing..."},
		{ID: "character", Label: "Who is the main character?", Placeholder: "Individual, founder, freelancer, brand..."},
		{ID: "stage", Label: "What stage are they in?", Placeholder: "Pivoting, growing, established..."},
		{ID: "struggle", Label: "What problem or struggle did they face?", Placeholder: "Be specific about the friction or limitations..."},
		{ID: "turningPoint", Label: "What was the specific turning point?", Placeholder: "A failure, realization, decision, event..."},
		{ID: "strengths", Label: "What core strengths define them today?", Placeholder: "Avoid clichés. Think about concrete values."},
		{ID: "outcome", Label: "What is the desired reader outcome?", Placeholder: "Book a call, feel inspired, trust the expertise..."},
	}
}

// Collector walks the questionnaire one prompt at a time. It is an ephemeral
// single-session state machine: values survive Back navigation but nothing
// survives the process.
type Collector struct {
	prompts []Prompt
	answers []string
	index   int
	done    bool
}

func NewCollector() *Collector {
	prompts := Prompts()
	return &Collector{
		prompts: prompts,
		answers: make([]string, len(prompts)),
	}
}

// Current returns the active prompt. Calling it after completion is a
// programming error surfaced as a zero Prompt.
func (c *Collector) Current() Prompt {
	if c.done {
		return Prompt{}
	}
	return c.prompts[c.index]
}

// Index returns the zero-based position of the active prompt.
func (c *Collector) Index() int {
	return c.index
}

func (c *Collector) Complete() bool {
	return c.done
}

// Submit records a value for the active prompt and advances. Empty or
// whitespace-only input refuses to advance. Submitting the final prompt
// transitions to the complete state.
func (c *Collector) Submit(value string) error {
	if c.done {
		return fmt.Errorf("%w: questionnaire already complete", apperr.ErrInvalidInput)
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%w: %s requires a non-empty answer", apperr.ErrInvalidInput, c.prompts[c.index].ID)
	}
	c.answers[c.index] = trimmed
	if c.index == len(c.prompts)-1 {
		c.done = true
		return nil
	}
	c.index++
	return nil
}

// Back moves to the previous prompt, keeping every recorded value. A no-op at
// the first prompt and after completion.
func (c *Collector) Back() {
	if c.done || c.index == 0 {
		return
	}
	c.index--
}

// ValueAt returns the recorded answer for a prompt index, empty if unanswered.
func (c *Collector) ValueAt(i int) string {
	if i < 0 || i >= len(c.answers) {
		return ""
	}
	return c.answers[i]
}

// Answers returns the completed answer set. It fails until the final prompt
// has been accepted.
func (c *Collector) Answers() (types.AnswerSet, error) {
	if !c.done {
		return types.AnswerSet{}, fmt.Errorf("%w: questionnaire incomplete", apperr.ErrInvalidInput)
	}
	return types.AnswerSet{
		Audience:     c.answers[0],
		Goal:         c.answers[1],
		Character:    c.answers[2],
		Stage:        c.answers[3],
		Struggle:     c.answers[4],
		TurningPoint: c.answers[5],
		Strengths:    c.answers[6],
		Outcome:      c.answers[7],
	}, nil
}

// ValidateAnswerSet checks a client-assembled answer set the same way the
// collector checks individual submissions.
func ValidateAnswerSet(answers types.AnswerSet) error {
	prompts := Prompts()
	for i, value := range answers.Fields() {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s requires a non-empty answer", apperr.ErrInvalidInput, prompts[i].ID)
		}
	}
	return nil
}
