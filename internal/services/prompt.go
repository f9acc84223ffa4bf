package services

import (
	"fmt"
	"strings"

	"github.com/storyarc/narrative-backend/internal/types"
)

// systemInstruction frames every synthesis call. It encodes the seven-part
// narrative framework and the style constraints the product promises.
const systemInstruction = `You are an elite Narrative Strategist, Brand Story Architect, and Human Psychology-driven Copy Expert.
Your job is NOT to write generic content. Your job is to extract truth, structure it into a compelling narrative, and transform it into a high-impact personal or brand story that creates trust, authority, and emotional resonance.

Narrative Framework:
- Origin Context: where it started
- Conflict: the real struggle or limitation
- Insight: what changed mentally or strategically
- Action: what they did differently
- Outcome: measurable or observable results
- Identity: who they are now
- Invitation: why this matters to the audience

Writing Style:
- Write like a human telling a real experience
- Use short to medium sentences
- Mix logic and emotion
- Avoid marketing clichés, buzzwords, and exaggerated claims
- No emojis or hashtags unless requested
- Clarity over hype. Specificity over vagueness.

Return your response in JSON format matching the schema provided.`

// buildUserPrompt concatenates the answer set, the requested format, and the
// optional tone refinement into the single user message.
func buildUserPrompt(answers types.AnswerSet, format types.OutputFormat, tone *types.RefinementTone) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Audience: %s\n", answers.Audience)
	fmt.Fprintf(&b, "- Goal: %s\n", answers.Goal)
	fmt.Fprintf(&b, "- Character: %s\n", answers.Character)
	fmt.Fprintf(&b, "- Stage: %s\n", answers.Stage)
	fmt.Fprintf(&b, "- Struggle: %s\n", answers.Struggle)
	fmt.Fprintf(&b, "- Turning Point: %s\n", answers.TurningPoint)
	fmt.Fprintf(&b, "- Strengths: %s\n", answers.Strengths)
	fmt.Fprintf(&b, "- Desired Outcome: %s\n", answers.Outcome)
	fmt.Fprintf(&b, "- Format Requested: %s\n", format)
	if tone != nil {
		fmt.Fprintf(&b, "- Requested Tone Refinement: %s\n", *tone)
	}
	b.WriteString("\nGenerate the story based on the narrative strategist persona and framework.")
	return b.String()
}

// storySchema is the structured-output contract requested from the
// generation service.
func storySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "The generated story narrative content.",
			},
			"insights": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"positioning": map[string]any{"type": "string"},
					"hooks":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"themes":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"suggestion":  map[string]any{"type": "string"},
				},
				"required":             []string{"positioning", "hooks", "themes", "suggestion"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"content", "insights"},
		"additionalProperties": false,
	}
}
