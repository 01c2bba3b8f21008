package quizgen

import (
	"strings"
)

const formatInstructions = `Respond with a single JSON object in exactly this format:
{
  "question": "the question about the word, including any answer choices",
  "options": ["optional list of answer choices"],
  "explanation": "an explanation of the correct answer"
}`

// ComposePrompt builds the text sent to the AI backend: the template, the
// word, the instruction log (if any) and the output format contract, in
// that order.
func ComposePrompt(pc PromptContext, word string) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(pc.Template))
	b.WriteString("\n\nword: «")
	b.WriteString(word)
	b.WriteString("»\n\n")

	if len(pc.Instructions) > 0 {
		b.WriteString("consider also:\n")
		for _, in := range pc.Instructions {
			b.WriteString("- ")
			b.WriteString(in)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(formatInstructions)
	return b.String()
}

// StripCodeFence removes a surrounding Markdown code fence (```json or
// ```) and whitespace from s. Text without a fence is only trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		// Drop the info string ("json") up to the end of the opening line.
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		s = rest
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
