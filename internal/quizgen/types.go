package quizgen

import (
	"context"

	"github.com/abhisek/termdojo/internal/domain"
)

// Question is a validated, generated quiz question.
type Question struct {
	// Text is the question shown to the learner. It may embed the answer
	// choices when Options is empty.
	Text string `json:"question"`

	// Options lists answer choices. Optional.
	Options []string `json:"options,omitempty"`

	// Explanation is revealed after the learner has answered.
	Explanation string `json:"explanation"`
}

// Request asks for one question about Word.
type Request struct {
	Word string

	// Credential and Model override the configured API key and model for
	// this request only. Empty values keep the configuration.
	Credential string
	Model      string
}

// PromptContext is the prompt material used to compose one generation
// request: the selected template and its instruction log.
type PromptContext struct {
	PromptID     int64
	Title        string
	Template     string
	Instructions []string
}

// PromptSource provides the selected prompt and its instruction log.
// store.PromptRepo satisfies it.
type PromptSource interface {
	Selected(ctx context.Context) (*domain.Prompt, error)
	ListInstructions(ctx context.Context, promptID int64) ([]domain.Instruction, error)
}

// LoadPromptContext reads the currently selected prompt and its
// instructions, oldest first.
func LoadPromptContext(ctx context.Context, src PromptSource) (PromptContext, error) {
	p, err := src.Selected(ctx)
	if err != nil {
		return PromptContext{}, err
	}
	logs, err := src.ListInstructions(ctx, p.ID)
	if err != nil {
		return PromptContext{}, err
	}

	pc := PromptContext{
		PromptID: p.ID,
		Title:    p.Title,
		Template: p.Content,
	}
	for _, l := range logs {
		pc.Instructions = append(pc.Instructions, l.Message)
	}
	return pc, nil
}
