package dojo

import (
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/termdojo/internal/quizgen"
)

// Phase is the current phase of the dojo state machine.
type Phase int

const (
	PhaseIdle             Phase = iota // No session
	PhaseActive                        // Session running, ready to draw
	PhaseDrawing                       // Generation in flight
	PhasePresenting                    // Question shown, explanation hidden
	PhaseAwaitingFeedback              // Explanation shown, waiting for correct/wrong
)

var phaseNames = [...]string{"idle", "active", "drawing", "presenting", "awaiting_feedback"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a read-only snapshot of the engine.
type State struct {
	Phase     Phase  `json:"phase"`
	SessionID string `json:"sessionId,omitempty"`

	// Remaining is the number of terms left in the pool.
	Remaining int `json:"remaining"`
	Drawn     int `json:"drawn"`
	Correct   int `json:"correct"`

	TermID   int64    `json:"termId,omitempty"`
	Word     string   `json:"word,omitempty"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`

	// Explanation is only set once it has been revealed.
	Explanation string `json:"explanation,omitempty"`
	Revealed    bool   `json:"revealed"`
}

// Summary is the result of a finished session.
type Summary struct {
	SessionID       string `json:"sessionId"`
	Drawn           int    `json:"drawn"`
	Correct         int    `json:"correct"`
	Wrong           int    `json:"wrong"`
	AccuracyPercent int    `json:"accuracyPercent"`
}

// NewSummary computes the summary for drawn questions of which correct
// were answered correctly.
func NewSummary(sessionID string, drawn, correct int) Summary {
	s := Summary{
		SessionID: sessionID,
		Drawn:     drawn,
		Correct:   correct,
		Wrong:     drawn - correct,
	}
	if drawn > 0 {
		s.AccuracyPercent = int(math.Round(100 * float64(correct) / float64(drawn)))
	}
	return s
}

// Step is the outcome of a transition that may present a question.
// Exactly one of Question, Failure or Summary is set, except for a
// failed feedback write where none is.
type Step struct {
	State    State
	Question *quizgen.Question

	// Failure is a recoverable generation error. The term went back to
	// the pool and DrawNext may be called again immediately.
	Failure error

	// Summary is set when the pool ran out and the session ended.
	Summary *Summary
}

// Event is published to subscribers after every transition.
type Event struct {
	State   State
	Summary *Summary
	Failure error
}

// ParseMaxQuestions parses a question cap. Any numeric form is accepted
// and truncated toward zero, so "3.0" and "1e1" are caps of 3 and 10.
// Blank, non-numeric, non-finite and non-positive input all mean no cap
// (0), as does a value too large to ever be reached.
func ParseMaxQuestions(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f >= math.MaxInt32 {
		return 0
	}
	return int(f)
}
