package domain

import "time"

// Proficiency bounds and the score assigned to newly registered terms.
const (
	MinProficiency     = 0
	MaxProficiency     = 100
	DefaultProficiency = 30
)

// DefaultTag is assigned to terms registered without a tag.
const DefaultTag = "unclassified"

// DefaultPromptID is the seed prompt. It cannot be deleted and is the
// fallback selection.
const DefaultPromptID int64 = 1

// Term is a vocabulary entry.
type Term struct {
	ID          int64     `db:"id" json:"id"`
	Word        string    `db:"word" json:"word"`
	Tag         string    `db:"tag" json:"tag"`
	Proficiency int       `db:"proficiency" json:"proficiency"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Prompt is a named template used to compose question requests.
type Prompt struct {
	ID      int64  `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
}

// Instruction is one entry in a prompt's append-only instruction log.
type Instruction struct {
	ID        int64     `db:"id" json:"id"`
	PromptID  int64     `db:"prompt_id" json:"promptId"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StudyResult is the outcome recorded in the study log.
type StudyResult string

const (
	ResultCorrect StudyResult = "correct"
	ResultWrong   StudyResult = "wrong"
)

// StudyLog records one proficiency change.
type StudyLog struct {
	ID                int64       `db:"id" json:"id"`
	TermID            int64       `db:"term_id" json:"termId"`
	Word              string      `db:"word" json:"word"`
	Tag               string      `db:"tag" json:"tag"`
	Result            StudyResult `db:"result" json:"result"`
	ProficiencyBefore int         `db:"proficiency_before" json:"proficiencyBefore"`
	ProficiencyAfter  int         `db:"proficiency_after" json:"proficiencyAfter"`
	CreatedAt         time.Time   `db:"created_at" json:"createdAt"`
}
