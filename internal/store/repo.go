package store

import (
	"context"
	"time"

	"github.com/abhisek/termdojo/internal/domain"
)

// TermSort selects the ordering of term listings.
type TermSort string

const (
	SortNewest      TermSort = "newest"
	SortWord        TermSort = "word"
	SortProficiency TermSort = "proficiency"
)

// TermFilter narrows term listings. Zero value lists everything, newest first.
type TermFilter struct {
	// Tags restricts results to terms carrying any of these tags.
	Tags []string
	Sort TermSort
}

// TermRepo persists vocabulary terms.
type TermRepo interface {
	List(ctx context.Context, filter TermFilter) ([]domain.Term, error)
	Get(ctx context.Context, id int64) (*domain.Term, error)

	// Create registers a word. Blank tags become domain.DefaultTag and the
	// proficiency starts at domain.DefaultProficiency.
	Create(ctx context.Context, word, tag string) (*domain.Term, error)

	UpdateTag(ctx context.Context, id int64, tag string) error
	SetProficiency(ctx context.Context, id int64, proficiency int) error
	Delete(ctx context.Context, id int64) error

	// DistinctTags returns every non-empty tag in use, sorted.
	DistinctTags(ctx context.Context) ([]string, error)
}

// PromptRepo persists prompts, the selected-prompt pointer and the
// per-prompt instruction log.
type PromptRepo interface {
	List(ctx context.Context) ([]domain.Prompt, error)
	Get(ctx context.Context, id int64) (*domain.Prompt, error)
	Create(ctx context.Context, title, content string) (*domain.Prompt, error)
	Update(ctx context.Context, id int64, title, content string) error

	// Delete removes a prompt and its instructions. The default prompt
	// cannot be deleted; deleting the selected prompt selects the default.
	Delete(ctx context.Context, id int64) error

	SelectedID(ctx context.Context) (int64, error)
	// Selected returns the selected prompt, falling back to the default
	// prompt when the pointer is dangling.
	Selected(ctx context.Context) (*domain.Prompt, error)
	Select(ctx context.Context, id int64) error

	AppendInstruction(ctx context.Context, promptID int64, message string) (*domain.Instruction, error)
	// ListInstructions returns the log oldest first.
	ListInstructions(ctx context.Context, promptID int64) ([]domain.Instruction, error)
	// DeleteInstruction removes one entry of promptID's log. An entry that
	// belongs to another prompt is reported as not found.
	DeleteInstruction(ctx context.Context, promptID, id int64) error
}

// Overview summarises study activity.
type Overview struct {
	TotalTerms   int `json:"totalTerms"`
	TotalStudied int `json:"totalStudied"`
	// RecentAccuracy is the rounded percentage of correct answers over the
	// last seven days, or nil when nothing was studied.
	RecentAccuracy *int `json:"recentAccuracy"`
}

// DailyCount is the number of answers recorded on one day.
type DailyCount struct {
	Day     string `json:"day"`
	Total   int    `json:"total"`
	Correct int    `json:"correct"`
}

// TagAverage is the mean proficiency of the terms carrying a tag.
type TagAverage struct {
	Tag            string  `db:"tag" json:"tag"`
	AvgProficiency float64 `db:"avg_proficiency" json:"avgProficiency"`
	Count          int     `db:"count" json:"count"`
}

// Distribution buckets terms by proficiency: low < 40 <= mid < 70 <= high.
type Distribution struct {
	Low  int `db:"low" json:"low"`
	Mid  int `db:"mid" json:"mid"`
	High int `db:"high" json:"high"`
}

// StudyLogRepo records proficiency changes and answers study statistics.
type StudyLogRepo interface {
	Append(ctx context.Context, entry domain.StudyLog) error
	Overview(ctx context.Context, now time.Time) (*Overview, error)
	// Daily returns one entry per day for the given number of days ending
	// on now's date, oldest first.
	Daily(ctx context.Context, now time.Time, days int) ([]DailyCount, error)
	TagAverages(ctx context.Context) ([]TagAverage, error)
	ProficiencyDistribution(ctx context.Context) (*Distribution, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID           int       `db:"id"`
	Timestamp    time.Time `db:"created_at"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
}

// PurposeUsage aggregates token usage per purpose.
type PurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
