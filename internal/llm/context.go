package llm

import (
	"context"
	"strings"
)

// Purpose labels recorded with every LLM request event.
const (
	PurposeUnknown  = "unknown"
	PurposeQuestion = "question-gen"
)

type purposeKey struct{}

// WithPurpose tags ctx so the logging provider can attribute the call.
// A blank purpose is recorded as PurposeUnknown.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, strings.TrimSpace(purpose))
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
