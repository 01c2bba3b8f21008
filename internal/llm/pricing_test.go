package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model   string
		wantIn  float64
		wantNil bool
	}{
		{"gemini-2.5-flash-lite", 0.1, false},
		{"google/gemini-2.5-flash-lite", 0.1, false},
		{"claude-3-5-haiku-20241022", 0.8, false},
		{"gpt-4o-mini-2024-07-18", 0.15, false},
		{"GPT-4o", 2.5, false},
		{"mock", 0, true},
		{"gpt-4o-ultra", 2.5, false},
		{"llama-3-70b", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			c := LookupCost(tt.model)
			if tt.wantNil {
				if c != nil {
					t.Fatalf("expected no pricing, got %+v", c)
				}
				return
			}
			if c == nil {
				t.Fatal("expected pricing")
			}
			if c.InputPerMTok != tt.wantIn {
				t.Errorf("input price = %v, want %v", c.InputPerMTok, tt.wantIn)
			}
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 0.1, OutputPerMTok: 0.4}
	got := c.Cost(2_000_000, 500_000)
	if math.Abs(got-0.4) > 1e-9 {
		t.Errorf("cost = %v, want 0.4", got)
	}
}
