package quizgen

import (
	"strings"
	"testing"
)

func TestComposePrompt_Order(t *testing.T) {
	pc := PromptContext{
		Template:     "Write one exam question about the word below.",
		Instructions: []string{"make it harder", "use four choices"},
	}
	got := ComposePrompt(pc, "DNS")

	tmpl := strings.Index(got, "Write one exam question")
	word := strings.Index(got, "word: «DNS»")
	first := strings.Index(got, "- make it harder")
	second := strings.Index(got, "- use four choices")
	format := strings.Index(got, `"question"`)

	if tmpl != 0 {
		t.Fatalf("template must come first, got index %d", tmpl)
	}
	if !(tmpl < word && word < first && first < second && second < format) {
		t.Fatalf("sections out of order: tmpl=%d word=%d first=%d second=%d format=%d\n%s",
			tmpl, word, first, second, format, got)
	}
	if !strings.Contains(got, "consider also:\n- make it harder\n- use four choices\n") {
		t.Fatalf("instruction block malformed:\n%s", got)
	}
}

func TestComposePrompt_NoInstructions(t *testing.T) {
	got := ComposePrompt(PromptContext{Template: "T"}, "cache")
	if strings.Contains(got, "consider also") {
		t.Fatalf("unexpected instruction block:\n%s", got)
	}
	want := "T\n\nword: «cache»\n\n" + formatInstructions
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "\n\n  ```json\n{\"a\":1}\n```  \n", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
		{"prose untouched", "Sure! here it is", "Sure! here it is"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
