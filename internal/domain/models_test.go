package domain

import (
	"encoding/json"
	"testing"
)

func TestOptionListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain array", `["A", "B"]`, []string{"A", "B"}},
		{"json-encoded string", `"[\"A\", \"B\"]"`, []string{"A", "B"}},
		{"not valid json", `"not valid json"`, nil},
		{"wrong shape", `{"a": 1}`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got OptionList
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unmarshal must never fail, got %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNormalizeDefaultsTrueFalseOptions(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"question": "Sky is blue?", "question_type": "true_false", "options": "not valid json", "correct_answer": "true"}`), &q); err != nil {
		t.Fatalf("unmarshal question: %v", err)
	}

	cfg := QuizConfig{Questions: []Question{q}, Mode: ModeStandard}
	cfg.Normalize()

	got := cfg.Questions[0].Options
	if len(got) != 2 || got[0] != "True" || got[1] != "False" {
		t.Fatalf("expected exactly True/False, got %v", got)
	}
	if cfg.Questions[0].ID != "0" {
		t.Fatalf("expected index fallback ID, got %q", cfg.Questions[0].ID)
	}
}

func TestNormalizeKeepsExistingIDs(t *testing.T) {
	cfg := QuizConfig{Questions: []Question{{ID: "custom", Kind: KindMultipleChoice}}}
	cfg.Normalize()
	if cfg.Questions[0].ID != "custom" {
		t.Fatalf("normalize must not overwrite IDs, got %q", cfg.Questions[0].ID)
	}
}
