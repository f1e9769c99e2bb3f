package grading

import (
	"testing"

	"cerbyl-session-service/internal/domain"
)

func TestGradeLocallyAgreesWithLivePlay(t *testing.T) {
	// A committed single-letter answer against a full canonical string must be
	// judged the same way the live comparison judged it during play.
	questions := []domain.Question{{
		ID:      "q1",
		Prompt:  "What is the capital of France?",
		Kind:    domain.KindMultipleChoice,
		Options: domain.OptionList{"A) London", "B) Paris"},
		Answer:  "B) Paris",
	}}

	result := GradeLocally(questions, map[string]string{"q1": "B"})
	if result.CorrectCount != 1 {
		t.Fatalf("fallback must accept the letter the live rule accepted, got %+v", result)
	}
	if result.Percentage != 100 {
		t.Fatalf("expected 100%%, got %v", result.Percentage)
	}
}

func TestGradeLocallyUnansweredAndWrong(t *testing.T) {
	questions := []domain.Question{
		{ID: "q1", Prompt: "one", Answer: "A", Explanation: "first"},
		{ID: "q2", Prompt: "two", Answer: "B"},
		{ID: "q3", Prompt: "three", Answer: "C"},
	}
	answers := map[string]string{"q1": "A", "q2": "C"}

	result := GradeLocally(questions, answers)
	if result.TotalQuestions != 3 || result.CorrectCount != 1 {
		t.Fatalf("expected 1/3, got %+v", result)
	}
	if result.Percentage != 33.33 {
		t.Fatalf("expected rounded 33.33, got %v", result.Percentage)
	}
	if !result.Breakdown[0].IsCorrect || result.Breakdown[1].IsCorrect || result.Breakdown[2].IsCorrect {
		t.Fatalf("breakdown mismatch: %+v", result.Breakdown)
	}
	if result.Breakdown[2].UserAnswer != "" {
		t.Fatalf("unanswered question must carry an empty submission")
	}
}

func TestGradeLocallyEmptyQuiz(t *testing.T) {
	result := GradeLocally(nil, nil)
	if result.TotalQuestions != 0 || result.Percentage != 0 {
		t.Fatalf("expected zero result, got %+v", result)
	}
}
