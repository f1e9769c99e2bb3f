package grading

import (
	"math"

	"cerbyl-session-service/internal/domain"
	"cerbyl-session-service/internal/session"
)

// GradeLocally recomputes a grading result from the captured answer map in one
// pass. It is the fallback when the grading service is unreachable and applies
// the same comparison rule as live play, so totals cannot drift between the
// two paths.
func GradeLocally(questions []domain.Question, answers map[string]string) domain.GradingResult {
	result := domain.GradingResult{
		TotalQuestions: len(questions),
		Breakdown:      make([]domain.QuestionResult, len(questions)),
	}
	for i, q := range questions {
		value := answers[q.ID]
		correct := session.Match(value, q.Answer)
		if correct {
			result.CorrectCount++
		}
		result.Breakdown[i] = domain.QuestionResult{
			QuestionText:  q.Prompt,
			UserAnswer:    value,
			CorrectAnswer: q.Answer,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
		}
	}
	if result.TotalQuestions > 0 {
		pct := float64(result.CorrectCount) / float64(result.TotalQuestions) * 100
		result.Percentage = math.Round(pct*100) / 100
	}
	return result
}
