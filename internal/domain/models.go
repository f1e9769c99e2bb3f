package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// QuizMode is the navigation/scoring discipline for a session.
type QuizMode string

const (
	ModeStandard          QuizMode = "standard"
	ModeSequential        QuizMode = "sequential"
	ModeSequentialInstant QuizMode = "sequential-instant"
)

// Valid reports whether the mode is one of the supported disciplines.
func (m QuizMode) Valid() bool {
	switch m {
	case ModeStandard, ModeSequential, ModeSequentialInstant:
		return true
	}
	return false
}

// TimingMode controls the session clock.
type TimingMode string

const (
	TimingTimed     TimingMode = "timed"
	TimingStopwatch TimingMode = "stopwatch"
	TimingNone      TimingMode = ""
)

// Valid reports whether the timing mode is supported. The empty string means untimed.
func (t TimingMode) Valid() bool {
	switch t {
	case TimingTimed, TimingStopwatch, TimingNone:
		return true
	}
	return false
}

// Question kinds. Anything else is treated as short answer.
const (
	KindMultipleChoice = "multiple_choice"
	KindTrueFalse      = "true_false"
)

// OptionList is an ordered list of answer options. Upstream payloads
// sometimes carry it as a JSON-encoded string instead of an array, so
// unmarshaling is defensive: an unparseable value yields an empty list.
type OptionList []string

func (o *OptionList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*o = direct
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		var nested []string
		if err := json.Unmarshal([]byte(encoded), &nested); err == nil {
			*o = nested
			return nil
		}
	}
	*o = nil
	return nil
}

// Question is a single assessment item. Immutable once a session starts.
type Question struct {
	ID          string     `json:"id"`
	Prompt      string     `json:"question"`
	Kind        string     `json:"question_type"`
	Options     OptionList `json:"options"`
	Answer      string     `json:"correct_answer"`
	Explanation string     `json:"explanation,omitempty"`
	Topic       string     `json:"topic,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
}

// QuizConfig is the single-use session payload produced by the setup flow.
type QuizConfig struct {
	Questions []Question `json:"questions"`
	Mode      QuizMode   `json:"mode"`
	Timing    TimingMode `json:"timing"`
	Topic     string     `json:"topic"`
}

// Normalize fills in the defaults the engine relies on: question IDs fall back
// to their decimal index and true/false questions with missing or malformed
// options get the canonical pair.
func (c *QuizConfig) Normalize() {
	for i := range c.Questions {
		q := &c.Questions[i]
		if q.ID == "" {
			q.ID = strconv.Itoa(i)
		}
		if q.Kind == KindTrueFalse && len(q.Options) == 0 {
			q.Options = OptionList{"True", "False"}
		}
	}
}

// Quiz is a stored quiz-bank entry the setup flow resolves configurations from.
type Quiz struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// QuestionResult is one row of a grading breakdown.
type QuestionResult struct {
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

// GradingResult is the authoritative outcome of a session, produced by the
// grading service or recomputed locally when that service is unavailable.
type GradingResult struct {
	TotalQuestions int              `json:"total_questions"`
	CorrectCount   int              `json:"correct_count"`
	Percentage     float64          `json:"percentage"`
	Breakdown      []QuestionResult `json:"results"`
}

// PerformanceAnalysis is the optional second-pass analysis of a grading result.
type PerformanceAnalysis struct {
	AvgTimePerQuestion float64  `json:"avg_time_per_question,omitempty"`
	WeakTopics         []string `json:"weak_topics,omitempty"`
	StrongTopics       []string `json:"strong_topics,omitempty"`
}

// SessionRecord is the archived form of a completed session.
type SessionRecord struct {
	UserID         string        `json:"user_id"`
	Topic          string        `json:"topic"`
	Mode           QuizMode      `json:"mode"`
	Timing         TimingMode    `json:"timing"`
	TotalQuestions int           `json:"total_questions"`
	CorrectCount   int           `json:"correct_count"`
	Percentage     float64       `json:"percentage"`
	ElapsedSeconds int           `json:"elapsed_seconds"`
	Result         GradingResult `json:"result"`
	CreatedAt      time.Time     `json:"created_at"`
}
