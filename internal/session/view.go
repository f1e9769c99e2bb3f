package session

import "cerbyl-session-service/internal/domain"

// Progress marker statuses for the per-question dot strip.
const (
	MarkCurrent         = "current"
	MarkAnswered        = "answered"
	MarkAnsweredCorrect = "answered-correct"
	MarkAnsweredWrong   = "answered-incorrect"
	MarkUpcoming        = "upcoming"
)

// View is the renderable snapshot of an in-play session.
type View struct {
	Phase     string            `json:"phase"`
	Mode      domain.QuizMode   `json:"mode"`
	Timing    domain.TimingMode `json:"timing"`
	Topic     string            `json:"topic"`
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	Question  QuestionView      `json:"question"`
	Selected  int               `json:"selected"`
	Score     int               `json:"score"`
	Remaining int               `json:"remaining"`
	Elapsed   int               `json:"elapsed"`
	Progress  []string          `json:"progress"`
	CanSubmit bool              `json:"can_submit"`
	CanJump   bool              `json:"can_jump"`
	Feedback  *Feedback         `json:"feedback,omitempty"`
}

// QuestionView is the displayable part of the active question. The canonical
// answer and explanation are deliberately absent until the session completes.
type QuestionView struct {
	Prompt   string   `json:"prompt"`
	Kind     string   `json:"kind"`
	Options  []string `json:"options"`
	Disabled bool     `json:"disabled"`
}

// View renders the current session state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.cfg.Questions[e.index]
	v := View{
		Phase:     e.phase.String(),
		Mode:      e.cfg.Mode,
		Timing:    e.cfg.Timing,
		Topic:     e.cfg.Topic,
		Index:     e.index,
		Total:     len(e.cfg.Questions),
		Selected:  e.selected,
		Score:     e.score,
		Remaining: e.remaining,
		Elapsed:   e.elapsed,
		Progress:  e.progressLocked(),
		CanSubmit: e.cfg.Mode == domain.ModeStandard && len(e.answers) > 0,
		CanJump:   e.cfg.Mode == domain.ModeStandard,
		Feedback:  e.feedback,
		Question: QuestionView{
			Prompt:   q.Prompt,
			Kind:     q.Kind,
			Options:  q.Options,
			Disabled: e.feedback != nil,
		},
	}
	return v
}

func (e *Engine) progressLocked() []string {
	marks := make([]string, len(e.cfg.Questions))
	for i, q := range e.cfg.Questions {
		switch value, answered := e.answers[q.ID]; {
		case i == e.index:
			marks[i] = MarkCurrent
		case !answered:
			marks[i] = MarkUpcoming
		case e.cfg.Mode == domain.ModeStandard:
			// Standard mode shows no correctness before reconciliation.
			marks[i] = MarkAnswered
		case Match(value, q.Answer):
			marks[i] = MarkAnsweredCorrect
		default:
			marks[i] = MarkAnsweredWrong
		}
	}
	return marks
}

// ResultRow pairs one question with everything the complete view renders for
// it: the options, which one was canonically correct, which one was picked,
// and the explanation when the question was missed.
type ResultRow struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	PickedIndex  int      `json:"picked_index"`
	UserAnswer   string   `json:"user_answer"`
	Correct      bool     `json:"correct"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Outcome is the terminal result view.
type Outcome struct {
	Result         domain.GradingResult        `json:"result"`
	Analysis       *domain.PerformanceAnalysis `json:"analysis,omitempty"`
	ElapsedSeconds int                         `json:"elapsed_seconds"`
	Rows           []ResultRow                 `json:"rows"`
}

// Outcome renders the complete view. It returns ok=false before the session
// has finished reconciliation.
func (e *Engine) Outcome() (Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseComplete {
		return Outcome{}, false
	}

	rows := make([]ResultRow, len(e.cfg.Questions))
	for i, q := range e.cfg.Questions {
		value := e.answers[q.ID]
		correct := false
		if i < len(e.result.Breakdown) {
			correct = e.result.Breakdown[i].IsCorrect
		} else {
			correct = Match(value, q.Answer)
		}
		row := ResultRow{
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: DecodeAnswer(q, q.Answer),
			PickedIndex:  DecodeAnswer(q, value),
			UserAnswer:   value,
			Correct:      correct,
		}
		if !correct {
			row.Explanation = q.Explanation
		}
		rows[i] = row
	}
	return Outcome{
		Result:         e.result,
		Analysis:       e.analysis,
		ElapsedSeconds: e.elapsedWallLocked(),
		Rows:           rows,
	}, true
}
