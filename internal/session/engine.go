package session

import (
	"sync"
	"time"

	"cerbyl-session-service/internal/domain"
)

// Phase is the session lifecycle. It only moves forward, except that
// InProgress is re-entered as the user navigates between questions.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseInProgress
	PhaseGrading
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseInProgress:
		return "in_progress"
	case PhaseGrading:
		return "grading"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

// SecondsPerQuestion sets the countdown budget in timed sessions.
const SecondsPerQuestion = 60

// FeedbackDelay is how long the instant-feedback indicator stays on screen
// before the engine auto-advances.
const FeedbackDelay = 1500 * time.Millisecond

// Feedback is the inline correct/incorrect indicator shown in
// sequential-instant mode. While it is set, option input is disabled.
type Feedback struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
}

const noSelection = -1

// Engine is the exam state machine: question progression, answer capture,
// per-mode scoring, and the session clock. All methods are safe for the
// caller's ticker and event goroutines; every transition runs under one lock.
type Engine struct {
	mu sync.Mutex

	cfg    domain.QuizConfig
	userID string

	phase    Phase
	index    int
	answers  map[string]string
	score    int
	selected int
	feedback *Feedback

	remaining   int
	elapsed     int
	startedAt   time.Time
	submittedAt time.Time
	now         func() time.Time

	result   domain.GradingResult
	analysis *domain.PerformanceAnalysis
}

// New builds an engine from a configuration: index 0, empty answer map,
// score 0. The engine sits in the loading phase until Begin is called.
func New(cfg domain.QuizConfig, userID string) *Engine {
	return NewWithClock(cfg, userID, time.Now)
}

// NewWithClock allows deterministic wall-clock timestamps in tests.
func NewWithClock(cfg domain.QuizConfig, userID string, now func() time.Time) *Engine {
	cfg.Normalize()
	return &Engine{
		cfg:      cfg,
		userID:   userID,
		phase:    PhaseLoading,
		answers:  make(map[string]string),
		selected: noSelection,
		now:      now,
	}
}

// Begin moves a loaded session into play, starting the wall clock and
// initializing the countdown or stopwatch per the timing mode. A no-op once
// the session has left the loading phase.
func (e *Engine) Begin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseLoading {
		return
	}
	e.startedAt = e.now()
	if e.cfg.Timing == domain.TimingTimed {
		e.remaining = SecondsPerQuestion * len(e.cfg.Questions)
	}
	e.phase = PhaseInProgress
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// UserID returns the identifier the session was started for.
func (e *Engine) UserID() string {
	return e.userID
}

// Mode returns the quiz mode the session runs under.
func (e *Engine) Mode() domain.QuizMode {
	return e.cfg.Mode
}

// Timing returns the session's timing mode.
func (e *Engine) Timing() domain.TimingMode {
	return e.cfg.Timing
}

// Questions returns the immutable question list.
func (e *Engine) Questions() []domain.Question {
	return e.cfg.Questions
}

// Answers returns a copy of the recorded answer map.
func (e *Engine) Answers() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// Score returns the running local score. In standard mode it stays zero until
// reconciliation because scoring is deferred to the grading step.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// ElapsedWall reports whole seconds since the session started, independent of
// the countdown or stopwatch display. Frozen at the moment of submission;
// this is what reconciliation reports to the grading service.
func (e *Engine) ElapsedWall() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedWallLocked()
}

func (e *Engine) elapsedWallLocked() int {
	end := e.submittedAt
	if end.IsZero() {
		end = e.now()
	}
	return int(end.Sub(e.startedAt) / time.Second)
}

// Select handles an option tap on the current question.
//
// In standard and sequential modes it only moves the transient highlight; the
// answer commits on navigation. In sequential-instant mode it commits and
// scores immediately and raises the feedback indicator; further taps are
// ignored until the feedback window ends. Feedback is non-nil only for the
// tap that committed, so callers can key the advance timer off it.
func (e *Engine) Select(optionIndex int) (*Feedback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return nil, domain.ErrSessionFinished
	}
	q := e.cfg.Questions[e.index]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return nil, domain.ErrOptionOutOfRange
	}
	if e.cfg.Mode != domain.ModeSequentialInstant {
		e.selected = optionIndex
		return nil, nil
	}
	if e.feedback != nil {
		// Options are disabled while feedback is showing.
		return nil, nil
	}
	e.selected = optionIndex
	value := EncodeAnswer(q, optionIndex)
	e.commitLocked(q, value, true)
	e.feedback = &Feedback{Correct: Match(value, q.Answer), Answer: value}
	return e.feedback, nil
}

// AdvanceAfterFeedback ends the instant-feedback window: it clears the
// highlight and the indicator, then moves to the next question. It reports
// true when this was the last question and the caller must submit.
func (e *Engine) AdvanceAfterFeedback() (submit bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress || e.feedback == nil {
		return false
	}
	e.feedback = nil
	e.selected = noSelection
	if e.index >= len(e.cfg.Questions)-1 {
		return true
	}
	e.index++
	return false
}

// Next advances to the following question.
//
// Standard mode commits the highlight (without scoring) and moves freely.
// Sequential mode requires a highlight, commits and scores it, and reports
// submit=true instead of advancing on the last question.
func (e *Engine) Next() (submit bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return false, domain.ErrSessionFinished
	}
	switch e.cfg.Mode {
	case domain.ModeStandard:
		e.commitHighlightLocked()
		if e.index < len(e.cfg.Questions)-1 {
			e.index++
		}
		e.restoreHighlightLocked()
		return false, nil
	case domain.ModeSequential:
		if e.selected == noSelection {
			return false, domain.ErrNoSelection
		}
		q := e.cfg.Questions[e.index]
		e.commitLocked(q, EncodeAnswer(q, e.selected), true)
		e.selected = noSelection
		if e.index >= len(e.cfg.Questions)-1 {
			return true, nil
		}
		e.index++
		return false, nil
	default:
		return false, domain.ErrManualNavigation
	}
}

// Prev moves to the previous question. Standard mode commits the highlight
// first and restores the earlier answer's highlight; sequential mode only
// clears the highlight and never un-commits a recorded answer.
func (e *Engine) Prev() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return domain.ErrSessionFinished
	}
	switch e.cfg.Mode {
	case domain.ModeStandard:
		e.commitHighlightLocked()
		if e.index > 0 {
			e.index--
		}
		e.restoreHighlightLocked()
		return nil
	case domain.ModeSequential:
		e.selected = noSelection
		if e.index > 0 {
			e.index--
		}
		return nil
	default:
		return domain.ErrManualNavigation
	}
}

// Jump moves directly to a question index. Only standard mode allows it;
// missing answers never block the move and the score is untouched.
func (e *Engine) Jump(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return domain.ErrSessionFinished
	}
	if e.cfg.Mode != domain.ModeStandard {
		return domain.ErrJumpNotAllowed
	}
	if index < 0 || index >= len(e.cfg.Questions) {
		return domain.ErrQuestionOutOfRange
	}
	e.commitHighlightLocked()
	e.index = index
	e.restoreHighlightLocked()
	return nil
}

// Submit is the explicit submission action. Standard mode commits any pending
// highlight first and requires at least one recorded answer. Calling it after
// the phase has left play is rejected, which makes submission idempotent.
func (e *Engine) Submit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return domain.ErrSessionFinished
	}
	if e.cfg.Mode == domain.ModeStandard {
		e.commitHighlightLocked()
		if len(e.answers) == 0 {
			return domain.ErrNothingAnswered
		}
	}
	e.submittedAt = e.now()
	e.phase = PhaseGrading
	return nil
}

// ForceSubmit is the timer-expiry path: it submits regardless of how many
// answers were recorded. A no-op once the phase has left play, so a late tick
// cannot re-trigger grading.
func (e *Engine) ForceSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return false
	}
	if e.cfg.Mode == domain.ModeStandard {
		e.commitHighlightLocked()
	}
	e.submittedAt = e.now()
	e.phase = PhaseGrading
	return true
}

// Tick advances the session clock by one second. It reports the new clock
// reading, whether a timed session just hit zero (the caller must force
// submission), and whether the clock is still running at all.
func (e *Engine) Tick() (remaining, elapsed int, expired, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress {
		return e.remaining, e.elapsed, false, false
	}
	switch e.cfg.Timing {
	case domain.TimingTimed:
		if e.remaining > 0 {
			e.remaining--
		}
		return e.remaining, e.elapsed, e.remaining == 0, true
	case domain.TimingStopwatch:
		e.elapsed++
		return e.remaining, e.elapsed, false, true
	default:
		return e.remaining, e.elapsed, false, false
	}
}

// Complete records the reconciled outcome and moves to the terminal phase.
func (e *Engine) Complete(result domain.GradingResult, analysis *domain.PerformanceAnalysis) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseGrading {
		return
	}
	e.score = result.CorrectCount
	e.result = result
	e.analysis = analysis
	e.phase = PhaseComplete
}

// commitLocked writes an answer into the map, keeping the running score equal
// to the number of recorded answers that matched at the time they were
// recorded. Overwriting an entry first backs out its old contribution.
func (e *Engine) commitLocked(q domain.Question, value string, scored bool) {
	if scored {
		if old, ok := e.answers[q.ID]; ok && Match(old, q.Answer) {
			e.score--
		}
		if Match(value, q.Answer) {
			e.score++
		}
	}
	e.answers[q.ID] = value
}

// commitHighlightLocked commits the transient highlight without scoring.
// Used by standard-mode navigation and submission.
func (e *Engine) commitHighlightLocked() {
	if e.selected == noSelection {
		return
	}
	q := e.cfg.Questions[e.index]
	e.answers[q.ID] = EncodeAnswer(q, e.selected)
	e.selected = noSelection
}

// restoreHighlightLocked re-highlights the previously committed selection for
// the current question, if any.
func (e *Engine) restoreHighlightLocked() {
	q := e.cfg.Questions[e.index]
	if value, ok := e.answers[q.ID]; ok {
		e.selected = DecodeAnswer(q, value)
		return
	}
	e.selected = noSelection
}
