package app

import (
	"context"
	"log"
	"sync"
	"time"

	"cerbyl-session-service/internal/domain"
	"cerbyl-session-service/internal/grading"
	"cerbyl-session-service/internal/session"
)

// Update kinds pushed to subscribers.
const (
	UpdateState  = "state"
	UpdateResult = "result"
)

// Update is an asynchronous push from the session: clock ticks, instant-mode
// auto-advances, and the terminal result.
type Update struct {
	Kind    string
	View    *session.View
	Outcome *session.Outcome
}

// ActiveSession wraps an engine with the pieces that need real time: the
// one-second clock, the instant-feedback auto-advance timer, and the
// reconciliation flow. Transport handlers talk to sessions through it.
type ActiveSession struct {
	svc    *SessionService
	engine *session.Engine

	updates chan Update
	done    chan struct{}
	stopped sync.Once
}

func newActiveSession(svc *SessionService, engine *session.Engine) *ActiveSession {
	return &ActiveSession{
		svc:     svc,
		engine:  engine,
		updates: make(chan Update, 16),
		done:    make(chan struct{}),
	}
}

// Updates is the stream of asynchronous session pushes.
func (a *ActiveSession) Updates() <-chan Update {
	return a.updates
}

// View renders the current session state.
func (a *ActiveSession) View() session.View {
	return a.engine.View()
}

// Outcome returns the terminal result view once reconciliation has finished.
func (a *ActiveSession) Outcome() (session.Outcome, bool) {
	return a.engine.Outcome()
}

// Select forwards an option tap. In sequential-instant mode a commit arms the
// auto-advance timer for when the feedback window closes.
func (a *ActiveSession) Select(optionIndex int) (session.View, error) {
	feedback, err := a.engine.Select(optionIndex)
	if err != nil {
		return session.View{}, err
	}
	if feedback != nil {
		time.AfterFunc(session.FeedbackDelay, a.advanceAfterFeedback)
	}
	return a.engine.View(), nil
}

// Next advances the session; on the last question in sequential mode it
// triggers submission instead.
func (a *ActiveSession) Next() (session.View, error) {
	submit, err := a.engine.Next()
	if err != nil {
		return session.View{}, err
	}
	if submit {
		if err := a.engine.Submit(); err == nil {
			a.beginReconcile()
		}
	}
	return a.engine.View(), nil
}

// Prev moves back one question.
func (a *ActiveSession) Prev() (session.View, error) {
	if err := a.engine.Prev(); err != nil {
		return session.View{}, err
	}
	return a.engine.View(), nil
}

// Jump moves directly to a question index (standard mode only).
func (a *ActiveSession) Jump(index int) (session.View, error) {
	if err := a.engine.Jump(index); err != nil {
		return session.View{}, err
	}
	return a.engine.View(), nil
}

// Submit is the explicit submission action.
func (a *ActiveSession) Submit() (session.View, error) {
	if err := a.engine.Submit(); err != nil {
		return session.View{}, err
	}
	a.beginReconcile()
	return a.engine.View(), nil
}

func (a *ActiveSession) advanceAfterFeedback() {
	submit := a.engine.AdvanceAfterFeedback()
	if !submit {
		a.push(Update{Kind: UpdateState, View: viewPtr(a.engine.View())})
		return
	}
	if err := a.engine.Submit(); err != nil {
		// Timer expiry already forced submission; nothing left to do.
		return
	}
	a.push(Update{Kind: UpdateState, View: viewPtr(a.engine.View())})
	a.beginReconcile()
}

// runClock drives the one-second tick while the session is in play. A timed
// session hitting zero forces submission exactly once.
func (a *ActiveSession) runClock() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _, expired, active := a.engine.Tick()
			if !active {
				return
			}
			a.push(Update{Kind: UpdateState, View: viewPtr(a.engine.View())})
			if expired {
				if a.engine.ForceSubmit() {
					a.beginReconcile()
				}
				return
			}
		case <-a.done:
			return
		}
	}
}

func (a *ActiveSession) beginReconcile() {
	go a.reconcile(context.Background())
}

// reconcile submits the frozen answer map for authoritative grading, falling
// back to the local grader when the service is unreachable, then fetches the
// optional analysis, archives the record, and pushes the result view.
func (a *ActiveSession) reconcile(ctx context.Context) {
	userID := a.engine.UserID()
	questions := a.engine.Questions()
	answers := a.engine.Answers()
	elapsed := a.engine.ElapsedWall()

	result, err := a.svc.grader.Grade(ctx, grading.GradeRequest{
		UserID:         userID,
		Questions:      questions,
		Answers:        answers,
		ElapsedSeconds: elapsed,
	})
	var analysis *domain.PerformanceAnalysis
	if err != nil {
		log.Printf("grading service unavailable, scoring locally: %v", err)
		result = grading.GradeLocally(questions, answers)
	} else if an, err := a.svc.grader.Analyze(ctx, grading.AnalysisRequest{
		UserID:         userID,
		Results:        result.Breakdown,
		ElapsedSeconds: elapsed,
	}); err == nil {
		analysis = &an
	} else {
		log.Printf("analysis unavailable: %v", err)
	}

	a.engine.Complete(result, analysis)

	if a.svc.archive != nil {
		rec := domain.SessionRecord{
			UserID:         userID,
			Topic:          a.engine.View().Topic,
			Mode:           a.engine.Mode(),
			Timing:         a.engine.Timing(),
			TotalQuestions: result.TotalQuestions,
			CorrectCount:   result.CorrectCount,
			Percentage:     result.Percentage,
			ElapsedSeconds: elapsed,
			Result:         result,
			CreatedAt:      a.svc.now(),
		}
		if err := a.svc.archive.Save(ctx, rec); err != nil {
			log.Printf("archive save failed: %v", err)
		}
	}

	a.svc.remove(userID, a)

	if outcome, ok := a.engine.Outcome(); ok {
		a.push(Update{Kind: UpdateResult, Outcome: &outcome})
	}
}

// push delivers an update without blocking; when the subscriber lags, the
// oldest queued update is dropped in favor of the fresh one.
func (a *ActiveSession) push(u Update) {
	select {
	case a.updates <- u:
	default:
		select {
		case <-a.updates:
		default:
		}
		select {
		case a.updates <- u:
		default:
		}
	}
}

func (a *ActiveSession) stop() {
	a.stopped.Do(func() { close(a.done) })
}

func viewPtr(v session.View) *session.View {
	return &v
}
