package app

import (
	"context"
	"sync"
	"time"

	"cerbyl-session-service/internal/domain"
	"cerbyl-session-service/internal/grading"
	"cerbyl-session-service/internal/session"
)

// ConfigRepository is the single-use slot holding a prepared quiz
// configuration between the setup flow and the session loader. Take removes
// the configuration as it reads it, so a second load cannot replay the quiz.
type ConfigRepository interface {
	Put(ctx context.Context, userID string, cfg domain.QuizConfig) error
	Take(ctx context.Context, userID string) (domain.QuizConfig, error)
}

// QuizRepository loads quiz-bank content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultArchive persists completed sessions.
type ResultArchive interface {
	Save(ctx context.Context, rec domain.SessionRecord) error
}

// Grader is the remote grading collaborator plus its optional analysis pass.
type Grader interface {
	Grade(ctx context.Context, req grading.GradeRequest) (domain.GradingResult, error)
	Analyze(ctx context.Context, req grading.AnalysisRequest) (domain.PerformanceAnalysis, error)
}

// SessionService owns the active sessions and the use cases around them:
// preparing a configuration, loading it into an engine, and reconciling the
// outcome when the engine submits.
type SessionService struct {
	configs ConfigRepository
	quizzes QuizRepository
	grader  Grader
	archive ResultArchive
	now     func() time.Time

	mu     sync.Mutex
	active map[string]*ActiveSession
}

func NewSessionService(configs ConfigRepository, quizzes QuizRepository, grader Grader, archive ResultArchive) *SessionService {
	return &SessionService{
		configs: configs,
		quizzes: quizzes,
		grader:  grader,
		archive: archive,
		now:     time.Now,
		active:  make(map[string]*ActiveSession),
	}
}

// SetupRequest prepares a session configuration. Questions may be supplied
// inline or resolved from the quiz bank by ID.
type SetupRequest struct {
	UserID    string            `json:"user_id"`
	QuizID    string            `json:"quiz_id,omitempty"`
	Topic     string            `json:"topic,omitempty"`
	Mode      domain.QuizMode   `json:"mode"`
	Timing    domain.TimingMode `json:"timing,omitempty"`
	Questions []domain.Question `json:"questions,omitempty"`
}

// Setup validates the request and writes the single-use configuration slot.
func (s *SessionService) Setup(ctx context.Context, req SetupRequest) error {
	if !req.Mode.Valid() {
		return domain.ErrInvalidMode
	}
	if !req.Timing.Valid() {
		return domain.ErrInvalidTiming
	}

	questions := req.Questions
	topic := req.Topic
	if len(questions) == 0 && req.QuizID != "" {
		if s.quizzes == nil {
			return domain.ErrQuizNotFound
		}
		quiz, err := s.quizzes.GetQuiz(ctx, req.QuizID)
		if err != nil {
			return err
		}
		questions = quiz.Questions
		if topic == "" {
			topic = quiz.Topic
		}
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}

	cfg := domain.QuizConfig{
		Questions: questions,
		Mode:      req.Mode,
		Timing:    req.Timing,
		Topic:     topic,
	}
	cfg.Normalize()
	return s.configs.Put(ctx, req.UserID, cfg)
}

// Start consumes the user's configuration slot and brings a session into
// play. The slot is gone after this call succeeds or fails on parse, so a
// refresh mid-quiz cannot resurrect the same quiz.
func (s *SessionService) Start(ctx context.Context, userID string) (*ActiveSession, error) {
	s.mu.Lock()
	if _, ok := s.active[userID]; ok {
		s.mu.Unlock()
		return nil, domain.ErrSessionActive
	}
	s.mu.Unlock()

	cfg, err := s.configs.Take(ctx, userID)
	if err != nil {
		return nil, err
	}

	engine := session.NewWithClock(cfg, userID, s.now)
	engine.Begin()
	active := newActiveSession(s, engine)

	s.mu.Lock()
	if _, ok := s.active[userID]; ok {
		s.mu.Unlock()
		active.stop()
		return nil, domain.ErrSessionActive
	}
	s.active[userID] = active
	s.mu.Unlock()

	if engine.Timing() != domain.TimingNone {
		go active.runClock()
	}
	return active, nil
}

// Get returns the user's active session, if any.
func (s *SessionService) Get(userID string) (*ActiveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.active[userID]
	return active, ok
}

// Close drops a session, stopping its clock. A reconciliation already in
// flight keeps running and still archives its result; only the session's
// updates stop being delivered.
func (s *SessionService) Close(userID string) {
	s.mu.Lock()
	active, ok := s.active[userID]
	if ok {
		delete(s.active, userID)
	}
	s.mu.Unlock()
	if ok {
		active.stop()
	}
}

func (s *SessionService) remove(userID string, active *ActiveSession) {
	s.mu.Lock()
	if s.active[userID] == active {
		delete(s.active, userID)
	}
	s.mu.Unlock()
}
