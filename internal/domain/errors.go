package domain

import "errors"

var (
	// ErrNoConfiguration is returned when the single-use config slot is empty;
	// the caller must send the user back through quiz setup.
	ErrNoConfiguration = errors.New("no quiz configuration found")
	// ErrSessionActive is returned when a user already has a running session.
	ErrSessionActive = errors.New("session already active")
	// ErrSessionFinished is returned for actions after the session left play.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoSelection is returned when advancing in sequential mode without a highlighted option.
	ErrNoSelection = errors.New("no option selected")
	// ErrOptionOutOfRange indicates a selected option index is invalid for the question.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrQuestionOutOfRange indicates a jump target outside the question list.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrJumpNotAllowed is returned for direct jumps outside standard mode.
	ErrJumpNotAllowed = errors.New("direct navigation not allowed in this mode")
	// ErrManualNavigation is returned for next/previous in instant-feedback mode.
	ErrManualNavigation = errors.New("manual navigation not available in this mode")
	// ErrNothingAnswered gates explicit submission on at least one recorded answer.
	ErrNothingAnswered = errors.New("no answers recorded")
	// ErrInvalidMode rejects setup requests with an unknown quiz mode.
	ErrInvalidMode = errors.New("invalid quiz mode")
	// ErrInvalidTiming rejects setup requests with an unknown timing mode.
	ErrInvalidTiming = errors.New("invalid timing mode")
	// ErrNoQuestions rejects setup requests with an empty question list.
	ErrNoQuestions = errors.New("quiz has no questions")
)
