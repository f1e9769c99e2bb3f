package session

import (
	"strconv"
	"strings"

	"cerbyl-session-service/internal/domain"
)

// EncodeAnswer converts a selected option index into the stored answer value:
// the option letter for multiple choice, the literal "true"/"false" for
// true/false (index 0 is true), and the decimal index for anything else.
func EncodeAnswer(q domain.Question, optionIndex int) string {
	switch q.Kind {
	case domain.KindMultipleChoice:
		return string(rune('A' + optionIndex))
	case domain.KindTrueFalse:
		if optionIndex == 0 {
			return "true"
		}
		return "false"
	default:
		return strconv.Itoa(optionIndex)
	}
}

// DecodeAnswer maps a stored answer value back to its option index, or -1 when
// the value does not resolve. Needed to restore a highlight when a question is
// revisited in standard mode and to mark the picked option in the result view.
func DecodeAnswer(q domain.Question, value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return -1
	}
	switch q.Kind {
	case domain.KindMultipleChoice:
		r := rune(strings.ToUpper(value)[0])
		idx := int(r - 'A')
		if idx < 0 || idx >= len(q.Options) {
			return -1
		}
		return idx
	case domain.KindTrueFalse:
		switch strings.ToLower(value) {
		case "true":
			return 0
		case "false":
			return 1
		}
		return -1
	default:
		idx, err := strconv.Atoi(value)
		if err != nil || idx < 0 || idx >= len(q.Options) {
			return -1
		}
		return idx
	}
}

// Match is the single correctness rule used everywhere: live scoring in the
// sequential modes, progress markers, and the local grading fallback. Both
// sides are trimmed and lowercased; a submission matches the canonical answer
// on full equality or on equality with its first character, which tolerates
// single-letter submissions against answers like "B) Paris".
func Match(submitted, canonical string) bool {
	s := strings.ToLower(strings.TrimSpace(submitted))
	c := strings.ToLower(strings.TrimSpace(canonical))
	if s == "" || c == "" {
		return false
	}
	if s == c {
		return true
	}
	return s == string([]rune(c)[0])
}
