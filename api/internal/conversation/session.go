package conversation

import "time"

// NoAnswer is the expected answer before any challenge was issued.
const NoAnswer = -1

type State int

const (
	StateNew State = iota
	StateChallenge
	StateMenu
	StateSubmission
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateChallenge:
		return "challenge"
	case StateMenu:
		return "menu"
	case StateSubmission:
		return "submission"
	default:
		return "unknown"
	}
}

// Session is the per-user conversation record.
type Session struct {
	Verified       bool
	PendingAnswer  int
	SubmissionMode bool
	LastAcceptedAt time.Time
}

func newSession() *Session {
	return &Session{PendingAnswer: NoAnswer}
}

// State derives the machine state from the session flags.
func (s *Session) State() State {
	switch {
	case s == nil:
		return StateNew
	case !s.Verified:
		return StateChallenge
	case s.SubmissionMode:
		return StateSubmission
	default:
		return StateMenu
	}
}
