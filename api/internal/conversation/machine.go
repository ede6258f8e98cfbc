// Package conversation holds the per-user state machine that gates access
// behind an arithmetic challenge and switches between the menu and the
// submission mode. Rendering of notices is left to the transport layer.
package conversation

import (
	"sync"
	"time"

	"relay-bot/api/internal/command"
)

// Notice is a user-visible reply the transport layer renders.
type Notice int

const (
	NoticeChallengeIntro Notice = iota
	NoticeChallenge
	NoticeWrongAnswer
	NoticePassed
	NoticeDescription
	NoticeInstructions
	NoticeSubmissionMode
	NoticeMainMenu
	NoticeYourID
	NoticeWait
)

// Reply is one notice; Prompt is set for NoticeChallenge.
type Reply struct {
	Notice Notice
	Prompt string
}

// Result is the outcome of one inbound event.
// Forward means the input is a submission payload.
type Result struct {
	Replies []Reply
	Forward bool
	State   State
}

type Admission int

const (
	Admitted Admission = iota
	Throttled
	NoSession
)

// Machine owns the session table. Safe for concurrent use.
type Machine struct {
	mu         sync.Mutex
	sessions   map[int64]*Session
	gate       RateGate
	challenges *ChallengeEngine
}

func NewMachine(gate RateGate, challenges *ChallengeEngine) *Machine {
	if challenges == nil {
		challenges = NewChallengeEngine(nil)
	}
	return &Machine{
		sessions:   make(map[int64]*Session),
		gate:       gate,
		challenges: challenges,
	}
}

// Handle applies cmd to the user's session.
func (m *Machine) Handle(userID int64, cmd command.Command) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || cmd.Kind == command.Start {
		s = newSession()
		m.sessions[userID] = s
		res := Result{Replies: []Reply{{Notice: NoticeChallengeIntro}}}
		res.Replies = append(res.Replies, m.issue(s))
		res.State = s.State()
		return res
	}

	var res Result
	switch s.State() {
	case StateChallenge:
		res.Replies = m.handleChallenge(s, cmd)
	case StateMenu:
		res.Replies = m.handleMenu(s, cmd)
	case StateSubmission:
		res.Replies, res.Forward = m.handleSubmission(s, cmd)
	}
	res.State = s.State()
	return res
}

func (m *Machine) handleChallenge(s *Session, cmd command.Command) []Reply {
	if cmd.Kind == command.NewChallenge {
		return []Reply{m.issue(s)}
	}
	if m.challenges.Verify(s.PendingAnswer, cmd.Text) {
		s.Verified = true
		s.PendingAnswer = NoAnswer
		return []Reply{{Notice: NoticePassed}, {Notice: NoticeDescription}}
	}
	// старый ответ больше не принимается
	return []Reply{{Notice: NoticeWrongAnswer}, m.issue(s)}
}

func (m *Machine) handleMenu(s *Session, cmd command.Command) []Reply {
	switch cmd.Kind {
	case command.Instructions:
		return []Reply{{Notice: NoticeInstructions}}
	case command.SendMessage:
		s.SubmissionMode = true
		return []Reply{{Notice: NoticeSubmissionMode}}
	case command.GetID:
		return []Reply{{Notice: NoticeYourID}}
	default:
		return []Reply{{Notice: NoticeMainMenu}}
	}
}

func (m *Machine) handleSubmission(s *Session, cmd command.Command) ([]Reply, bool) {
	switch cmd.Kind {
	case command.Payload:
		return nil, true
	case command.Back:
		s.SubmissionMode = false
		return []Reply{{Notice: NoticeMainMenu}}, false
	case command.Instructions:
		return []Reply{{Notice: NoticeInstructions}}, false
	case command.GetID:
		return []Reply{{Notice: NoticeYourID}}, false
	default:
		return []Reply{{Notice: NoticeSubmissionMode}}, false
	}
}

func (m *Machine) issue(s *Session) Reply {
	c := m.challenges.Issue()
	s.PendingAnswer = c.Answer()
	return Reply{Notice: NoticeChallenge, Prompt: c.Prompt()}
}

// Admit runs the rate gate for a submission and stamps LastAcceptedAt
// only when it passes. Unknown or unverified users get NoSession.
func (m *Machine) Admit(userID int64, now time.Time) Admission {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || !s.Verified {
		return NoSession
	}
	if !m.gate.Allow(*s, now) {
		return Throttled
	}
	s.LastAcceptedAt = now
	return Admitted
}

// Session returns a copy of the user's session.
func (m *Machine) Session(userID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Clear drops every session and returns how many were removed.
func (m *Machine) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.sessions)
	m.sessions = make(map[int64]*Session)
	return n
}

func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
