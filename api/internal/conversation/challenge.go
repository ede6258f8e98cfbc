package conversation

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
)

const maxOperand = 10

type Challenge struct {
	A, B int
}

func (c Challenge) Prompt() string { return fmt.Sprintf("%d + %d = ?", c.A, c.B) }
func (c Challenge) Answer() int    { return c.A + c.B }

// ChallengeEngine issues arithmetic challenges.
type ChallengeEngine struct {
	mu   sync.Mutex
	intn func(n int) int
}

// NewChallengeEngine uses intn as the random source; nil means math/rand.
func NewChallengeEngine(intn func(n int) int) *ChallengeEngine {
	if intn == nil {
		intn = rand.Intn
	}
	return &ChallengeEngine{intn: intn}
}

func (e *ChallengeEngine) Issue() Challenge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Challenge{A: e.intn(maxOperand + 1), B: e.intn(maxOperand + 1)}
}

// Verify requires the literal decimal form of expected.
func (e *ChallengeEngine) Verify(expected int, input string) bool {
	if expected == NoAnswer {
		return false
	}
	return input == strconv.Itoa(expected)
}
