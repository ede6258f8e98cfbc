package conversation

import "time"

// RateGate allows one accepted submission per Cooldown.
// Allow only checks; stamping is done by Machine.Admit.
type RateGate struct {
	Cooldown time.Duration
}

func (g RateGate) Allow(s Session, now time.Time) bool {
	return now.Sub(s.LastAcceptedAt) >= g.Cooldown
}
