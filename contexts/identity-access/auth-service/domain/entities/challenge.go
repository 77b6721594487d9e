package entities

import "time"

// OtpChallenge is one live phone verification attempt window. Keyed by
// phone; a new request supersedes the previous challenge.
type OtpChallenge struct {
	ChallengeID  string
	Phone        string
	CodeHash     string
	ExpiresAt    time.Time
	AttemptsLeft int
	CreatedAt    time.Time
}

// Live reports whether the challenge can still be answered.
func (c OtpChallenge) Live(now time.Time) bool {
	return c.AttemptsLeft > 0 && now.Before(c.ExpiresAt)
}
