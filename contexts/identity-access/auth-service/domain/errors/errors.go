package errors

import "errors"

var (
	// ErrOtpRejected covers every OTP verification failure: unknown phone,
	// wrong code, expired challenge, exhausted attempts. One sentinel so
	// responses leak nothing about which case occurred.
	ErrOtpRejected = errors.New("otp verification rejected")

	// ErrTokenRejected covers every public-token failure the same way.
	ErrTokenRejected = errors.New("token rejected")

	// ErrSessionRejected is returned for missing or expired sessions.
	ErrSessionRejected = errors.New("session rejected")

	// ErrChallengeNotFound is internal to the repositories; the use case
	// maps it onto ErrOtpRejected before it leaves the module.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrSessionNotFound is internal to the repositories.
	ErrSessionNotFound = errors.New("session not found")
)
