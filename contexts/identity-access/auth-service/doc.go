// Package authservice issues the two session kinds the governance surfaces
// rely on: phone-verified organizer sessions minted through a 4-digit OTP
// flow, and anonymous voter sessions resolved from public sheet tokens.
//
// Challenges are stored as salted digests with a hard attempt budget; the
// counter is consumed before the code comparison so parallel guesses cannot
// exceed it. All rejection paths collapse into per-flow sentinels so
// responses leak nothing about which credential existed.
package authservice
