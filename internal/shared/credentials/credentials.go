package credentials

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// OTP policy. Exceeding the attempt budget invalidates the code and forces a
// fresh request.
const (
	OtpCodeLength  = 4
	OtpTTL         = 5 * time.Minute
	OtpMaxAttempts = 3
)

// Public sheet tokens: 48 random bytes, URL-safe base64 without padding.
const (
	publicTokenBytes     = 48
	PublicTokenMinLength = 64
)

var otpCodeSpace = big.NewInt(10000)

// GenerateOtpCode returns a uniformly random 4-digit code, zero-padded.
func GenerateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// HashOtpCode digests phone:code:secret so only the digest is ever persisted.
func HashOtpCode(phone, code, secret string) string {
	sum := sha256.Sum256([]byte(phone + ":" + code + ":" + secret))
	return hex.EncodeToString(sum[:])
}

// GeneratePublicToken returns an opaque bearer token for anonymous sheet
// access.
func GeneratePublicToken() (string, error) {
	b := make([]byte, publicTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate public token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IsValidPublicToken checks token shape only; existence is a storage lookup
// owned by the caller.
func IsValidPublicToken(token string) bool {
	if len(token) < PublicTokenMinLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// HashToken digests a raw token; storage holds digests only, so a leaked
// table does not yield usable tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DigestsEqual compares two hex digests in constant time.
func DigestsEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
