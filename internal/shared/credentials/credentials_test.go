package credentials

import (
	"strings"
	"testing"
)

func TestGenerateOtpCodeShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOtpCode()
		if err != nil {
			t.Fatalf("generate otp code failed: %v", err)
		}
		if len(code) != OtpCodeLength {
			t.Fatalf("expected %d digits, got %q", OtpCodeLength, code)
		}
		if strings.Trim(code, "0123456789") != "" {
			t.Fatalf("expected digits only, got %q", code)
		}
	}
}

func TestHashOtpCodeDeterministicAndSensitive(t *testing.T) {
	base := HashOtpCode("+380501112233", "1234", "secret")
	if base != HashOtpCode("+380501112233", "1234", "secret") {
		t.Fatalf("expected deterministic digest")
	}
	variants := []string{
		HashOtpCode("+380501112234", "1234", "secret"),
		HashOtpCode("+380501112233", "1235", "secret"),
		HashOtpCode("+380501112233", "1234", "other"),
	}
	for i, digest := range variants {
		if digest == base {
			t.Fatalf("variant %d collided with base digest", i)
		}
	}
}

func TestGeneratePublicTokenUniqueAndValid(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token, err := GeneratePublicToken()
		if err != nil {
			t.Fatalf("generate public token failed: %v", err)
		}
		if !IsValidPublicToken(token) {
			t.Fatalf("generated token failed structural check: %q", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[token] = struct{}{}
	}
}

func TestIsValidPublicTokenRejectsBadShapes(t *testing.T) {
	long := strings.Repeat("a", PublicTokenMinLength)
	cases := []struct {
		token string
		valid bool
	}{
		{"", false},
		{"short", false},
		{strings.Repeat("a", PublicTokenMinLength-1), false},
		{long, true},
		{long + "_-09AZ", true},
		{long[:PublicTokenMinLength-1] + "!", false},
		{long + "=", false},
	}
	for _, tc := range cases {
		if got := IsValidPublicToken(tc.token); got != tc.valid {
			t.Fatalf("IsValidPublicToken(%q) = %v, want %v", tc.token, got, tc.valid)
		}
	}
}

func TestHashTokenHidesRawToken(t *testing.T) {
	token, err := GeneratePublicToken()
	if err != nil {
		t.Fatalf("generate public token failed: %v", err)
	}
	digest := HashToken(token)
	if digest == token {
		t.Fatalf("digest must differ from raw token")
	}
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(digest))
	}
	if !DigestsEqual(digest, HashToken(token)) {
		t.Fatalf("expected stable digest for same token")
	}
}
