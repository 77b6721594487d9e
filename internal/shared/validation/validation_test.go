package validation

import "testing"

func TestCollectorAggregatesAllViolations(t *testing.T) {
	var c Collector
	c.Add("number", "must not be empty")
	c.CheckLen("text", "short", 10, 2000)
	err := c.Err()
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	verr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	if len(verr.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(verr.Violations))
	}
	if verr.Violations[0].Field != "number" || verr.Violations[1].Field != "text" {
		t.Fatalf("unexpected violation fields: %+v", verr.Violations)
	}
}

func TestCollectorNoViolationsReturnsNil(t *testing.T) {
	var c Collector
	c.CheckLen("name", "Perfectly fine value", 3, 200)
	if err := c.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"+380501234567", "+380501234567", true},
		{"  +380501234567  ", "+380501234567", true},
		{"+38050123456", "", false},
		{"+3805012345678", "", false},
		{"380501234567", "", false},
		{"+38050123456a", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		phone, valid := NormalizePhone(tc.raw)
		if valid != tc.valid {
			t.Fatalf("NormalizePhone(%q) valid = %v, want %v", tc.raw, valid, tc.valid)
		}
		if valid && phone != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.raw, phone, tc.want)
		}
	}
}

func TestIsOtpCode(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	invalid := []string{"", "123", "12345", "12a4", " 1234"}
	for _, code := range valid {
		if !IsOtpCode(code) {
			t.Fatalf("expected %q to be a valid code", code)
		}
	}
	for _, code := range invalid {
		if IsOtpCode(code) {
			t.Fatalf("expected %q to be rejected", code)
		}
	}
}

func TestIsEdrpou(t *testing.T) {
	if !IsEdrpou("12345678") {
		t.Fatalf("expected 8-digit code to pass")
	}
	for _, value := range []string{"1234567", "123456789", "1234567a", ""} {
		if IsEdrpou(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail("organizer@example.com") {
		t.Fatalf("expected plain address to pass")
	}
	for _, value := range []string{"no-at-sign", "two@@example.com", ""} {
		if IsEmail(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}
