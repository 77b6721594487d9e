package httpserver

import (
	"mime"
	"strings"
	"testing"
)

func TestContentDispositionEscapesFileName(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
	}{
		{"plain", "sheet-7-2024-original.txt"},
		{"slash in protocol number", "sheet-7/2024-results.txt"},
		{"embedded quote", `sheet-7"2024-original.txt`},
		{"header injection attempt", "sheet-7\r\nSet-Cookie: x=1-original.txt"},
		{"cyrillic number", "sheet-7-бюлетень.txt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			header := contentDisposition(tc.fileName)
			if strings.ContainsAny(header, "\r\n") {
				t.Fatalf("header carries control characters: %q", header)
			}
			disposition, params, err := mime.ParseMediaType(header)
			if err != nil {
				t.Fatalf("header does not parse: %q: %v", header, err)
			}
			if disposition != "attachment" {
				t.Fatalf("disposition = %q, want attachment", disposition)
			}
			if params["filename"] != tc.fileName {
				t.Fatalf("filename round-trips as %q, want %q", params["filename"], tc.fileName)
			}
		})
	}
}
