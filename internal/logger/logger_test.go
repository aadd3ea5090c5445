package logger

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"long string cut", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "..."},
		{"multi-byte runes", "héllo wörld", 8, "héllo..."},
		{"cjk", "日本語のテキストです", 6, "日本語..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.input, tc.maxLen)
			if got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8: %q", tc.input, tc.maxLen, got)
			}
		})
	}
}
