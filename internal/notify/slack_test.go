package notify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncatePreview(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short ascii", "hello", "hello"},
		{"exactly at limit", strings.Repeat("a", 280), strings.Repeat("a", 280)},
		{"over limit ascii", strings.Repeat("a", 300), strings.Repeat("a", 280) + "…"},
		{"over limit multi-byte", strings.Repeat("é", 300), strings.Repeat("é", 280) + "…"},
		{"over limit emoji", strings.Repeat("😀", 300), strings.Repeat("😀", 280) + "…"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncatePreview(tc.in, 280)
			if got != tc.want {
				t.Errorf("truncatePreview = %q, want %q", got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Error("truncated preview is not valid UTF-8")
			}
		})
	}
}
