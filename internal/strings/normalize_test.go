package strings

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		" \n\t ":             "",
		"topic":              "topic",
		"one   two    three": "one two three",
		"one\n\n two\tthree": "one two three",
	}
	for input, want := range cases {
		if got := NormalizeWhitespace(input); got != want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeLowerTrimSpace(t *testing.T) {
	if got := NormalizeLowerTrimSpace("  In_Progress \n"); got != "in_progress" {
		t.Fatalf("expected in_progress, got %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	cases := map[string]bool{
		"":         true,
		" \t\n ":   true,
		"note":     false,
		"  note  ": false,
	}
	for input, want := range cases {
		if got := IsBlank(input); got != want {
			t.Errorf("IsBlank(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNormalizeNewlines(t *testing.T) {
	if got := NormalizeNewlines("a\r\nb\rc\n"); got != "a\nb\nc\n" {
		t.Fatalf("unexpected newline normalization: %q", got)
	}
	if got := TrimTrailingNewlines("body\r\n\n"); got != "body" {
		t.Fatalf("expected trailing newlines trimmed, got %q", got)
	}
}

func TestIndentBlock(t *testing.T) {
	cases := []struct {
		input  string
		spaces int
		want   string
	}{
		{input: "line", spaces: 0, want: "line"},
		{input: "line", spaces: 2, want: "  line"},
		{input: "one\n\ntwo", spaces: 1, want: " one\n \n two"},
	}
	for _, tc := range cases {
		if got := IndentBlock(tc.input, tc.spaces); got != tc.want {
			t.Errorf("IndentBlock(%q, %d) = %q, want %q", tc.input, tc.spaces, got, tc.want)
		}
	}
}
