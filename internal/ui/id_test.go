package ui

import "testing"

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		name   string
		length map[string]int
		id     string
		want   int
	}{
		{"case insensitive lookup", map[string]int{"abc123": 4}, "ABC123", 4},
		{"missing id", map[string]int{"abc123": 4}, "", 0},
		{"nil map", nil, "ABC123", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrefixLength(tt.length, tt.id); got != tt.want {
				t.Fatalf("PrefixLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	id := "0f8e4c2a-1b2c-4d5e-8f90-123456789abc"
	if got := ShortID(id, 2); got != "0f8e4c2a" {
		t.Fatalf("expected 8-char id, got %q", got)
	}
	if got := ShortID(id, 10); got != "0f8e4c2a-1" {
		t.Fatalf("expected unique prefix to widen id, got %q", got)
	}
	if got := ShortID("abc", 1); got != "abc" {
		t.Fatalf("expected short ids untouched, got %q", got)
	}
}

func TestUniqueIDPrefixLengths(t *testing.T) {
	lengths := UniqueIDPrefixLengths([]string{"abcd", "abef", "x"})
	if lengths["abcd"] != 3 || lengths["abef"] != 3 || lengths["x"] != 1 {
		t.Fatalf("unexpected lengths %v", lengths)
	}
}
