package markdown

import (
	"errors"
	"strings"
	"testing"
)

type stubRenderer func(string) (string, error)

func (fn stubRenderer) Render(value string) (string, error) {
	return fn(value)
}

func withRenderer(t *testing.T, width int, r renderer) {
	t.Helper()
	rendererMu.Lock()
	prev, hadPrev := renderers[width]
	renderers[width] = r
	rendererMu.Unlock()

	t.Cleanup(func() {
		rendererMu.Lock()
		defer rendererMu.Unlock()
		if hadPrev {
			renderers[width] = prev
		} else {
			delete(renderers, width)
		}
	})
}

func TestRenderFallsBackOnPanic(t *testing.T) {
	withRenderer(t, 20, stubRenderer(func(string) (string, error) { panic("boom") }))

	if out := Render(20, 0, []byte("hello\r\n")); string(out) != "hello" {
		t.Fatalf("expected fallback to original markdown, got %q", out)
	}
}

func TestRenderFallsBackOnError(t *testing.T) {
	withRenderer(t, 18, stubRenderer(func(string) (string, error) { return "", errors.New("bad") }))

	if out := Render(20, 2, []byte("one\ntwo")); string(out) != "  one\n  two" {
		t.Fatalf("expected indented fallback, got %q", out)
	}
}

func TestRenderBlank(t *testing.T) {
	if out := Render(40, 0, []byte(" \n\n")); out != nil {
		t.Fatalf("expected nil for blank input, got %q", out)
	}
}

func TestRenderFormatsMarkdown(t *testing.T) {
	out := string(Render(40, 4, []byte("# Steps\n\n* first\n* second\n")))
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected list items in output, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if line != "" && !strings.HasPrefix(line, "    ") {
			t.Fatalf("expected every line indented, got %q", line)
		}
	}
}
