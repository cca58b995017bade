package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"

	"github.com/amonks/kanban/board"
	internalstrings "github.com/amonks/kanban/internal/strings"
)

const separator = "---"

var itemTemplate = template.Must(template.New("item").Parse(`# {{ .ID }} ({{ .Status }})
# Edit the title below and the description after the separator.
title = {{ printf "%q" .Title }}
` + separator + `
{{ .Description }}
`))

// RenderItem renders item as an editable document.
func RenderItem(item board.Item) (string, error) {
	var buf bytes.Buffer
	if err := itemTemplate.Execute(&buf, item); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedItem is the result of editing an item document.
type ParsedItem struct {
	Title       string `toml:"title"`
	Description string `toml:"-"`
}

// ParseItem parses an edited document and validates the result.
func ParseItem(content string) (*ParsedItem, error) {
	header, body := splitHeader(internalstrings.NormalizeNewlines(content))

	var parsed ParsedItem
	meta, err := toml.Decode(header, &parsed)
	if err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown field %q", undecoded[0].String())
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Description = internalstrings.TrimTrailingNewlines(strings.TrimLeft(body, "\n"))

	if err := board.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if err := board.ValidateDescription(parsed.Description); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// UpdateOptions converts the parsed document to a full title and description update.
func (p *ParsedItem) UpdateOptions() board.UpdateOptions {
	return board.UpdateOptions{
		Title:       &p.Title,
		Description: &p.Description,
	}
}

func splitHeader(content string) (string, string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == separator {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return content, ""
}

func createItemTempFile() (*os.File, error) {
	return os.CreateTemp("", "kanban-item-*.md")
}

// EditItem opens item in the editor and returns the edited fields.
func EditItem(item board.Item) (*ParsedItem, error) {
	content, err := RenderItem(item)
	if err != nil {
		return nil, err
	}

	tmpfile, err := createItemTempFile()
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return ParseItem(string(edited))
}
