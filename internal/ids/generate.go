package ids

import (
	"github.com/google/uuid"

	internalstrings "github.com/amonks/kanban/internal/strings"
)

// New returns a fresh random identifier.
func New() string {
	return internalstrings.NormalizeLower(uuid.NewString())
}

// Valid reports whether id parses as a UUID.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
