// Package board implements a single-user kanban board with a work-in-progress cap.
//
// Items move through four fixed columns (backlog, in_progress, paused, done).
// The in_progress column is capped by the board's WIP limit, and items are
// tagged with a category the first time they reach done.
//
// The public API mirrors the CLI commands:
//   - Add, Update, Move, Reorder, Delete for the item lifecycle
//   - SetWIPLimit, WIP for the work-in-progress cap
//   - Board, Get, Resolve, SearchDone for querying
package board

import "time"

// Status is the workflow column an item lives in.
type Status string

const (
	// StatusBacklog holds work that has not been started.
	StatusBacklog Status = "backlog"

	// StatusInProgress holds work being done now. Its size is capped by the WIP limit.
	StatusInProgress Status = "in_progress"

	// StatusPaused holds started work that is on hold.
	StatusPaused Status = "paused"

	// StatusDone holds finished work.
	StatusDone Status = "done"
)

// Statuses returns every status in column order.
func Statuses() []Status {
	return []Status{StatusBacklog, StatusInProgress, StatusPaused, StatusDone}
}

// IsValid reports whether s is one of the four board columns.
func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusPaused, StatusDone:
		return true
	default:
		return false
	}
}

// columnIndex orders statuses for snapshot output.
func (s Status) columnIndex() int {
	for i, status := range Statuses() {
		if s == status {
			return i
		}
	}
	return len(Statuses())
}

const (
	// DefaultWIPLimit is the cap applied to a brand-new board.
	DefaultWIPLimit = 3

	// MaxTitleLength is the longest title accepted, in characters.
	MaxTitleLength = 255

	// MaxDescriptionLength is the longest description accepted, in characters.
	MaxDescriptionLength = 5000
)

// Item is a single card on the board.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`

	// Category is nil until the item first reaches done, and never changes after.
	Category *string `json:"category"`
}

// CategoryName returns the item's category, or "" when none is assigned.
func (i Item) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return *i.Category
}

// CategoryUsage records how many items carry a category tag.
type CategoryUsage struct {
	Count int `json:"count"`
}

// Board is a snapshot of the whole board.
type Board struct {
	Items      []Item                   `json:"todos"`
	WIPLimit   int                      `json:"wipLimit"`
	Columns    map[Status][]string      `json:"columns"`
	Categories map[string]CategoryUsage `json:"categories"`
}

// DefaultBoard returns an empty board with the given WIP limit.
// Non-positive limits fall back to DefaultWIPLimit.
func DefaultBoard(wipLimit int) Board {
	if wipLimit <= 0 {
		wipLimit = DefaultWIPLimit
	}
	return Board{
		Items:      []Item{},
		WIPLimit:   wipLimit,
		Columns:    emptyColumns(),
		Categories: map[string]CategoryUsage{},
	}
}

// Column returns the items with the given status, in position order.
func (b Board) Column(status Status) []Item {
	byID := make(map[string]Item, len(b.Items))
	for _, item := range b.Items {
		byID[item.ID] = item
	}
	ids := b.Columns[status]
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

// Count returns the number of items with the given status.
func (b Board) Count(status Status) int {
	return len(b.Columns[status])
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := Board{
		Items:      make([]Item, len(b.Items)),
		WIPLimit:   b.WIPLimit,
		Columns:    make(map[Status][]string, len(b.Columns)),
		Categories: make(map[string]CategoryUsage, len(b.Categories)),
	}
	for i, item := range b.Items {
		out.Items[i] = item.clone()
	}
	for status, ids := range b.Columns {
		out.Columns[status] = append([]string{}, ids...)
	}
	for tag, usage := range b.Categories {
		out.Categories[tag] = usage
	}
	return out
}

func (i Item) clone() Item {
	if i.Category != nil {
		category := *i.Category
		i.Category = &category
	}
	return i
}

func emptyColumns() map[Status][]string {
	columns := make(map[Status][]string, len(Statuses()))
	for _, status := range Statuses() {
		columns[status] = []string{}
	}
	return columns
}
