package board

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amonks/kanban/internal/ids"
	internalstrings "github.com/amonks/kanban/internal/strings"
)

// Add creates a backlog item at the tail of the backlog column.
func (s *Store) Add(title, description string) (Item, error) {
	if err := ValidateTitle(title); err != nil {
		return Item{}, err
	}
	if err := ValidateDescription(description); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &Item{
		ID:          s.newID(),
		Title:       internalstrings.TrimSpace(title),
		Description: internalstrings.TrimSpace(description),
		Status:      StatusBacklog,
		Position:    s.snapshot.Count(StatusBacklog),
		CreatedAt:   s.now(),
	}
	if _, exists := s.items[item.ID]; exists {
		return Item{}, fmt.Errorf("duplicate item id %s", item.ID)
	}
	s.items[item.ID] = item
	s.rebuild()
	s.persist("add")
	return item.clone(), nil
}

// UpdateOptions selects the fields Update changes. Nil fields are left alone.
type UpdateOptions struct {
	Title       *string
	Description *string
}

// Update edits an item's title and/or description.
func (s *Store) Update(id string, opts UpdateOptions) (Item, error) {
	if opts.Title != nil {
		if err := ValidateTitle(*opts.Title); err != nil {
			return Item{}, err
		}
	}
	if opts.Description != nil {
		if err := ValidateDescription(*opts.Description); err != nil {
			return Item{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	if opts.Title == nil && opts.Description == nil {
		return item.clone(), nil
	}
	if opts.Title != nil {
		item.Title = internalstrings.TrimSpace(*opts.Title)
	}
	if opts.Description != nil {
		item.Description = internalstrings.TrimSpace(*opts.Description)
	}
	s.rebuild()
	s.persist("update")
	return item.clone(), nil
}

// Move transitions an item to status, appending it to that column.
//
// Moving into in_progress fails with ErrWIPLimitExceeded when the column is
// full. The first move into done assigns the item's category. Moving an item
// to the status it already has changes nothing.
func (s *Store) Move(id string, status Status) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	if !status.IsValid() {
		return Item{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if item.Status == status {
		return item.clone(), nil
	}
	if status == StatusInProgress && !CanAdmitToInProgress(s.snapshot) {
		wip := WIPStatusOf(s.snapshot)
		return Item{}, fmt.Errorf("%w: %d/%d items in progress", ErrWIPLimitExceeded, wip.Count, wip.Limit)
	}

	item.Status = status
	item.Position = s.snapshot.Count(status)
	if status == StatusDone && item.Category == nil {
		category := s.detector.Detect(item.Title)
		item.Category = &category
	}
	s.rebuild()
	s.persist("move")
	return item.clone(), nil
}

// Delete removes an item and closes the gap in its column.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.lookup(id)
	if err != nil {
		return err
	}
	delete(s.items, item.ID)
	s.rebuild()
	s.persist("delete")
	return nil
}

// Reorder moves an item to position within its own column.
func (s *Store) Reorder(id string, position int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	column := s.columnIDs(item.Status)
	if position < 0 || position >= len(column) {
		return Item{}, fmt.Errorf("%w: %d not in [0, %d] for %s", ErrInvalidReorder, position, len(column)-1, item.Status)
	}
	if position == item.Position {
		return item.clone(), nil
	}

	column = slices.DeleteFunc(column, func(other string) bool { return other == item.ID })
	column = slices.Insert(column, position, item.ID)
	for i, other := range column {
		s.items[other].Position = i
	}
	s.rebuild()
	s.persist("reorder")
	return item.clone(), nil
}

// SetWIPLimit changes the in_progress cap.
func (s *Store) SetWIPLimit(limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidateWIPLimit(limit, s.snapshot.Count(StatusInProgress)); err != nil {
		return err
	}
	s.wipLimit = limit
	s.rebuild()
	s.persist("set-wip-limit")
	return nil
}

// WIP reports in_progress usage.
func (s *Store) WIP() WIPStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WIPStatusOf(s.snapshot)
}

// Categories returns the tags the detector can assign.
func (s *Store) Categories() []string {
	return s.detector.Categories()
}

// Get returns the item with the exact id.
func (s *Store) Get(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	return item.clone(), nil
}

// Resolve expands a unique id prefix into a full item id.
func (s *Store) Resolve(prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]string, 0, len(s.items))
	for id := range s.items {
		all = append(all, id)
	}
	match, found, ambiguous := ids.MatchPrefix(all, prefix)
	if ambiguous {
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

// SearchDone returns done items whose title, description, or category contains
// query, ignoring case, in done-column order. A blank query matches every done item.
func (s *Store) SearchDone(query string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := internalstrings.NormalizeLowerTrimSpace(query)
	results := []Item{}
	for _, item := range s.snapshot.Column(StatusDone) {
		if needle == "" || matchesQuery(item, needle) {
			results = append(results, item.clone())
		}
	}
	return results
}

func matchesQuery(item Item, needle string) bool {
	for _, field := range []string{item.Title, item.Description, item.CategoryName()} {
		if strings.Contains(internalstrings.NormalizeLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *Store) lookup(id string) (*Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}
