package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// recordingPersister keeps the last saved board in memory.
type recordingPersister struct {
	mu      sync.Mutex
	initial Board
	saved   []Board
	failErr error
}

func (p *recordingPersister) Load(ctx context.Context) Board {
	if p.initial.WIPLimit == 0 {
		return DefaultBoard(DefaultWIPLimit)
	}
	return p.initial.Clone()
}

func (p *recordingPersister) Save(ctx context.Context, b Board) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return p.failErr
	}
	p.saved = append(p.saved, b)
	return nil
}

func (p *recordingPersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saved)
}

func (p *recordingPersister) last() Board {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saved) == 0 {
		return Board{}
	}
	return p.saved[len(p.saved)-1]
}

var errDiskFull = errors.New("disk full")

func testOptions() Options {
	var next int
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return Options{
		NewID: func() string {
			next++
			return fmt.Sprintf("item-%03d", next)
		},
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	}
}

func openTestStore(t *testing.T) (*Store, *recordingPersister) {
	t.Helper()
	persister := &recordingPersister{}
	return Open(persister, testOptions()), persister
}

func mustAdd(t *testing.T, store *Store, title string) Item {
	t.Helper()
	item, err := store.Add(title, "")
	if err != nil {
		t.Fatalf("failed to add %q: %v", title, err)
	}
	return item
}

func mustMove(t *testing.T, store *Store, id string, status Status) Item {
	t.Helper()
	item, err := store.Move(id, status)
	if err != nil {
		t.Fatalf("failed to move %s to %s: %v", id, status, err)
	}
	return item
}

func columnTitles(b Board, status Status) []string {
	var titles []string
	for _, item := range b.Column(status) {
		titles = append(titles, item.Title)
	}
	return titles
}

// checkInvariants fails the test when b breaks a board invariant.
func checkInvariants(t *testing.T, b Board) {
	t.Helper()

	seen := make(map[string]bool)
	byStatus := make(map[Status][]Item)
	for _, item := range b.Items {
		if seen[item.ID] {
			t.Fatalf("duplicate id %s", item.ID)
		}
		seen[item.ID] = true
		byStatus[item.Status] = append(byStatus[item.Status], item)
		if item.Status == StatusDone && item.Category == nil {
			t.Fatalf("done item %s has no category", item.ID)
		}
	}

	for _, status := range Statuses() {
		ids, ok := b.Columns[status]
		if !ok {
			t.Fatalf("missing column %s", status)
		}
		items := byStatus[status]
		if len(ids) != len(items) {
			t.Fatalf("column %s has %d ids, want %d", status, len(ids), len(items))
		}
		positions := make(map[string]int, len(items))
		for _, item := range items {
			positions[item.ID] = item.Position
		}
		for i, id := range ids {
			position, ok := positions[id]
			if !ok {
				t.Fatalf("column %s lists %s which is not in that status", status, id)
			}
			if position != i {
				t.Fatalf("column %s: %s at index %d has position %d", status, id, i, position)
			}
		}
	}

	if n := len(b.Columns[StatusInProgress]); n > b.WIPLimit {
		t.Fatalf("in_progress has %d items, limit %d", n, b.WIPLimit)
	}
}
