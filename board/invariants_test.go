package board

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// TestRandomOperationsKeepInvariants drives the store with random operations,
// including invalid ones, and checks the board after every step.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		store, _ := openTestStore(t)
		everDone := make(map[string]string)

		randomID := func() string {
			items := store.Board().Items
			if len(items) == 0 || rng.IntN(10) == 0 {
				return "missing"
			}
			return items[rng.IntN(len(items))].ID
		}

		for step := 0; step < 300; step++ {
			before := store.Board()
			var err error

			switch rng.IntN(6) {
			case 0, 1:
				_, err = store.Add(randomTitle(rng), "")
			case 2:
				status := Statuses()[rng.IntN(len(Statuses()))]
				var moved Item
				moved, err = store.Move(randomID(), status)
				if err == nil && moved.Status == StatusDone {
					if previous, ok := everDone[moved.ID]; ok && previous != moved.CategoryName() {
						t.Fatalf("seed %d: category of %s changed from %q to %q", seed, moved.ID, previous, moved.CategoryName())
					}
					everDone[moved.ID] = moved.CategoryName()
				}
			case 3:
				_, err = store.Reorder(randomID(), rng.IntN(6)-1)
			case 4:
				err = store.Delete(randomID())
			case 5:
				err = store.SetWIPLimit(rng.IntN(6))
			}

			after := store.Board()
			checkInvariants(t, after)
			if err != nil {
				assertKnownError(t, err)
				if len(before.Items) != len(after.Items) || before.WIPLimit != after.WIPLimit {
					t.Fatalf("seed %d step %d: failed operation changed the board: %v", seed, step, err)
				}
			}
			for _, item := range after.Items {
				_, wasDone := everDone[item.ID]
				if wasDone != (item.Category != nil) {
					t.Fatalf("seed %d: item %s category presence %v but ever-done %v", seed, item.ID, item.Category != nil, wasDone)
				}
			}
		}
	}
}

func randomTitle(rng *rand.Rand) string {
	words := []string{"fix", "add", "docs", "layout", "cleanup", "benchmark", "qa", "groceries", "meeting"}
	return words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))]
}

func assertKnownError(t *testing.T, err error) {
	t.Helper()
	for _, known := range []error{ErrNotFound, ErrWIPLimitExceeded, ErrInvalidReorder, ErrInvalidWIPLimit, ErrWIPLimitBelowCurrent, ErrValidation} {
		if errors.Is(err, known) {
			return
		}
	}
	t.Fatalf("unexpected error %v", err)
}
