package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amonks/kanban/internal/ids"
	"github.com/amonks/kanban/internal/logging"
)

// DefaultSaveTimeout bounds each Persister call.
const DefaultSaveTimeout = 5 * time.Second

// Persister loads and saves whole board snapshots.
type Persister interface {
	// Load returns the stored board, or a default board when nothing usable is stored.
	Load(ctx context.Context) Board

	// Save stores b, replacing any previous snapshot.
	Save(ctx context.Context, b Board) error
}

// Options configures a Store.
type Options struct {
	// Logger receives persistence failures and load diagnostics. Defaults to a discard logger.
	Logger logrus.FieldLogger

	// Detector assigns categories on the first move into done. Defaults to NewCategoryDetector().
	Detector *CategoryDetector

	// SaveTimeout bounds each Persister call. Defaults to DefaultSaveTimeout.
	SaveTimeout time.Duration

	// Now returns the creation time for new items. Defaults to the current UTC time.
	Now func() time.Time

	// NewID returns the ID for new items. Defaults to ids.New.
	NewID func() string
}

// Store owns the board and serializes every mutation.
type Store struct {
	mu        sync.Mutex
	persister Persister
	detector  *CategoryDetector
	logger    logrus.FieldLogger
	timeout   time.Duration
	now       func() time.Time
	newID     func() string

	items    map[string]*Item
	wipLimit int

	// snapshot is rebuilt from items after every mutation.
	snapshot Board
}

// Open loads the board from p and returns a Store that persists through it.
func Open(p Persister, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Detector == nil {
		opts.Detector = NewCategoryDetector()
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC().Round(0) }
	}
	if opts.NewID == nil {
		opts.NewID = ids.New
	}

	s := &Store{
		persister: p,
		detector:  opts.Detector,
		logger:    opts.Logger,
		timeout:   opts.SaveTimeout,
		now:       opts.Now,
		newID:     opts.NewID,
		items:     make(map[string]*Item),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	loaded := p.Load(ctx)
	cancel()

	s.wipLimit = loaded.WIPLimit
	if s.wipLimit <= 0 {
		s.wipLimit = DefaultWIPLimit
	}
	for _, item := range loaded.Items {
		if item.ID == "" || !item.Status.IsValid() {
			s.logger.WithField("id", item.ID).Warn("skipping stored item with invalid id or status")
			continue
		}
		item := item.clone()
		if item.Status == StatusDone && item.Category == nil {
			category := s.detector.Detect(item.Title)
			item.Category = &category
			s.logger.WithFields(logrus.Fields{"id": item.ID, "category": category}).Warn("categorized stored done item")
		}
		s.items[item.ID] = &item
	}
	s.rebuild()
	if n := s.snapshot.Count(StatusInProgress); n > s.wipLimit {
		s.logger.WithFields(logrus.Fields{"wip_limit": s.wipLimit, "in_progress": n}).Warn("raising WIP limit to fit stored items")
		s.wipLimit = n
		s.rebuild()
	}

	fields := logrus.Fields{
		"items":     len(s.items),
		"wip_limit": s.wipLimit,
	}
	if versioned, ok := p.(interface{ Version() string }); ok {
		fields["version"] = versioned.Version()
	}
	s.logger.WithFields(fields).Info("board loaded")
	return s
}

// Board returns a deep copy of the current snapshot.
func (s *Store) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// rebuild renumbers every column densely and derives the snapshot from items.
// Within a column, items keep their relative position order.
func (s *Store) rebuild() {
	byStatus := make(map[Status][]*Item, len(Statuses()))
	for _, item := range s.items {
		byStatus[item.Status] = append(byStatus[item.Status], item)
	}

	snapshot := Board{
		Items:      make([]Item, 0, len(s.items)),
		WIPLimit:   s.wipLimit,
		Columns:    emptyColumns(),
		Categories: map[string]CategoryUsage{},
	}
	for _, status := range Statuses() {
		column := byStatus[status]
		sort.SliceStable(column, func(i, j int) bool {
			if column[i].Position != column[j].Position {
				return column[i].Position < column[j].Position
			}
			if !column[i].CreatedAt.Equal(column[j].CreatedAt) {
				return column[i].CreatedAt.Before(column[j].CreatedAt)
			}
			return column[i].ID < column[j].ID
		})
		for position, item := range column {
			item.Position = position
			snapshot.Columns[status] = append(snapshot.Columns[status], item.ID)
			snapshot.Items = append(snapshot.Items, item.clone())
			if item.Category != nil {
				usage := snapshot.Categories[*item.Category]
				usage.Count++
				snapshot.Categories[*item.Category] = usage
			}
		}
	}
	s.snapshot = snapshot
}

// persist saves the snapshot. Failures are logged, never returned.
func (s *Store) persist(op string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.persister.Save(ctx, s.snapshot.Clone()); err != nil {
		s.logger.WithFields(logrus.Fields{
			"op":    op,
			"error": err,
		}).Error("failed to save board")
	}
}

// columnIDs returns the ids in status's column, in position order.
func (s *Store) columnIDs(status Status) []string {
	return append([]string{}, s.snapshot.Columns[status]...)
}
