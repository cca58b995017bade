package board

import (
	"bytes"
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"

	"github.com/amonks/kanban/internal/kv"
	"github.com/amonks/kanban/internal/logging"
)

const (
	// StorageKey is the key the board snapshot is stored under.
	StorageKey = "kanban-board-v1"

	// StorageVersion is written into every snapshot.
	StorageVersion = "1.0.0"
)

// ErrCorruptSnapshot is returned when stored data cannot be used as a board.
var ErrCorruptSnapshot = errors.New("corrupt board snapshot")

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

var snapshotSchema = compileSnapshotSchema()

func compileSnapshotSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("snapshot.schema.json", bytes.NewReader([]byte(snapshotSchemaJSON))); err != nil {
		panic(fmt.Sprintf("board: add snapshot schema: %v", err))
	}
	return compiler.MustCompile("snapshot.schema.json")
}

// snapshotDocument is the stored form of a Board.
type snapshotDocument struct {
	Version    string                   `json:"version"`
	Todos      []Item                   `json:"todos"`
	WIPLimit   int                      `json:"wipLimit"`
	Categories map[string]CategoryUsage `json:"categories"`
	Columns    map[Status][]string      `json:"columns"`
}

// GatewayOptions configures a Gateway.
type GatewayOptions struct {
	// Key overrides StorageKey.
	Key string

	// DefaultWIPLimit is used for the board returned when nothing usable is stored.
	DefaultWIPLimit int

	// Logger receives warnings about unusable stored data.
	Logger logrus.FieldLogger
}

// Gateway persists boards as versioned JSON documents in a kv.Store.
type Gateway struct {
	store           kv.Store
	key             string
	defaultWIPLimit int
	logger          logrus.FieldLogger
}

// NewGateway returns a Gateway over store.
func NewGateway(store kv.Store, opts GatewayOptions) *Gateway {
	if opts.Key == "" {
		opts.Key = StorageKey
	}
	if opts.DefaultWIPLimit <= 0 {
		opts.DefaultWIPLimit = DefaultWIPLimit
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Gateway{
		store:           store,
		key:             opts.Key,
		defaultWIPLimit: opts.DefaultWIPLimit,
		logger:          opts.Logger,
	}
}

// Version returns the snapshot format version.
func (g *Gateway) Version() string {
	return StorageVersion
}

// Load returns the stored board. Missing or unreadable data yields
// DefaultBoard. Repairable flaws such as position gaps are fixed and logged.
// A document that cannot be used is copied to CorruptKey before DefaultBoard
// is returned, so the next save does not destroy it.
func (g *Gateway) Load(ctx context.Context) Board {
	data, err := g.store.Get(ctx, g.key)
	if errors.Is(err, kv.ErrNotFound) {
		return DefaultBoard(g.defaultWIPLimit)
	}
	if err != nil {
		g.logger.WithFields(logrus.Fields{"key": g.key, "error": err}).Warn("failed to read board, starting empty")
		return DefaultBoard(g.defaultWIPLimit)
	}

	b, repairs, err := decodeSnapshot(data)
	if err != nil {
		fields := logrus.Fields{"key": g.key, "error": err, "backup": g.CorruptKey()}
		if putErr := g.store.Put(ctx, g.CorruptKey(), data); putErr != nil {
			fields["backup_error"] = putErr
		}
		g.logger.WithFields(fields).Warn("ignoring unusable board snapshot")
		return DefaultBoard(g.defaultWIPLimit)
	}
	for _, repair := range repairs {
		g.logger.WithFields(logrus.Fields{"key": g.key, "repair": repair}).Warn("repaired stored board")
	}
	return b
}

// CorruptKey is where Load copies a stored document it cannot use.
func (g *Gateway) CorruptKey() string {
	return g.key + ".corrupt"
}

// Save writes b under the gateway's key.
func (g *Gateway) Save(ctx context.Context, b Board) error {
	data, err := EncodeSnapshot(b)
	if err != nil {
		return err
	}
	if err := g.store.Put(ctx, g.key, data); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// EncodeSnapshot renders b in the stored document format.
func EncodeSnapshot(b Board) ([]byte, error) {
	doc := snapshotDocument{
		Version:    StorageVersion,
		Todos:      b.Items,
		WIPLimit:   b.WIPLimit,
		Categories: b.Categories,
		Columns:    emptyColumns(),
	}
	if doc.Todos == nil {
		doc.Todos = []Item{}
	}
	if doc.Categories == nil {
		doc.Categories = map[string]CategoryUsage{}
	}
	for status, ids := range b.Columns {
		if ids != nil {
			doc.Columns[status] = ids
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and checks a stored document. Columns and categories
// are rebuilt from the items rather than trusted, and positions are renumbered
// densely.
func DecodeSnapshot(data []byte) (Board, error) {
	b, _, err := decodeSnapshot(data)
	return b, err
}

// decodeSnapshot is DecodeSnapshot that also describes each repair it made.
func decodeSnapshot(data []byte) (Board, []string, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Board{}, nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := snapshotSchema.Validate(raw); err != nil {
		return Board{}, nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Board{}, nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := checkConsistency(doc); err != nil {
		return Board{}, nil, err
	}

	b := Board{
		Items:      doc.Todos,
		WIPLimit:   doc.WIPLimit,
		Columns:    emptyColumns(),
		Categories: map[string]CategoryUsage{},
	}
	sortItems(b.Items)

	var repairs []string
	renumbered := map[Status]bool{}
	for i := range b.Items {
		item := &b.Items[i]
		if want := len(b.Columns[item.Status]); item.Position != want {
			renumbered[item.Status] = true
			item.Position = want
		}
		b.Columns[item.Status] = append(b.Columns[item.Status], item.ID)
		if item.Category != nil {
			usage := b.Categories[*item.Category]
			usage.Count++
			b.Categories[*item.Category] = usage
		}
	}
	for _, status := range Statuses() {
		if renumbered[status] {
			repairs = append(repairs, fmt.Sprintf("renumbered %s positions", status))
		}
	}
	if n := len(b.Columns[StatusInProgress]); n > b.WIPLimit {
		repairs = append(repairs, fmt.Sprintf("raised WIP limit from %d to %d items in progress", b.WIPLimit, n))
		b.WIPLimit = n
	}
	return b, repairs, nil
}

// checkConsistency rejects documents that cannot be repaired.
func checkConsistency(doc snapshotDocument) error {
	seen := make(map[string]bool, len(doc.Todos))
	for _, item := range doc.Todos {
		if seen[item.ID] {
			return fmt.Errorf("%w: duplicate id %s", ErrCorruptSnapshot, item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

// sortItems orders items by column, then position. Ties, which only occur in
// damaged documents, fall back to creation time and then id.
func sortItems(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.Status.columnIndex(), b.Status.columnIndex()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
