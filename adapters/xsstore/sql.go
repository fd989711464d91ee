package xsstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"transportcore/domain/core"
	apperrors "transportcore/internal/errors"
	"transportcore/ports"
)

// SQLStore persists group trees in a SQL database. Dataset values are
// stored as little-endian float64 blobs so round trips are bit-exact.
type SQLStore struct {
	db *sqlx.DB
}

var _ ports.XSLibraryStore = (*SQLStore)(nil)

// NewSQLStore wraps an open connection
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Open connects with the named driver ("sqlite" or "postgres") and creates
// the schema
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", driver, err)
	}
	if driver == "sqlite" {
		// an in-memory database lives on a single connection
		db.SetMaxOpenConns(1)
	}
	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) blobType() string {
	if s.db.DriverName() == "postgres" {
		return "BYTEA"
	}
	return "BLOB"
}

// Migrate creates the tables if they do not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS xs_groups (
			library TEXT NOT NULL,
			group_path TEXT NOT NULL,
			PRIMARY KEY (library, group_path)
		)`,
		`CREATE TABLE IF NOT EXISTS xs_datasets (
			library TEXT NOT NULL,
			group_path TEXT NOT NULL,
			name TEXT NOT NULL,
			shape TEXT NOT NULL,
			data ` + s.blobType() + ` NOT NULL,
			PRIMARY KEY (library, group_path, name)
		)`,
		`CREATE TABLE IF NOT EXISTS xs_attrs (
			library TEXT NOT NULL,
			group_path TEXT NOT NULL,
			name TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (library, group_path, name)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate cross-section store: %w", err)
		}
	}
	return nil
}

// SaveGroup stores grp and its descendants under library, replacing any
// existing tree at the same path
func (s *SQLStore) SaveGroup(ctx context.Context, library string, grp ports.XSGroup) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	root := grp.Path()
	for _, table := range []string{"xs_groups", "xs_datasets", "xs_attrs"} {
		query := tx.Rebind(`DELETE FROM ` + table + ` WHERE library = ? AND ` + inSubtree)
		if _, err := tx.ExecContext(ctx, query, subtreeArgs(library, root)...); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertGroup := tx.Rebind(`INSERT INTO xs_groups (library, group_path) VALUES (?, ?)`)
	insertData := tx.Rebind(`INSERT INTO xs_datasets (library, group_path, name, shape, data) VALUES (?, ?, ?, ?, ?)`)
	insertAttr := tx.Rebind(`INSERT INTO xs_attrs (library, group_path, name, value) VALUES (?, ?, ?, ?)`)

	err = Walk(grp, func(g ports.XSGroup) error {
		if _, err := tx.ExecContext(ctx, insertGroup, library, g.Path()); err != nil {
			return fmt.Errorf("failed to save group %s: %w", g.Path(), err)
		}
		for _, name := range g.Datasets() {
			values, shape, err := g.Read(name)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertData, library, g.Path(), name, encodeShape(shape), encodeValues(values)); err != nil {
				return fmt.Errorf("failed to save dataset %s/%s: %w", g.Path(), name, err)
			}
		}
		for name, v := range g.Attrs() {
			if _, err := tx.ExecContext(ctx, insertAttr, library, g.Path(), name, v); err != nil {
				return fmt.Errorf("failed to save attribute %s/%s: %w", g.Path(), name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

type datasetRow struct {
	GroupPath string `db:"group_path"`
	Name      string `db:"name"`
	Shape     string `db:"shape"`
	Data      []byte `db:"data"`
}

type attrRow struct {
	GroupPath string  `db:"group_path"`
	Name      string  `db:"name"`
	Value     float64 `db:"value"`
}

// LoadGroup reads the tree rooted at path into memory
func (s *SQLStore) LoadGroup(ctx context.Context, library, path string) (ports.XSGroup, error) {
	root := NewMemoryGroup(path)
	args := subtreeArgs(library, root.Path())

	var paths []string
	query := s.db.Rebind(`SELECT group_path FROM xs_groups WHERE library = ? AND ` + inSubtree + ` ORDER BY group_path`)
	if err := s.db.SelectContext(ctx, &paths, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if len(paths) == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("group %s in library %s", root.Path(), library), core.ErrMissingDataset)
	}
	for _, p := range paths {
		locate(root, p)
	}

	var data []datasetRow
	query = s.db.Rebind(`SELECT group_path, name, shape, data FROM xs_datasets WHERE library = ? AND ` + inSubtree)
	if err := s.db.SelectContext(ctx, &data, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	for _, row := range data {
		shape, err := decodeShape(row.Shape)
		if err != nil {
			return nil, fmt.Errorf("dataset %s/%s: %w", row.GroupPath, row.Name, err)
		}
		values, err := decodeValues(row.Data)
		if err != nil {
			return nil, fmt.Errorf("dataset %s/%s: %w", row.GroupPath, row.Name, err)
		}
		if err := locate(root, row.GroupPath).Put(row.Name, values, shape...); err != nil {
			return nil, err
		}
	}

	var attrs []attrRow
	query = s.db.Rebind(`SELECT group_path, name, value FROM xs_attrs WHERE library = ? AND ` + inSubtree)
	if err := s.db.SelectContext(ctx, &attrs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load attributes: %w", err)
	}
	for _, row := range attrs {
		locate(root, row.GroupPath).SetAttr(row.Name, row.Value)
	}
	return root, nil
}

// ListGroups returns every stored group path of library in order
func (s *SQLStore) ListGroups(ctx context.Context, library string) ([]string, error) {
	var paths []string
	query := s.db.Rebind(`SELECT group_path FROM xs_groups WHERE library = ? ORDER BY group_path`)
	if err := s.db.SelectContext(ctx, &paths, query, library); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return paths, nil
}

// ListLibraries returns the names of all stored libraries
func (s *SQLStore) ListLibraries(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT DISTINCT library FROM xs_groups ORDER BY library`); err != nil {
		return nil, fmt.Errorf("failed to list libraries: %w", err)
	}
	return names, nil
}

// inSubtree matches the root path and every path below it. The prefix is
// compared with substr so matching is case-sensitive on every driver.
const inSubtree = `(group_path = ? OR substr(group_path, 1, ?) = ?)`

// subtreeArgs binds library and the inSubtree placeholders for root
func subtreeArgs(library, root string) []any {
	prefix := strings.TrimSuffix(root, "/") + "/"
	return []any{library, root, utf8.RuneCountInString(prefix), prefix}
}

func locate(root *MemoryGroup, p string) *MemoryGroup {
	rel := strings.TrimPrefix(strings.TrimPrefix(p, root.Path()), "/")
	g := root
	if rel == "" {
		return g
	}
	for _, seg := range strings.Split(rel, "/") {
		g = g.Child(seg)
	}
	return g
}

func encodeShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, s := range shape {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

func decodeShape(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	shape := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, core.NewConfigurationError("bad shape %q", s)
		}
		shape[i] = n
	}
	return shape, nil
}

func encodeValues(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeValues(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, core.NewConfigurationError("value blob of %d bytes", len(buf))
	}
	values := make([]float64, len(buf)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return values, nil
}
