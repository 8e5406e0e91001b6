// Package docdb reads FEVER wiki pages from a SQLite documents table.
//
// The table layout is documents(id PRIMARY KEY, text, lines) where id is the
// page title in Unicode NFD form and lines holds newline separated
// "{index}\t{sentence}\t{links}" records.
package docdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/fever/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

var (
	ErrStoreNotFound    = errors.New("document store not found")
	ErrStoreCorrupt     = errors.New("document store unreadable")
	ErrDocumentNotFound = errors.New("document not found")
)

// LineSource resolves a page to its raw line records
type LineSource interface {
	GetLines(ctx context.Context, pageID string) ([]string, error)
}

// Store is a read-only handle on a documents database
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ LineSource = (*Store)(nil)

// Open opens the store at path read-only. It never creates a file.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", dsn(path, "ro"))
	if err != nil {
		logging.Critical(logger, "Unable to load sqlite database", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, path, err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.checkSchema(); err != nil {
		db.Close()
		logging.Critical(logger, "Unable to load sqlite database", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, path, err)
	}

	logger.Debug("Opened document store", zap.String("path", path))
	return store, nil
}

// checkSchema fails unless the documents table with the expected columns is readable
func (s *Store) checkSchema() error {
	rows, err := s.db.Query("SELECT id, text, lines FROM documents LIMIT 0")
	if err != nil {
		return err
	}
	return rows.Close()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dsn builds a SQLite file URI for path. The path is escaped so that
// characters such as '#', '?' and '%' stay part of the file name.
func dsn(path, mode string) string {
	u := &url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(path), RawQuery: "mode=" + mode}
	return u.String()
}

// NormalizeID converts a page title to the NFD form used for stored keys
func NormalizeID(pageID string) string {
	return norm.NFD.String(pageID)
}

// GetLines returns the raw line records of a page, one per newline.
// The title is NFD normalized here because callers pass titles from sources
// that are not normalized.
func (s *Store) GetLines(ctx context.Context, pageID string) ([]string, error) {
	var lines sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT lines FROM documents WHERE id = ?", NormalizeID(pageID)).Scan(&lines)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, pageID)
	}
	if err != nil {
		return nil, fmt.Errorf("query lines for %s: %w", pageID, err)
	}

	return strings.Split(lines.String, "\n"), nil
}

// DocIDs returns every stored page id
func (s *Store) DocIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, "SELECT id FROM documents")
}

// NonEmptyDocIDs returns the ids of pages whose text is not blank
func (s *Store) NonEmptyDocIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, "SELECT id FROM documents WHERE length(trim(text, ' '||char(9)||char(10)||char(13))) > 0")
}

func (s *Store) queryIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}

	return ids, nil
}
