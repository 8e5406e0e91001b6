package docdb

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/fever/internal/model"
	"go.uber.org/zap"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (id PRIMARY KEY, text, lines);`

// maxPageBytes bounds a single wiki-pages JSONL line
const maxPageBytes = 64 * 1024 * 1024

// Writer builds a documents database from wiki page dumps
type Writer struct {
	db     *sql.DB
	logger *zap.Logger
}

// Create opens (creating if needed) a writable store at path
func Create(path string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path, "rwc"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Writer{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (w *Writer) Close() error {
	return w.db.Close()
}

// Put inserts or replaces a single document
func (w *Writer) Put(ctx context.Context, doc model.Document) error {
	_, err := w.db.ExecContext(ctx, "INSERT OR REPLACE INTO documents (id, text, lines) VALUES (?, ?, ?)",
		NormalizeID(doc.ID), doc.Text, doc.Lines)
	if err != nil {
		return fmt.Errorf("insert %s: %w", doc.ID, err)
	}
	return nil
}

// Import reads wiki-pages JSONL ({id, text, lines} per line) and stores every
// page with a non-empty id in one transaction. It returns the number of pages stored.
func (w *Writer) Import(ctx context.Context, r io.Reader) (n int, err error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO documents (id, text, lines) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxPageBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc model.Document
		if err = json.Unmarshal([]byte(line), &doc); err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if doc.ID == "" {
			continue
		}

		if _, err = stmt.ExecContext(ctx, NormalizeID(doc.ID), doc.Text, doc.Lines); err != nil {
			return n, fmt.Errorf("line %d: insert %s: %w", lineNo, doc.ID, err)
		}
		n++
	}
	if err = scanner.Err(); err != nil {
		return n, fmt.Errorf("scan: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return n, fmt.Errorf("commit: %w", err)
	}

	w.logger.Info("Imported wiki pages", zap.Int("pages", n))
	return n, nil
}
