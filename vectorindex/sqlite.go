package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"

	"github.com/hupe1980/fashionagent/core"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS catalog_images (
	id TEXT PRIMARY KEY,
	embedding BLOB NOT NULL,
	dimension INTEGER NOT NULL,
	image BLOB NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteIndex is a brute-force cosine index over catalog images stored in SQLite.
type SQLiteIndex struct {
	mu   sync.RWMutex
	db   *sql.DB
	name string
	dims int
}

var _ core.VectorIndex = (*SQLiteIndex)(nil)

// OpenSQLite opens (or creates) the index at path. ":memory:" keeps the
// index in process. dims is the embedding dimension accepted by Add.
func OpenSQLite(path, name string, dims int) (*SQLiteIndex, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serialises writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}

	if name == "" {
		name = "sqlite:" + path
	}

	return &SQLiteIndex{db: db, name: name, dims: dims}, nil
}

// Name identifies the index.
func (s *SQLiteIndex) Name() string { return s.name }

// Close releases the database handle.
func (s *SQLiteIndex) Close() error { return s.db.Close() }

// Add inserts or replaces a catalog document.
func (s *SQLiteIndex) Add(ctx context.Context, doc Document) error {
	if s.dims > 0 && len(doc.Vector) != s.dims {
		return core.Errorf("vectorindex.sqlite.add", core.KindInvalidInput, "expected %d dimensions, got %d", s.dims, len(doc.Vector))
	}
	if doc.ID == "" {
		doc.ID = core.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO catalog_images (id, embedding, dimension, image) VALUES (?, ?, ?, ?)`,
		doc.ID, encodeBlob(doc.Vector), len(doc.Vector), doc.Image,
	)
	if err != nil {
		return fmt.Errorf("insert catalog image: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_images`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Search scores every stored vector by cosine similarity and returns the top
// candidates in descending score order. Rows with a different dimension are skipped.
func (s *SQLiteIndex) Search(ctx context.Context, vector core.Embedding, candidates int) ([]core.SimilarityHit, error) {
	if candidates <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, embedding, image FROM catalog_images WHERE dimension = ?`, len(vector))
	if err != nil {
		return nil, core.E("vectorindex.sqlite.search", core.KindUpstream, err)
	}
	defer rows.Close()

	var hits []core.SimilarityHit
	for rows.Next() {
		var (
			id    string
			blob  []byte
			image []byte
		)
		if err := rows.Scan(&id, &blob, &image); err != nil {
			return nil, core.E("vectorindex.sqlite.search", core.KindUpstream, err)
		}
		vec, err := decodeBlob(blob)
		if err != nil {
			continue
		}
		score, err := CosineSimilarity(vector, vec)
		if err != nil {
			continue
		}
		hits = append(hits, core.SimilarityHit{ID: id, Score: score, Payload: image})
	}
	if err := rows.Err(); err != nil {
		return nil, core.E("vectorindex.sqlite.search", core.KindUpstream, err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > candidates {
		hits = hits[:candidates]
	}

	return hits, nil
}
