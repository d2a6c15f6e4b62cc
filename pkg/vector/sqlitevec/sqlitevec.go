// Package sqlitevec provides a SQLite-backed vector index using sqlite-vec.
//
// Unlike the brute index, entries persist across runs, so long chat histories
// do not need their embeddings re-registered on every load.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/vector"
)

// Index implements vector.Index using SQLite with sqlite-vec.
type Index struct {
	db         *sql.DB
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the SQLite vec index.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewIndex creates a new SQLite vector index backed by sqlite-vec.
func NewIndex(c Config, logger *zap.Logger) (*Index, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	// Create the message ID mapping table.
	// vec0 virtual tables use integer rowids, so we need a mapping from
	// string message IDs to integer rowids.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vec_messages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			msg_id TEXT NOT NULL UNIQUE,
			seq INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating messages table: %w", err)
	}

	// Create the vec0 virtual table for vector storage and KNN queries.
	// Cosine distance keeps ranking consistent with the brute index.
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector index initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Index{
		db:         db,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Add registers entries, updating any whose ID is already present.
func (x *Index) Add(ctx context.Context, entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if uint(len(e.Embedding)) != x.dimensions {
			return fmt.Errorf("%w: entry %s has %d dimensions, index expects %d",
				vector.ErrDimensions, e.ID, len(e.Embedding), x.dimensions)
		}

		embBlob := serializeFloat32(e.Embedding)

		// Check if the entry already exists
		var existingRowID int64
		err = tx.QueryRowContext(ctx,
			`SELECT rowid FROM vec_messages WHERE msg_id = ?`, e.ID,
		).Scan(&existingRowID)

		switch err {
		case nil:
			// Entry exists — update seq and embedding
			if _, err := tx.ExecContext(ctx,
				`UPDATE vec_messages SET seq = ? WHERE rowid = ?`,
				e.Seq, existingRowID,
			); err != nil {
				return fmt.Errorf("updating entry %s: %w", e.ID, err)
			}

			// Update embedding in vec0 table via DELETE + INSERT
			// (vec0 does not support UPDATE)
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM vec_embeddings WHERE rowid = ?`, existingRowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for entry %s: %w", e.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vec_embeddings(rowid, embedding) VALUES (?, ?)`,
				existingRowID, embBlob,
			); err != nil {
				return fmt.Errorf("re-inserting embedding for entry %s: %w", e.ID, err)
			}
		case sql.ErrNoRows:
			// New entry — insert into mapping table first to get the rowid
			result, err := tx.ExecContext(ctx,
				`INSERT INTO vec_messages(msg_id, seq) VALUES (?, ?)`,
				e.ID, e.Seq,
			)
			if err != nil {
				return fmt.Errorf("inserting entry %s: %w", e.ID, err)
			}

			rowID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for entry %s: %w", e.ID, err)
			}

			// Insert embedding into vec0 table with matching rowid
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vec_embeddings(rowid, embedding) VALUES (?, ?)`,
				rowID, embBlob,
			); err != nil {
				return fmt.Errorf("inserting embedding for entry %s: %w", e.ID, err)
			}
		default:
			return fmt.Errorf("checking for existing entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	x.logger.Debug("added entries to sqlite-vec",
		zap.Int("count", len(entries)),
	)

	return nil
}

// Query finds the topK most similar entries to the given embedding.
func (x *Index) Query(ctx context.Context, embedding []float32, topK int) ([]vector.Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	queryBlob := serializeFloat32(embedding)

	// Use KNN query via vec0 MATCH, then JOIN back to get msg_id and seq.
	// Equal distances fall back to insertion order, matching the brute index.
	rows, err := x.db.QueryContext(ctx, `
		SELECT
			m.msg_id,
			m.seq,
			ve.distance
		FROM vec_embeddings ve
		INNER JOIN vec_messages m ON m.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance, m.seq
	`, queryBlob, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.Result
	for rows.Next() {
		var msgID string
		var seq int
		var distance float64
		if err := rows.Scan(&msgID, &seq, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.Result{
			Entry: vector.Entry{ID: msgID, Seq: seq},
			// Cosine distance is 1 - similarity.
			Score: 1.0 - distance,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	x.logger.Debug("queried sqlite-vec",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Clear removes all entries.
func (x *Index) Clear(ctx context.Context) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_embeddings`); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_messages`); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (x *Index) Close() error {
	return x.db.Close()
}

var _ vector.Index = (*Index)(nil)
