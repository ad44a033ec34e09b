package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/haze/internal/ir"
)

// ErrUnsupportedSnapshot is returned by Load when the database was written
// by a newer snapshot format.
var ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")

// Save replaces the stored snapshot with snaps in a single transaction.
// Documents are stored as canonical JSON.
func (s *Store) Save(ctx context.Context, snaps []ir.CollectionSnapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"documents", "collections"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save snapshot: clear %s: %w", table, err)
		}
	}

	for _, snap := range snaps {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING`,
			snap.Name,
		); err != nil {
			return fmt.Errorf("save snapshot: collection %q: %w", snap.Name, err)
		}

		for _, sd := range snap.Documents {
			if err = insertDocument(ctx, tx, snap.Name, sd); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
		}
	}

	if err = writeMeta(ctx, tx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, coll string, sd ir.StoredDocument) error {
	id, ok := sd.Document.ID()
	if !ok {
		return fmt.Errorf("document seq=%d in %q has no id", sd.Seq, coll)
	}
	version, _ := sd.Document.Version()

	body, err := ir.MarshalCanonical(sd.Document)
	if err != nil {
		return fmt.Errorf("marshal document %s:%s: %w", coll, id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, seq, version, body)
		VALUES (?, ?, ?, ?, ?)
	`, coll, id, sd.Seq, version, string(body))
	if err != nil {
		return fmt.Errorf("insert document %s:%s: %w", coll, id, err)
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx) error {
	meta := [][2]string{
		{"snapshot_version", strconv.Itoa(ir.SnapshotVersion)},
		{"engine_version", ir.EngineVersion},
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("write meta %s: %w", kv[0], err)
		}
	}
	return nil
}

// Load reads the stored snapshot. An empty database yields no collections.
//
// Collections are ordered by name; documents by seq ASC, id ASC.
func (s *Store) Load(ctx context.Context) ([]ir.CollectionSnapshot, error) {
	if err := s.checkVersion(ctx); err != nil {
		return nil, err
	}

	names, err := s.collectionNames(ctx)
	if err != nil {
		return nil, err
	}

	snaps := make([]ir.CollectionSnapshot, 0, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		snaps = append(snaps, ir.CollectionSnapshot{Name: name, Documents: []ir.StoredDocument{}})
		index[name] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, id, seq, body
		FROM documents
		ORDER BY collection COLLATE BINARY ASC, seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var coll, id, body string
		var seq int64
		if err := rows.Scan(&coll, &id, &seq, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := ir.ParseObject([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("decode document %s:%s: %w", coll, id, err)
		}
		i, ok := index[coll]
		if !ok {
			return nil, fmt.Errorf("document %s:%s references unknown collection", coll, id)
		}
		snaps[i].Documents = append(snaps[i].Documents, ir.StoredDocument{Seq: seq, Document: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return snaps, nil
}

func (s *Store) collectionNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// checkVersion rejects snapshots written by a newer format.
func (s *Store) checkVersion(ctx context.Context) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_meta WHERE key = 'snapshot_version'`,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot version: %w", err)
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("read snapshot version %q: %w", raw, err)
	}
	if v > ir.SnapshotVersion {
		return fmt.Errorf("%w: %d (supported: %d)", ErrUnsupportedSnapshot, v, ir.SnapshotVersion)
	}
	return nil
}
