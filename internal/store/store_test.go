package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/haze/internal/ir"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func doc(id string, version int64, fields ...ir.IRPair) ir.IRObject {
	obj := ir.NewIRObjectFromPairs(fields...)
	obj[ir.FieldID] = ir.IRString(id)
	obj[ir.FieldVersion] = ir.IRInt(version)
	return obj
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"collections", "documents", "snapshot_meta"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", strconv.Itoa(schemaVersion())))
}

func TestLoad_EmptyDatabase(t *testing.T) {
	s := createTestStore(t)

	snaps, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := []ir.CollectionSnapshot{
		{Name: "empty", Documents: []ir.StoredDocument{}},
		{Name: "tasks", Documents: []ir.StoredDocument{
			{Seq: 2, Document: doc("b", 20, ir.O("count", ir.IRInt(10)))},
			{Seq: 5, Document: doc("a", 50, ir.O("ratio", ir.IRFloat(0.25)), ir.O("tags", ir.IRArray{ir.IRString("x")}))},
		}},
		{Name: "users", Documents: []ir.StoredDocument{
			{Seq: 1, Document: doc("u1", 10,
				ir.O("name", ir.IRString("Ann <ann@example.com>")),
				ir.O("address", ir.IRObject{"city": ir.IRString("Oslo")}),
				ir.O("nickname", ir.IRNull{}),
				ir.O("admin", ir.IRBool(true)),
			)},
		}},
	}

	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoad_OrdersBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []ir.CollectionSnapshot{
		{Name: "c", Documents: []ir.StoredDocument{
			{Seq: 9, Document: doc("late", 1)},
			{Seq: 3, Document: doc("early", 1)},
		}},
	}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	first, _ := out[0].Documents[0].Document.ID()
	assert.Equal(t, "early", first)
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []ir.CollectionSnapshot{
		{Name: "old", Documents: []ir.StoredDocument{{Seq: 1, Document: doc("x", 1)}}},
	}))
	require.NoError(t, s.Save(ctx, []ir.CollectionSnapshot{
		{Name: "new", Documents: []ir.StoredDocument{}},
	}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].Name)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestSave_RejectsDocumentWithoutID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []ir.CollectionSnapshot{{Name: "kept", Documents: []ir.StoredDocument{}}}))

	err := s.Save(ctx, []ir.CollectionSnapshot{
		{Name: "bad", Documents: []ir.StoredDocument{{Seq: 1, Document: ir.IRObject{"name": ir.IRString("x")}}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")

	// Failed save rolls back; the previous snapshot survives.
	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0].Name)
}

func TestLoad_RejectsNewerSnapshotVersion(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`INSERT INTO snapshot_meta (key, value) VALUES ('snapshot_version', '99')`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrUnsupportedSnapshot)
}

func TestOpen_RejectsNewerSnapshotVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO snapshot_meta (key, value) VALUES ('snapshot_version', ?)`,
		strconv.Itoa(ir.SnapshotVersion+1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrUnsupportedSnapshot)
}

func TestOpen_MigrationsRecordVersion(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_documents_version'",
	).Scan(&name)
	assert.NoError(t, err)

	require.NoError(t, s.migrate(context.Background()))
	assert.NoError(t, s.verifyPragma("user_version", strconv.Itoa(schemaVersion())))
}

func TestSave_StoresCanonicalJSON(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []ir.CollectionSnapshot{
		{Name: "c", Documents: []ir.StoredDocument{{Seq: 1, Document: doc("a", 7, ir.O("z", ir.IRInt(1)), ir.O("b", ir.IRString("<&>")))}}},
	}))

	var body string
	require.NoError(t, s.db.QueryRow("SELECT body FROM documents WHERE id = 'a'").Scan(&body))
	assert.Equal(t, `{"b":"<&>","id":"a","version":7,"z":1}`, body)
}
