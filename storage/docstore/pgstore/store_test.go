package pgstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

func TestListQuery(t *testing.T) {
	q, args := listQuery("classrooms/CS101/students", []docstore.Filter{
		{Field: "email", Value: "a@lsu.edu"},
		{Field: "lsuID", Value: "890001"},
	})
	assert.Equal(t,
		`SELECT path, collection, doc_id, parent_path, data FROM documents WHERE collection = $1`+
			` AND data->>$2 = $3 AND data->>$4 = $5 ORDER BY doc_id`,
		q,
	)
	assert.Equal(t, []interface{}{"classrooms/CS101/students", "email", "a@lsu.edu", "lsuID", "890001"}, args)

	q, args = listQuery("classrooms", nil)
	assert.Equal(t, `SELECT path, collection, doc_id, parent_path, data FROM documents WHERE collection = $1 ORDER BY doc_id`, q)
	assert.Len(t, args, 1)
}

func TestNewDocRow(t *testing.T) {
	row, err := newDocRow("classrooms/CS101", nil)
	require.NoError(t, err)
	assert.Equal(t, "classrooms", row.Collection)
	assert.Equal(t, "CS101", row.DocID)
	assert.False(t, row.ParentPath.Valid)
	assert.JSONEq(t, `{}`, string(row.Data))

	row, err = newDocRow("classrooms/CS101/Projects/P1/teams/Red", map[string]interface{}{"s1": map[string]interface{}{"name": "Doe, Jane"}})
	require.NoError(t, err)
	assert.Equal(t, "classrooms/CS101/Projects/P1/teams", row.Collection)
	assert.Equal(t, "Red", row.DocID)
	assert.True(t, row.ParentPath.Valid)
	assert.Equal(t, "classrooms/CS101/Projects/P1", row.ParentPath.String)

	_, err = newDocRow("classrooms", nil)
	assert.Equal(t, docstore.ErrInvalidPath, err)
}

func TestMergeData(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 30, 0, 123000000, time.UTC)
	stored := []byte(`{"s1": {"name": "Doe, Jane", "email": "jane@lsu.edu"}, "s2": {"name": "Roe, John"}}`)

	merged, err := mergeData(stored, map[string]interface{}{
		"s1": map[string]interface{}{"lastAccessed": at},
		"s3": map[string]interface{}{"name": "Poe, Ann"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"s1": map[string]interface{}{"name": "Doe, Jane", "email": "jane@lsu.edu", "lastAccessed": "2024-03-04T10:30:00.123Z"},
		"s2": map[string]interface{}{"name": "Roe, John"},
		"s3": map[string]interface{}{"name": "Poe, Ann"},
	}, merged)

	// times come back as strings that parse to the same instant
	parsed, err := time.Parse(time.RFC3339Nano, merged["s1"].(map[string]interface{})["lastAccessed"].(string))
	require.NoError(t, err)
	assert.True(t, at.Equal(parsed))

	merged, err = mergeData(nil, map[string]interface{}{"n": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"n": float64(3)}, merged)

	_, err = mergeData([]byte(`not json`), nil)
	assert.Error(t, err)
}

func TestDocRow_doc(t *testing.T) {
	row, err := newDocRow("users/a@lsu.edu", map[string]interface{}{"role": "teacher"})
	require.NoError(t, err)
	doc, err := row.doc()
	require.NoError(t, err)
	assert.Equal(t, docstore.Doc{ID: "a@lsu.edu", Path: "users/a@lsu.edu", Data: map[string]interface{}{"role": "teacher"}}, doc)

	_, err = docRow{Path: "users/x", Data: []byte(`{`)}.doc()
	assert.Error(t, err)
}

// TestStore runs against the database of the test configuration when it is postgres.
func TestStore(t *testing.T) {
	conf := core.NewConfig()
	if conf.Database.Engine != "postgres" {
		t.Skip("database.engine is not postgres")
	}
	require.NoError(t, CreateIfNotExist(conf))
	db, err := Open(conf)
	require.NoError(t, err)
	require.NoError(t, Migrate(db.DB, "up"))
	s := New(db)
	defer s.Close()

	ctx := context.Background()
	root := "classrooms/" + uuid.NewString()
	team := root + "/Projects/P1/teams/Red"
	defer func() {
		_ = s.Commit(ctx, docstore.DeleteOp(root), docstore.DeleteOp(team))
	}()

	require.NoError(t, s.Set(ctx, root, map[string]interface{}{"teacherEmail": "t@lsu.edu"}))
	require.NoError(t, s.Merge(ctx, team, map[string]interface{}{"s1": map[string]interface{}{"name": "Doe, Jane"}}))
	require.NoError(t, s.Merge(ctx, team, map[string]interface{}{"s1": map[string]interface{}{"email": "jane@lsu.edu"}, "s2": "x"}))

	doc, err := s.Get(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"s1": map[string]interface{}{"name": "Doe, Jane", "email": "jane@lsu.edu"},
		"s2": "x",
	}, doc.Data)

	require.NoError(t, s.DeleteFields(ctx, team, "s2"))
	doc, err = s.Get(ctx, team)
	require.NoError(t, err)
	assert.NotContains(t, doc.Data, "s2")
	assert.Equal(t, docstore.ErrNotFound, s.DeleteFields(ctx, root+"/Projects/P1/teams/None", "s1"))

	docs, err := s.List(ctx, root+"/Projects/P1/teams")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Red", docs[0].ID)

	// a failing op rolls back the whole batch
	err = s.Commit(ctx,
		docstore.DeleteOp(team),
		docstore.DeleteFieldsOp(root+"/Projects/P1/teams/None", "s1"),
	)
	assert.Equal(t, docstore.ErrNotFound, err)
	_, err = s.Get(ctx, team)
	assert.NoError(t, err)
}
