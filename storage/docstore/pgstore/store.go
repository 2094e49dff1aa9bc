// Package pgstore implements docstore.Store on PostgreSQL: one JSONB row per document.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

type docRow struct {
	Path       string      `db:"path"`
	Collection string      `db:"collection"`
	DocID      string      `db:"doc_id"`
	ParentPath null.String `db:"parent_path"`
	Data       []byte      `db:"data"`
}

func (r docRow) doc() (docstore.Doc, error) {
	data := make(map[string]interface{})
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return docstore.Doc{}, errors.Wrap(err, "decoding "+r.Path)
		}
	}
	return docstore.Doc{ID: r.DocID, Path: r.Path, Data: data}, nil
}

type Store struct {
	db *sqlx.DB
}

var _ docstore.Store = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, path string) (docstore.Doc, error) {
	if _, _, err := docstore.Split(path); err != nil {
		return docstore.Doc{}, err
	}
	var row docRow
	err := s.db.GetContext(ctx, &row, `SELECT path, collection, doc_id, parent_path, data FROM documents WHERE path = $1`, path)
	if err != nil {
		if err == sql.ErrNoRows {
			return docstore.Doc{}, docstore.ErrNotFound
		}
		return docstore.Doc{}, errors.Wrap(err, "getting "+path)
	}
	return row.doc()
}

func (s *Store) List(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Doc, error) {
	if !docstore.ValidCollection(collection) {
		return nil, docstore.ErrInvalidPath
	}

	query, args := listQuery(collection, filters)
	var rows []docRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing "+collection)
	}
	docs := make([]docstore.Doc, 0, len(rows))
	for _, r := range rows {
		d, err := r.doc()
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *Store) Set(ctx context.Context, path string, data map[string]interface{}) error {
	return s.Commit(ctx, docstore.SetOp(path, data))
}

func (s *Store) Merge(ctx context.Context, path string, data map[string]interface{}) error {
	return s.Commit(ctx, docstore.MergeOp(path, data))
}

func (s *Store) DeleteFields(ctx context.Context, path string, fields ...string) error {
	return s.Commit(ctx, docstore.DeleteFieldsOp(path, fields...))
}

func (s *Store) Delete(ctx context.Context, path string) error {
	return s.Commit(ctx, docstore.DeleteOp(path))
}

// Commit applies all ops in one transaction.
func (s *Store) Commit(ctx context.Context, ops ...docstore.Op) (err error) {
	if len(ops) == 0 {
		return nil
	}
	for _, op := range ops {
		if _, _, err = docstore.Split(op.Path); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, op := range ops {
		switch op.Kind {
		case docstore.OpSet:
			err = upsert(ctx, tx, op.Path, op.Data)
		case docstore.OpMerge:
			err = merge(ctx, tx, op.Path, op.Data)
		case docstore.OpDeleteFields:
			err = deleteFields(ctx, tx, op.Path, op.Fields)
		case docstore.OpDelete:
			_, err = tx.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, op.Path)
			err = errors.Wrap(err, "deleting "+op.Path)
		}
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// listQuery selects the documents of one collection, every filter being an equality on a
// top-level text field.
func listQuery(collection string, filters []docstore.Filter) (string, []interface{}) {
	var q strings.Builder
	q.WriteString(`SELECT path, collection, doc_id, parent_path, data FROM documents WHERE collection = $1`)
	args := []interface{}{collection}
	for _, f := range filters {
		args = append(args, f.Field, f.Value)
		q.WriteString(" AND data->>$" + strconv.Itoa(len(args)-1) + " = $" + strconv.Itoa(len(args)))
	}
	q.WriteString(" ORDER BY doc_id")
	return q.String(), args
}

// newDocRow encodes a document. Times become RFC 3339 strings.
func newDocRow(path string, data map[string]interface{}) (docRow, error) {
	collection, id, err := docstore.Split(path)
	if err != nil {
		return docRow{}, err
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return docRow{}, errors.Wrap(err, "encoding "+path)
	}
	parent := docstore.Parent(collection)
	return docRow{
		Path:       path,
		Collection: collection,
		DocID:      id,
		ParentPath: null.NewString(parent, parent != ""),
		Data:       raw,
	}, nil
}

// mergeData deep merges patch into the stored JSON document raw (empty when there is none).
// The patch goes through JSON first so its values have the same types as stored ones.
func mergeData(raw []byte, patch map[string]interface{}) (map[string]interface{}, error) {
	current := make(map[string]interface{})
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &current); err != nil {
			return nil, err
		}
	}
	if patch == nil {
		return current, nil
	}
	b, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	normalized := make(map[string]interface{})
	if err = json.Unmarshal(b, &normalized); err != nil {
		return nil, err
	}
	return docstore.DeepMerge(current, normalized), nil
}

func upsert(ctx context.Context, tx *sqlx.Tx, path string, data map[string]interface{}) error {
	row, err := newDocRow(path, data)
	if err != nil {
		return err
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO documents (path, collection, doc_id, parent_path, data)
		VALUES (:path, :collection, :doc_id, :parent_path, :data)
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, row)
	return errors.Wrap(err, "writing "+path)
}

func merge(ctx context.Context, tx *sqlx.Tx, path string, data map[string]interface{}) error {
	var raw []byte
	err := tx.GetContext(ctx, &raw, `SELECT data FROM documents WHERE path = $1 FOR UPDATE`, path)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "locking "+path)
	}
	merged, err := mergeData(raw, data)
	if err != nil {
		return errors.Wrap(err, "merging "+path)
	}
	return upsert(ctx, tx, path, merged)
}

func deleteFields(ctx context.Context, tx *sqlx.Tx, path string, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = data - $2::text[], updated_at = now() WHERE path = $1`,
		path, pq.Array(fields),
	)
	if err != nil {
		return errors.Wrap(err, "deleting fields of "+path)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting fields of "+path)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}
