// Package memstore is the in-memory docstore.Store used in development and tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

type (
	// DB keeps documents in a table keyed by their full path.
	DB struct {
		docs  *docTable
		fault func(op string, path string) error
	}

	docTable struct {
		t     map[string]map[string]interface{}
		mutex sync.RWMutex
	}
)

var _ docstore.Store = (*DB)(nil)

func Open() *DB {
	return &DB{
		docs: &docTable{t: make(map[string]map[string]interface{})},
	}
}

// FailWith makes every later call for which fn returns an error fail with it, nil clears it.
// Used by tests to simulate store failures.
func (db *DB) FailWith(fn func(op string, path string) error) {
	db.docs.mutex.Lock()
	defer db.docs.mutex.Unlock()
	db.fault = fn
}

func (db *DB) fail(op, path string) error {
	if db.fault == nil {
		return nil
	}
	return db.fault(op, path)
}

func (db *DB) Get(_ context.Context, path string) (docstore.Doc, error) {
	_, id, err := docstore.Split(path)
	if err != nil {
		return docstore.Doc{}, err
	}

	db.docs.mutex.RLock()
	defer db.docs.mutex.RUnlock()

	if err = db.fail("get", path); err != nil {
		return docstore.Doc{}, err
	}
	data, ok := db.docs.t[path]
	if !ok {
		return docstore.Doc{}, docstore.ErrNotFound
	}
	return docstore.Doc{ID: id, Path: path, Data: docstore.Copy(data)}, nil
}

func (db *DB) List(_ context.Context, collection string, filters ...docstore.Filter) ([]docstore.Doc, error) {
	if !docstore.ValidCollection(collection) {
		return nil, docstore.ErrInvalidPath
	}

	db.docs.mutex.RLock()
	defer db.docs.mutex.RUnlock()

	if err := db.fail("list", collection); err != nil {
		return nil, err
	}
	docs := make([]docstore.Doc, 0)
	for path, data := range db.docs.t {
		col, id, _ := docstore.Split(path)
		if col != collection || !docstore.Matches(data, filters) {
			continue
		}
		docs = append(docs, docstore.Doc{ID: id, Path: path, Data: docstore.Copy(data)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (db *DB) Set(ctx context.Context, path string, data map[string]interface{}) error {
	return db.Commit(ctx, docstore.SetOp(path, data))
}

func (db *DB) Merge(ctx context.Context, path string, data map[string]interface{}) error {
	return db.Commit(ctx, docstore.MergeOp(path, data))
}

func (db *DB) DeleteFields(ctx context.Context, path string, fields ...string) error {
	return db.Commit(ctx, docstore.DeleteFieldsOp(path, fields...))
}

func (db *DB) Delete(ctx context.Context, path string) error {
	return db.Commit(ctx, docstore.DeleteOp(path))
}

func (db *DB) Commit(_ context.Context, ops ...docstore.Op) error {
	for _, op := range ops {
		if _, _, err := docstore.Split(op.Path); err != nil {
			return err
		}
	}

	db.docs.mutex.Lock()
	defer db.docs.mutex.Unlock()

	// apply on a copy of the touched documents so a failing op leaves the table untouched
	staged := make(map[string]map[string]interface{}, len(ops))
	deleted := make(map[string]bool, len(ops))
	current := func(path string) (map[string]interface{}, bool) {
		if deleted[path] {
			return nil, false
		}
		if d, ok := staged[path]; ok {
			return d, true
		}
		d, ok := db.docs.t[path]
		if !ok {
			return nil, false
		}
		return docstore.Copy(d), true
	}

	for _, op := range ops {
		if err := db.fail("write", op.Path); err != nil {
			return err
		}
		switch op.Kind {
		case docstore.OpSet:
			staged[op.Path] = docstore.Copy(op.Data)
			if staged[op.Path] == nil {
				staged[op.Path] = make(map[string]interface{})
			}
			delete(deleted, op.Path)
		case docstore.OpMerge:
			d, _ := current(op.Path)
			staged[op.Path] = docstore.DeepMerge(d, op.Data)
			delete(deleted, op.Path)
		case docstore.OpDeleteFields:
			if len(op.Fields) == 0 {
				continue
			}
			d, ok := current(op.Path)
			if !ok {
				return docstore.ErrNotFound
			}
			for _, f := range op.Fields {
				delete(d, f)
			}
			staged[op.Path] = d
		case docstore.OpDelete:
			delete(staged, op.Path)
			deleted[op.Path] = true
		}
	}

	for path := range deleted {
		delete(db.docs.t, path)
	}
	for path, d := range staged {
		db.docs.t[path] = d
	}
	return nil
}

func (db *DB) Close() error { return nil }
