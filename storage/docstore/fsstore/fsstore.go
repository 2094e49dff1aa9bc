// Package fsstore implements docstore.Store on Cloud Firestore.
package fsstore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

// maxBatchWrites is the firestore limit of writes per committed batch.
const maxBatchWrites = 500

type Store struct {
	client *firestore.Client
}

var _ docstore.Store = (*Store)(nil)

// NewApp initializes the firebase app shared by the document store and the identity provider.
func NewApp(ctx context.Context, conf *core.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if conf.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Firebase.CredentialsFile))
	}
	var fbConf *firebase.Config
	if conf.Firebase.ProjectID != "" {
		fbConf = &firebase.Config{ProjectID: conf.Firebase.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConf, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	return app, nil
}

func Open(ctx context.Context, app *firebase.App) (*Store, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening firestore client")
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, path string) (docstore.Doc, error) {
	if _, _, err := docstore.Split(path); err != nil {
		return docstore.Doc{}, err
	}
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return docstore.Doc{}, docstore.ErrNotFound
		}
		return docstore.Doc{}, errors.Wrap(err, "getting "+path)
	}
	return docstore.Doc{ID: snap.Ref.ID, Path: path, Data: snap.Data()}, nil
}

func (s *Store) List(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Doc, error) {
	if !docstore.ValidCollection(collection) {
		return nil, docstore.ErrInvalidPath
	}
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	docs := make([]docstore.Doc, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "listing "+collection)
		}
		docs = append(docs, docstore.Doc{
			ID:   snap.Ref.ID,
			Path: docstore.Join(collection, snap.Ref.ID),
			Data: snap.Data(),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
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

// write is a docstore op in firestore terms.
type write struct {
	kind    docstore.OpKind
	path    string
	data    map[string]interface{}
	updates []firestore.Update // field deletions
}

// toWrites validates ops and translates them. Deleting no field at all produces no write.
func toWrites(ops []docstore.Op) ([]write, error) {
	if len(ops) > maxBatchWrites {
		return nil, errors.Errorf("batch of %d writes exceeds the limit of %d", len(ops), maxBatchWrites)
	}
	writes := make([]write, 0, len(ops))
	for _, op := range ops {
		if _, _, err := docstore.Split(op.Path); err != nil {
			return nil, err
		}
		w := write{kind: op.Kind, path: op.Path}
		switch op.Kind {
		case docstore.OpSet, docstore.OpMerge:
			w.data = op.Data
			if w.data == nil {
				w.data = map[string]interface{}{}
			}
		case docstore.OpDeleteFields:
			if len(op.Fields) == 0 {
				continue
			}
			for _, f := range op.Fields {
				// FieldPath keeps ids such as "a.b@lsu.edu" in one segment
				w.updates = append(w.updates, firestore.Update{FieldPath: firestore.FieldPath{f}, Value: firestore.Delete})
			}
		}
		writes = append(writes, w)
	}
	return writes, nil
}

// Commit writes all ops in one firestore batch.
func (s *Store) Commit(ctx context.Context, ops ...docstore.Op) error {
	writes, err := toWrites(ops)
	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	batch := s.client.Batch()
	for _, w := range writes {
		ref := s.client.Doc(w.path)
		switch w.kind {
		case docstore.OpSet:
			batch.Set(ref, w.data)
		case docstore.OpMerge:
			batch.Set(ref, w.data, firestore.MergeAll)
		case docstore.OpDeleteFields:
			batch.Update(ref, w.updates)
		case docstore.OpDelete:
			batch.Delete(ref)
		}
	}
	if _, err = batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return docstore.ErrNotFound
		}
		return errors.Wrap(err, "committing batch")
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
