// Package docstore abstracts the hierarchical document database the application persists to.
//
// Documents are addressed by slash separated paths alternating collection and document ids,
// e.g. "classrooms/CS101/Projects/Proj1/teams/TeamA". Every backend (memory, firestore, postgres)
// implements the same Store contract so the domain repositories never know which one runs.
package docstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

type (
	// Doc is one stored document.
	Doc struct {
		ID   string
		Path string
		Data map[string]interface{}
	}

	// Filter is an equality condition on a top-level string field.
	Filter struct {
		Field string
		Value string
	}

	OpKind int

	// Op is one write of a batch.
	Op struct {
		Kind   OpKind
		Path   string
		Data   map[string]interface{}
		Fields []string // OpDeleteFields only
	}

	Store interface {
		// Get returns ErrNotFound when the document does not exist.
		Get(ctx context.Context, path string) (Doc, error)
		// List returns the documents of a collection matching all filters, ordered by id.
		List(ctx context.Context, collection string, filters ...Filter) ([]Doc, error)
		// Set creates or replaces a document.
		Set(ctx context.Context, path string, data map[string]interface{}) error
		// Merge creates a document or deep-merges data into it.
		Merge(ctx context.Context, path string, data map[string]interface{}) error
		// DeleteFields removes top-level fields. Returns ErrNotFound when the document does not exist,
		// removing no field at all is a no-op.
		DeleteFields(ctx context.Context, path string, fields ...string) error
		// Delete removes a single document, never its sub-collections. Deleting a missing document is a no-op.
		Delete(ctx context.Context, path string) error
		// Commit applies all ops atomically: either every op is applied or none is.
		Commit(ctx context.Context, ops ...Op) error
		Close() error
	}
)

const (
	OpSet OpKind = iota
	OpMerge
	OpDeleteFields
	OpDelete
)

func SetOp(path string, data map[string]interface{}) Op {
	return Op{Kind: OpSet, Path: path, Data: data}
}

func MergeOp(path string, data map[string]interface{}) Op {
	return Op{Kind: OpMerge, Path: path, Data: data}
}

func DeleteFieldsOp(path string, fields ...string) Op {
	return Op{Kind: OpDeleteFields, Path: path, Fields: fields}
}

func DeleteOp(path string) Op {
	return Op{Kind: OpDelete, Path: path}
}

// Join builds a path from its segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split validates a document path and returns its collection path and document id.
func Split(path string) (collection, id string, err error) {
	segs := strings.Split(path, "/")
	if len(segs) < 2 || len(segs)%2 != 0 {
		return "", "", ErrInvalidPath
	}
	for _, s := range segs {
		if s == "" {
			return "", "", ErrInvalidPath
		}
	}
	return strings.Join(segs[:len(segs)-1], "/"), segs[len(segs)-1], nil
}

// Parent returns the path of the document owning a collection, "" for root collections.
func Parent(collection string) string {
	i := strings.LastIndex(collection, "/")
	if i < 0 {
		return ""
	}
	return collection[:i]
}

// ValidCollection reports whether a collection path has an odd number of non-empty segments.
func ValidCollection(collection string) bool {
	segs := strings.Split(collection, "/")
	if len(segs)%2 != 1 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}

// DeepMerge merges src into dst, recursing into nested maps. dst is modified in place and returned.
func DeepMerge(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		if sm, ok := v.(map[string]interface{}); ok {
			if dm, ok := dst[k].(map[string]interface{}); ok {
				dst[k] = DeepMerge(dm, sm)
				continue
			}
			dst[k] = DeepMerge(nil, sm)
			continue
		}
		dst[k] = v
	}
	return dst
}

// Copy returns a deep copy of a document's data.
func Copy(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	return DeepMerge(nil, data)
}

// Matches reports whether the data satisfies all filters.
func Matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		s, ok := data[f.Field].(string)
		if !ok || s != f.Value {
			return false
		}
	}
	return true
}
