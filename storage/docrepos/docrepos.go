// Package docrepos implements the domain repositories on top of any docstore.Store.
//
// Layout:
//
//	users/{email}
//	classrooms/{courseID}
//	classrooms/{courseID}/students/{studentID}
//	classrooms/{courseID}/Projects/{projectName}
//	classrooms/{courseID}/Projects/{projectName}/teams/{teamName}
package docrepos

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

const (
	colUsers      = "users"
	colClassrooms = "classrooms"
	colStudents   = "students"
	colProjects   = "Projects"
	colTeams      = "teams"

	// writes per commit when a change does not need to be atomic
	chunkSize = 400
)

func userPath(email string) string { return docstore.Join(colUsers, email) }

func classroomPath(courseID string) string { return docstore.Join(colClassrooms, courseID) }

func studentsCol(courseID string) string {
	return docstore.Join(colClassrooms, courseID, colStudents)
}

func studentPath(courseID, studentID string) string {
	return docstore.Join(studentsCol(courseID), studentID)
}

func projectsCol(courseID string) string {
	return docstore.Join(colClassrooms, courseID, colProjects)
}

func projectPath(courseID, name string) string {
	return docstore.Join(projectsCol(courseID), name)
}

func teamsCol(courseID, project string) string {
	return docstore.Join(projectPath(courseID, project), colTeams)
}

func teamPath(courseID, project, team string) string {
	return docstore.Join(teamsCol(courseID, project), team)
}

// decode fills out from document data. Times may be stored natively or as RFC 3339 strings.
func decode(data map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		WeaklyTypedInput: true,
		TagName:          "doc",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

// storeError turns a store failure into a domain error: notFound for missing documents,
// a RepositoryError carrying msg otherwise.
func storeError(err error, msg string, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Cause(err) == docstore.ErrNotFound {
		return notFound
	}
	return core.NewRepositoryError(msg, err)
}

// commitChunked commits ops in several batches. Batches already committed stay when a later one fails.
func commitChunked(ctx context.Context, store docstore.Store, ops []docstore.Op) error {
	for len(ops) > 0 {
		n := chunkSize
		if len(ops) < n {
			n = len(ops)
		}
		if err := store.Commit(ctx, ops[:n]...); err != nil {
			return err
		}
		ops = ops[n:]
	}
	return nil
}
