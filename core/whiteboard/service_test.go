package whiteboard_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/core/team"
	"github.com/SaramshGautam/collaBoard/core/whiteboard"
	"github.com/SaramshGautam/collaBoard/testutil"
)

var (
	ctx     = context.Background()
	teacher = testutil.Teacher("prof@lsu.edu")
	alice   = testutil.Student("alice@lsu.edu", "890001")
	bob     = core.Session{Email: "Bob@lsu.edu", Name: "Bob Jones", Role: core.RoleStudent}
	carol   = testutil.Student("carol@lsu.edu", "890003")

	redRoom = whiteboard.Ref{Classroom: "CS101", Project: "Proj1", Team: "Red"}
)

func newEnv(t *testing.T) *testutil.Env {
	env := testutil.NewEnv(t)
	testutil.CreateClassroom(t, env, teacher, "CS101",
		"Alice,Smith,alice@lsu.edu,890001",
		"Bob,Jones,bob@lsu.edu,",
		"Carol,White,carol@lsu.edu,890003",
	)
	testutil.CreateProject(t, env, teacher, "CS101", "Proj1")
	testutil.SaveTeams(t, env, teacher, "CS101", "Proj1",
		team.Assignment{Name: "Red", Students: []string{"890001", "bob@lsu.edu"}},
		team.Assignment{Name: "Blue", Students: []string{"890003"}},
	)
	return env
}

func TestRoomID(t *testing.T) {
	assert.Equal(t, "collaBoard-CS101/Proj1/Red", whiteboard.RoomID("CS101", "Proj1", "Red"))
	assert.Equal(t, whiteboard.RoomID("CS101", "Proj1", "Red"), redRoom.RoomID())

	// same concatenation, different triples
	triples := [][3]string{
		{"a/b", "c", "d"},
		{"a", "b/c", "d"},
		{"a", "b", "c/d"},
		{"ab", "c", "d"},
		{"a", "bc", "d"},
		{"a b", "c", "d"},
		{"a%20b", "c", "d"},
	}
	seen := make(map[string][3]string)
	for _, tr := range triples {
		id := whiteboard.RoomID(tr[0], tr[1], tr[2])
		prev, dup := seen[id]
		assert.False(t, dup, "%v and %v share %s", prev, tr, id)
		seen[id] = tr
		assert.Equal(t, id, whiteboard.RoomID(tr[0], tr[1], tr[2]))
	}
}

func TestService_OpenRoom(t *testing.T) {
	tests := []struct {
		name    string
		sess    core.Session
		ref     whiteboard.Ref
		wantErr error
		touched string
	}{
		{name: "owning teacher", sess: teacher, ref: redRoom},
		{name: "member by lsu id", sess: alice, ref: redRoom, touched: "890001"},
		{name: "member by email", sess: bob, ref: redRoom, touched: "bob@lsu.edu"},
		{name: "classmate of another team", sess: carol, ref: redRoom, wantErr: whiteboard.ErrNotMember},
		{name: "other teacher", sess: testutil.Teacher("other@lsu.edu"), ref: redRoom, wantErr: classroom.ErrNoAccess},
		{name: "unknown team", sess: teacher, ref: whiteboard.Ref{Classroom: "CS101", Project: "Proj1", Team: "Green"}, wantErr: project.ErrTeamNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			room, err := env.WhiteboardSvc.OpenRoom(ctx, tt.sess, tt.ref)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "collaBoard-CS101/Proj1/Red", room.ID)
			assert.Equal(t, "wss://sync.test/connect/collaBoard-CS101%2FProj1%2FRed", room.SyncURL)
			assert.Len(t, room.Members, 2)
			require.Len(t, room.Breadcrumbs, 5)
			assert.Equal(t, core.HomePath(tt.sess.Role), room.Breadcrumbs[0].Path)
			assert.Equal(t, "/whiteboard/CS101/Proj1/Red", room.Breadcrumbs[4].Path)

			stored, err := env.ProjectRepo.GetTeam(ctx, "CS101", "Proj1", "Red")
			require.NoError(t, err)
			for _, m := range stored.Members {
				if m.StudentID == tt.touched {
					assert.NotNil(t, m.LastAccessed, m.StudentID)
				} else {
					assert.Nil(t, m.LastAccessed, m.StudentID)
				}
			}

			history, err := env.WhiteboardSvc.History(ctx, tt.sess, tt.ref)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, whiteboard.ActionOpen, history[0].Kind)
		})
	}
}

// last access times survive a later save of the same team
func TestService_OpenRoom_KeepsAccessAcrossSaves(t *testing.T) {
	env := newEnv(t)
	_, err := env.WhiteboardSvc.OpenRoom(ctx, alice, redRoom)
	require.NoError(t, err)

	testutil.SaveTeams(t, env, teacher, "CS101", "Proj1",
		team.Assignment{Name: "Red", Students: []string{"890001", "bob@lsu.edu", "890003"}},
	)
	stored, err := env.ProjectRepo.GetTeam(ctx, "CS101", "Proj1", "Red")
	require.NoError(t, err)
	require.Len(t, stored.Members, 3)
	for _, m := range stored.Members {
		if m.StudentID == "890001" {
			assert.NotNil(t, m.LastAccessed)
		}
	}
}

func TestService_Overlay(t *testing.T) {
	env := newEnv(t)

	_, err := env.WhiteboardSvc.React(ctx, alice, redRoom, "shape:1", whiteboard.ReactionLike)
	require.NoError(t, err)
	_, err = env.WhiteboardSvc.React(ctx, bob, redRoom, "shape:1", whiteboard.ReactionLike)
	require.NoError(t, err)
	s, err := env.WhiteboardSvc.React(ctx, teacher, redRoom, "shape:1", whiteboard.ReactionImportant)
	require.NoError(t, err)
	assert.Equal(t, whiteboard.Summary{
		ShapeID:   "shape:1",
		Reactions: map[string]int{"like": 2, "dislike": 0, "confusion": 0, "important": 1},
	}, s)

	c, err := env.WhiteboardSvc.AddComment(ctx, alice, redRoom, "shape:1", "  Looks good  ")
	require.NoError(t, err)
	assert.Equal(t, "Looks good", c.Text)
	assert.Equal(t, "alice@lsu.edu", c.Author)
	assert.NotEmpty(t, c.ID)
	_, err = env.WhiteboardSvc.AddComment(ctx, bob, redRoom, "shape:1", "Agreed")
	require.NoError(t, err)
	_, err = env.WhiteboardSvc.AddComment(ctx, bob, redRoom, "shape:2", "Other shape")
	require.NoError(t, err)

	comments, err := env.WhiteboardSvc.Comments(ctx, teacher, redRoom, "shape:1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Looks good", comments[0].Text)
	assert.Equal(t, "Bob Jones", comments[1].Author)

	s, err = env.WhiteboardSvc.Summary(ctx, alice, redRoom, "shape:1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.CommentCount)
	assert.Equal(t, 2, s.Reactions["like"])

	empty, err := env.WhiteboardSvc.Comments(ctx, alice, redRoom, "shape:9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	// rooms do not share overlays
	blue := whiteboard.Ref{Classroom: "CS101", Project: "Proj1", Team: "Blue"}
	s, err = env.WhiteboardSvc.Summary(ctx, carol, blue, "shape:1")
	require.NoError(t, err)
	assert.Zero(t, s.CommentCount)
	assert.Zero(t, s.Reactions["like"])

	history, err := env.WhiteboardSvc.History(ctx, alice, redRoom)
	require.NoError(t, err)
	kinds := make([]string, 0, len(history))
	for _, a := range history {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []string{"react", "react", "react", "comment", "comment", "comment"}, kinds)
	assert.Equal(t, "Prof prof", history[2].Author)
	assert.Equal(t, "important", history[2].Detail)

	_, err = env.WhiteboardSvc.Comments(ctx, carol, redRoom, "shape:1")
	assert.Equal(t, whiteboard.ErrNotMember, err)
}

func TestService_Overlay_Validation(t *testing.T) {
	env := newEnv(t)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "reaction without shape",
			call: func() error {
				_, err := env.WhiteboardSvc.React(ctx, alice, redRoom, "", whiteboard.ReactionLike)
				return err
			},
			wantErr: whiteboard.ErrShapeMissing,
		},
		{
			name: "comment without shape",
			call: func() error {
				_, err := env.WhiteboardSvc.AddComment(ctx, alice, redRoom, "", "hi")
				return err
			},
			wantErr: whiteboard.ErrShapeMissing,
		},
		{
			name: "blank comment",
			call: func() error {
				_, err := env.WhiteboardSvc.AddComment(ctx, alice, redRoom, "shape:1", " \n ")
				return err
			},
			wantErr: whiteboard.ErrEmptyComment,
		},
		{
			name: "long comment",
			call: func() error {
				_, err := env.WhiteboardSvc.AddComment(ctx, alice, redRoom, "shape:1", strings.Repeat("é", 1001))
				return err
			},
			wantErr: whiteboard.ErrCommentTooLong,
		},
		{
			name: "non member",
			call: func() error {
				_, err := env.WhiteboardSvc.React(ctx, carol, redRoom, "shape:1", whiteboard.ReactionLike)
				return err
			},
			wantErr: whiteboard.ErrNotMember,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.call())
		})
	}

	_, err := env.WhiteboardSvc.React(ctx, alice, redRoom, "shape:1", "love")
	assert.True(t, core.IsValidation(err))

	_, err = env.WhiteboardSvc.AddComment(ctx, alice, redRoom, "shape:1", strings.Repeat("é", 1000))
	assert.NoError(t, err)
}

func TestService_History_Limit(t *testing.T) {
	env := newEnv(t)
	for i := 0; i < 205; i++ {
		_, err := env.WhiteboardSvc.AddComment(ctx, alice, redRoom, "shape:1", fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}
	history, err := env.WhiteboardSvc.History(ctx, teacher, redRoom)
	require.NoError(t, err)
	require.Len(t, history, 200)
	assert.Equal(t, "comment 5", history[0].Detail)
	assert.Equal(t, "comment 204", history[199].Detail)
}
