package team

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/project"
)

func members(ids ...string) []project.Member {
	out := make([]project.Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, project.Member{StudentID: id, Name: "Student, " + id})
	}
	return out
}

func newState() State {
	return State{
		Unassigned: members("s1", "s2", "s3"),
		Teams: []project.Team{
			{Name: "Red", Members: members("s4")},
			{Name: "Blue", Members: members()},
		},
	}
}

func ids(ms []project.Member) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.StudentID)
	}
	return out
}

func TestState_CreateTeam(t *testing.T) {
	tests := []struct {
		name    string
		team    string
		wantErr bool
		check   func(error) bool
	}{
		{name: "new", team: "  Green "},
		{name: "empty", team: "   ", wantErr: true, check: core.IsValidation},
		{name: "slash", team: "a/b", wantErr: true, check: core.IsValidation},
		{name: "taken", team: "Red", wantErr: true, check: core.IsConflict},
		{name: "taken (case)", team: "bLUE", wantErr: true, check: core.IsConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState()
			got, err := s.CreateTeam(tt.team)
			if tt.wantErr {
				assert.True(t, tt.check(err), err)
				assert.Equal(t, newState(), got)
				return
			}
			require.NoError(t, err)
			require.Len(t, got.Teams, 3)
			assert.Equal(t, "Green", got.Teams[2].Name)
			assert.NotNil(t, got.Teams[2].Members)
			assert.Len(t, s.Teams, 2)
		})
	}
}

func TestState_MoveStudent(t *testing.T) {
	s := newState()

	got, err := s.MoveStudent("s1", Unassigned, "Red")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3"}, ids(got.Unassigned))
	assert.Equal(t, []string{"s4", "s1"}, ids(got.Teams[0].Members))
	assert.Equal(t, newState(), s)

	got, err = got.MoveStudent("s4", "red", "Blue")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids(got.Teams[0].Members))
	assert.Equal(t, []string{"s4"}, ids(got.Teams[1].Members))

	got, err = got.MoveStudent("s4", "Blue", Unassigned)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3", "s4"}, ids(got.Unassigned))

	same, err := got.MoveStudent("s2", Unassigned, Unassigned)
	require.NoError(t, err)
	assert.Equal(t, got, same)

	_, err = s.MoveStudent("s9", Unassigned, "Red")
	assert.Equal(t, ErrStudentNotFound, err)
	_, err = s.MoveStudent("s4", "Green", "Red")
	assert.True(t, core.IsNotFound(err))
	_, err = s.MoveStudent("s1", Unassigned, "Green")
	assert.True(t, core.IsNotFound(err))
}

func TestState_DeleteTeam(t *testing.T) {
	s := newState()
	// s4 in both Red and the pool must not come back twice
	s.Unassigned = append(s.Unassigned, members("s4")...)

	got, err := s.DeleteTeam("RED")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, ids(got.Unassigned))
	require.Len(t, got.Teams, 1)
	assert.Equal(t, "Blue", got.Teams[0].Name)
	assert.Len(t, s.Teams, 2)

	_, err = s.DeleteTeam("Green")
	assert.True(t, core.IsNotFound(err))
}

func TestApply(t *testing.T) {
	s := newState()
	got, err := Apply(s, Command{Kind: CmdCreateTeam, Team: "Green"})
	require.NoError(t, err)
	got, err = Apply(got, Command{Kind: CmdMove, StudentID: "s2", From: Unassigned, To: "Green"})
	require.NoError(t, err)
	got, err = Apply(got, Command{Kind: CmdDeleteTeam, Team: "Red"})
	require.NoError(t, err)

	assert.Equal(t, []Assignment{
		{Name: "Blue", Students: []string{}},
		{Name: "Green", Students: []string{"s2"}},
	}, got.Assignments())
	assert.Equal(t, []string{"s1", "s3", "s4"}, ids(got.Unassigned))

	unchanged, err := Apply(s, Command{Kind: "shuffle"})
	assert.True(t, core.IsValidation(err))
	assert.Equal(t, s, unchanged)
}

// Any sequence of commands keeps every student exactly once, keeps team names unique
// and never modifies the state it is applied to.
func TestApply_Invariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	teamNames := []string{"Red", "red", "Blue", "Green", "Yellow"}
	students := []string{"s1", "s2", "s3", "s4", "s5"}
	pick := func(xs []string) string { return xs[rnd.Intn(len(xs))] }
	place := func(s State) string {
		if len(s.Teams) == 0 || rnd.Intn(3) == 0 {
			return Unassigned
		}
		return s.Teams[rnd.Intn(len(s.Teams))].Name
	}

	s := State{Unassigned: members(students...), Teams: []project.Team{}}
	for i := 0; i < 500; i++ {
		var cmd Command
		switch rnd.Intn(4) {
		case 0:
			cmd = Command{Kind: CmdCreateTeam, Team: pick(teamNames)}
		case 1:
			cmd = Command{Kind: CmdDeleteTeam, Team: pick(teamNames)}
		default:
			cmd = Command{Kind: CmdMove, StudentID: pick(students), From: place(s), To: place(s)}
		}

		before := s.Clone()
		next, err := Apply(s, cmd)
		require.Equal(t, before, s, "step %d: %+v modified its input", i, cmd)
		if err != nil {
			require.Equal(t, s, next)
			continue
		}
		s = next

		require.Equal(t, len(students), s.Count(), "step %d: %+v", i, cmd)
		seen := make(map[string]bool)
		all := append([]project.Member{}, s.Unassigned...)
		for j, tm := range s.Teams {
			all = append(all, tm.Members...)
			for _, other := range s.Teams[j+1:] {
				require.False(t, project.SameName(tm.Name, other.Name), "step %d: %q twice", i, tm.Name)
			}
		}
		for _, m := range all {
			require.False(t, seen[m.StudentID], "step %d: %s twice", i, m.StudentID)
			seen[m.StudentID] = true
		}
	}
}
