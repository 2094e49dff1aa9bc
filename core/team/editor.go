// Package team implements the team assignment editor: the partition of a classroom's roster
// into an unassigned pool and the teams of one project.
package team

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/project"
)

// Unassigned names the pool of students in no team in a move.
const Unassigned = ""

var (
	// errors
	ErrEmptyName = core.NewValidationError(
		errors.New("Team name is required."),
		core.FieldError{Field: "teamName", Error: "teamName is a required field"},
	)
	ErrInvalidName = core.NewValidationError(
		errors.New("Team name must not contain '/' and must not be '.' or '..'."),
		core.FieldError{Field: "teamName", Error: "teamName is not a valid name"},
	)
	ErrStudentNotFound = core.NewNotFoundError("Student not found in the editor.")
)

// DuplicateNameError is returned when a team name is already taken in the project.
func DuplicateNameError(name string) error {
	return core.NewConflictError("Team name \"" + name + "\" already exists.")
}

// State is the editor view of a project: who is unassigned and who is in which team.
type State struct {
	Unassigned []project.Member `json:"unassigned"`
	Teams      []project.Team   `json:"teams"`
}

// Count returns the number of students across the pool and all teams.
func (s State) Count() int {
	n := len(s.Unassigned)
	for _, t := range s.Teams {
		n += len(t.Members)
	}
	return n
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Unassigned: copyMembers(s.Unassigned),
		Teams:      make([]project.Team, len(s.Teams)),
	}
	for i, t := range s.Teams {
		out.Teams[i] = project.Team{Name: t.Name, Members: copyMembers(t.Members)}
	}
	return out
}

func copyMembers(members []project.Member) []project.Member {
	out := make([]project.Member, len(members))
	copy(out, members)
	return out
}

func (s State) teamIndex(name string) int {
	for i, t := range s.Teams {
		if project.SameName(t.Name, name) {
			return i
		}
	}
	return -1
}

// CreateTeam appends an empty team. The trimmed name must be non-empty and free, case-insensitively.
func (s State) CreateTeam(name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrEmptyName
	}
	if !project.ValidTeamName(name) {
		return s, ErrInvalidName
	}
	if i := s.teamIndex(name); i >= 0 {
		return s, DuplicateNameError(s.Teams[i].Name)
	}
	out := s.Clone()
	out.Teams = append(out.Teams, project.Team{Name: name, Members: []project.Member{}})
	return out, nil
}

// MoveStudent takes a student out of from and puts them in to. Either may be Unassigned.
// A student already in to is not added twice.
func (s State) MoveStudent(studentID, from, to string) (State, error) {
	out := s.Clone()

	src, err := out.members(from)
	if err != nil {
		return s, err
	}
	dst, err := out.members(to)
	if err != nil {
		return s, err
	}

	i := indexOf(*src, studentID)
	if i < 0 {
		return s, ErrStudentNotFound
	}
	m := (*src)[i]
	if src == dst {
		return out, nil
	}
	*src = append((*src)[:i], (*src)[i+1:]...)
	if indexOf(*dst, studentID) < 0 {
		*dst = append(*dst, m)
	}
	return out, nil
}

// DeleteTeam removes a team and returns its members to the pool.
func (s State) DeleteTeam(name string) (State, error) {
	i := s.teamIndex(name)
	if i < 0 {
		return s, core.NewNotFoundError("Team \"" + name + "\" does not exist.")
	}
	out := s.Clone()
	for _, m := range out.Teams[i].Members {
		if indexOf(out.Unassigned, m.StudentID) < 0 {
			out.Unassigned = append(out.Unassigned, m)
		}
	}
	out.Teams = append(out.Teams[:i], out.Teams[i+1:]...)
	return out, nil
}

func (s *State) members(team string) (*[]project.Member, error) {
	if team == Unassigned {
		return &s.Unassigned, nil
	}
	i := s.teamIndex(team)
	if i < 0 {
		return nil, core.NewNotFoundError("Team \"" + team + "\" does not exist.")
	}
	return &s.Teams[i].Members, nil
}

func indexOf(members []project.Member, studentID string) int {
	for i, m := range members {
		if m.StudentID == studentID {
			return i
		}
	}
	return -1
}

// Command kinds
const (
	CmdCreateTeam = "createTeam"
	CmdMove       = "move"
	CmdDeleteTeam = "deleteTeam"
)

// Command is one editor gesture.
type Command struct {
	Kind      string `json:"kind"`
	Team      string `json:"team,omitempty"` // createTeam, deleteTeam
	StudentID string `json:"studentId,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// Apply returns the state after cmd. state is never modified.
func Apply(state State, cmd Command) (State, error) {
	switch cmd.Kind {
	case CmdCreateTeam:
		return state.CreateTeam(cmd.Team)
	case CmdMove:
		return state.MoveStudent(cmd.StudentID, cmd.From, cmd.To)
	case CmdDeleteTeam:
		return state.DeleteTeam(cmd.Team)
	default:
		return state, core.NewValidationError(errors.Errorf("Unknown command %q.", cmd.Kind))
	}
}

// Assignments serializes the teams the way they are saved: team name -> student ids.
func (s State) Assignments() []Assignment {
	out := make([]Assignment, 0, len(s.Teams))
	for _, t := range s.Teams {
		a := Assignment{Name: t.Name, Students: make([]string, 0, len(t.Members))}
		for _, m := range t.Members {
			a.Students = append(a.Students, m.StudentID)
		}
		out = append(out, a)
	}
	return out
}
