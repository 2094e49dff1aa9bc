package team

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/project"
)

const assignmentTemplate = "team_assignment"

// Assignment is a team as sent by the editor: name and student ids.
type Assignment struct {
	Name     string   `json:"teamName"`
	Students []string `json:"students"`
}

type (
	Service interface {
		// Load returns the editor state of a project: teams as stored and the students in none of them.
		Load(ctx context.Context, sess core.Session, courseID, projectName string) (State, error)
		// Save stores the given teams in one batch.
		Save(ctx context.Context, sess core.Session, courseID, projectName string, teams []Assignment) error
		DeleteTeam(ctx context.Context, sess core.Session, courseID, projectName, team string) error
	}

	service struct {
		conf       *core.Config
		classrooms classroom.Service
		projects   project.Service
		repo       project.Repository
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	conf *core.Config,
	classrooms classroom.Service,
	projects project.Service,
	repo project.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) Service {
	return &service{
		conf:       conf,
		classrooms: classrooms,
		projects:   projects,
		repo:       repo,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func (svc *service) Load(ctx context.Context, sess core.Session, courseID, projectName string) (State, error) {
	students, err := svc.classrooms.ListStudents(ctx, sess, courseID)
	if err != nil {
		return State{}, err
	}
	detail, err := svc.projects.Read(ctx, sess, courseID, projectName)
	if err != nil {
		return State{}, err
	}

	assigned := make(map[string]bool)
	for _, t := range detail.Teams {
		for _, m := range t.Members {
			assigned[m.StudentID] = true
		}
	}
	state := State{Unassigned: []project.Member{}, Teams: detail.Teams}
	for _, s := range students {
		if !assigned[s.ID] {
			state.Unassigned = append(state.Unassigned, member(s))
		}
	}
	return state, nil
}

// Save writes every given team in full. Students they take are removed from the other stored teams,
// and teams left empty are deleted. Concurrent saves are not detected: the last one wins.
func (svc *service) Save(ctx context.Context, sess core.Session, courseID, projectName string, teams []Assignment) error {
	if err := checkAssignments(teams); err != nil {
		return err
	}
	c, err := svc.classrooms.Owned(ctx, sess, courseID)
	if err != nil {
		return err
	}
	students, err := svc.classrooms.ListStudents(ctx, sess, courseID)
	if err != nil {
		return err
	}
	detail, err := svc.projects.Read(ctx, sess, courseID, projectName)
	if err != nil {
		return err
	}

	roster := make(map[string]classroom.Student, len(students))
	for _, s := range students {
		roster[s.ID] = s
	}
	incoming := make([]project.Team, 0, len(teams))
	placed := make(map[string]bool)
	for _, a := range teams {
		t := project.Team{Name: strings.TrimSpace(a.Name), Members: []project.Member{}}
		for _, id := range a.Students {
			if placed[id] {
				continue
			}
			s, ok := roster[id]
			if !ok {
				return core.NewNotFoundError(fmt.Sprintf("Student %s does not exist in the classroom.", id))
			}
			placed[id] = true
			t.Members = append(t.Members, member(s))
		}
		incoming = append(incoming, t)
	}

	if err = svc.repo.SaveTeams(ctx, courseID, projectName, project.PlanSave(detail.Teams, incoming)); err != nil {
		return errors.Wrap(err, "saving teams")
	}
	if svc.conf.NotifyTeams {
		svc.notify(c, projectName, incoming)
	}
	return nil
}

// DeleteTeam removes the team document. The caller's editor state is not restored when it fails.
func (svc *service) DeleteTeam(ctx context.Context, sess core.Session, courseID, projectName, team string) error {
	if _, err := svc.classrooms.Owned(ctx, sess, courseID); err != nil {
		return err
	}
	if _, err := svc.projects.ReadTeam(ctx, sess, courseID, projectName, team); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteTeam(ctx, courseID, projectName, team), "deleting team")
}

// notify sends one notice per team, addressed to all of its members.
func (svc *service) notify(c classroom.Classroom, projectName string, teams []project.Team) {
	var msgs []*core.EmailMessage
	for _, t := range teams {
		to := make([]mail.Address, 0, len(t.Members))
		for _, m := range t.Members {
			if m.Email != "" {
				to = append(to, mail.Address{Name: m.Name, Address: m.Email})
			}
		}
		if len(to) == 0 {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:       to,
			Subject:  fmt.Sprintf("[%s] Your team for %s", c.Name, projectName),
			Template: assignmentTemplate,
			Data: map[string]string{
				"Team":          t.Name,
				"Project":       projectName,
				"Classroom":     c.Name,
				"ClassroomPath": url.PathEscape(c.CourseID),
				"ProjectPath":   url.PathEscape(projectName),
				"TeamPath":      url.PathEscape(t.Name),
			},
		})
	}
	if len(msgs) == 0 {
		return
	}
	svc.logger.Info(
		fmt.Sprintf("sending %d team assignment notices", len(msgs)),
		map[string]interface{}{"classroom": c.CourseID, "project": projectName},
	)
	svc.mailSvc.SendMessages(msgs...)
}

func checkAssignments(teams []Assignment) error {
	seen := make([]string, 0, len(teams))
	for _, a := range teams {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return core.NewValidationError(errors.New("Team name is missing for one of the teams."))
		}
		if !project.ValidTeamName(name) {
			return ErrInvalidName
		}
		for _, s := range seen {
			if project.SameName(s, name) {
				return DuplicateNameError(name)
			}
		}
		seen = append(seen, name)
	}
	return nil
}

func member(s classroom.Student) project.Member {
	return project.Member{StudentID: s.ID, Name: s.FullName(), Email: s.Email}
}
