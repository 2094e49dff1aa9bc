package project

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/roster"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("Project not found.")
	ErrTeamNotFound = core.NewNotFoundError("Team not found.")
	ErrExists       = core.NewConflictError("A project with this name already exists in the classroom.")
)

const overdueTemplate = "project_overdue"

type (
	Repository interface {
		CreateProject(ctx context.Context, courseID string, p Project) error
		// GetProject returns ErrNotFound when the project does not exist.
		GetProject(ctx context.Context, courseID, name string) (Project, error)
		ListProjects(ctx context.Context, courseID string) ([]Project, error)
		UpdateProject(ctx context.Context, courseID string, p Project) error
		// DeleteProject removes the project document only, its teams stay.
		DeleteProject(ctx context.Context, courseID, name string) error
		// MarkOverdue sets the overdue status of the named projects.
		MarkOverdue(ctx context.Context, courseID string, names ...string) error
		ListCourseIDs(ctx context.Context) ([]string, error)

		ListTeams(ctx context.Context, courseID, project string) ([]Team, error)
		// GetTeam returns ErrTeamNotFound when the team does not exist.
		GetTeam(ctx context.Context, courseID, project, team string) (Team, error)
		// SaveTeams applies a plan in one batch: either every team is written and deleted or none is.
		SaveTeams(ctx context.Context, courseID, project string, plan Plan) error
		DeleteTeam(ctx context.Context, courseID, project, team string) error
		// TouchMember stamps the last access time of a team member.
		TouchMember(ctx context.Context, courseID, project, team, studentID string, at time.Time) error
	}

	Service interface {
		Create(ctx context.Context, sess core.Session, courseID string, np NewProject) (Project, error)
		// ImportTeams stores the teams of a team file. Rows must reference rostered students.
		ImportTeams(ctx context.Context, sess core.Session, courseID, name string, file roster.File) ([]Team, error)
		Read(ctx context.Context, sess core.Session, courseID, name string) (Detail, error)
		Update(ctx context.Context, sess core.Session, courseID, name string, up UpdateProject) (Project, error)
		Delete(ctx context.Context, sess core.Session, courseID, name string) error
		ReadTeam(ctx context.Context, sess core.Session, courseID, name, team string) (Team, error)
		// SweepOverdue flags every project past its due date and tells the owning teachers.
		// Returns the number of projects flagged.
		SweepOverdue(ctx context.Context) (int, error)
	}

	service struct {
		repo       Repository
		classrooms classroom.Service
		mailSvc    core.EmailService
		logger     core.Logger
		now        func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classrooms classroom.Service, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:       repo,
		classrooms: classrooms,
		mailSvc:    mailSvc,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceMock returns a Service whose clock is frozen at now.
func NewServiceMock(repo Repository, classrooms classroom.Service, mailSvc core.EmailService, logger core.Logger, now time.Time) Service {
	svc := NewService(repo, classrooms, mailSvc, logger).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func (svc *service) Create(ctx context.Context, sess core.Session, courseID string, np NewProject) (Project, error) {
	due, err := ParseDueDate(np.DueDate)
	if err != nil {
		return Project{}, err
	}
	if _, err = svc.classrooms.Owned(ctx, sess, courseID); err != nil {
		return Project{}, err
	}

	if _, err = svc.repo.GetProject(ctx, courseID, np.Name); err == nil {
		return Project{}, ErrExists
	} else if !core.IsNotFound(err) {
		return Project{}, errors.Wrap(err, "checking project")
	}

	now := svc.now()
	p := Project{
		Name:        np.Name,
		Description: np.Description,
		DueDate:     due,
		CreatedAt:   now,
	}
	if p.PastDue(now) {
		p.Status = StatusOverdue
	}
	if err = svc.repo.CreateProject(ctx, courseID, p); err != nil {
		return Project{}, errors.Wrap(err, "creating project")
	}
	return p, nil
}

func (svc *service) ImportTeams(ctx context.Context, sess core.Session, courseID, name string, file roster.File) ([]Team, error) {
	entries, err := file.Teams()
	if err != nil {
		return nil, err
	}
	if _, err = svc.owned(ctx, sess, courseID, name); err != nil {
		return nil, err
	}
	students, err := svc.classrooms.ListStudents(ctx, sess, courseID)
	if err != nil {
		return nil, err
	}

	teams, err := groupTeams(entries, students)
	if err != nil {
		return nil, err
	}
	stored, err := svc.repo.ListTeams(ctx, courseID, name)
	if err != nil {
		return nil, errors.Wrap(err, "listing teams")
	}
	if err = svc.repo.SaveTeams(ctx, courseID, name, PlanSave(stored, teams)); err != nil {
		return nil, errors.Wrap(err, "importing teams")
	}
	return teams, nil
}

func (svc *service) Read(ctx context.Context, sess core.Session, courseID, name string) (Detail, error) {
	if _, err := svc.classrooms.Get(ctx, sess, courseID); err != nil {
		return Detail{}, err
	}
	p, err := svc.get(ctx, courseID, name)
	if err != nil {
		return Detail{}, err
	}
	teams, err := svc.repo.ListTeams(ctx, courseID, name)
	if err != nil {
		return Detail{}, errors.Wrap(err, "listing teams")
	}
	if teams == nil {
		teams = []Team{}
	}
	return Detail{Project: p, Teams: teams}, nil
}

// Update merges the non-empty fields. Moving the due date to the future clears the overdue status.
func (svc *service) Update(ctx context.Context, sess core.Session, courseID, name string, up UpdateProject) (Project, error) {
	p, err := svc.owned(ctx, sess, courseID, name)
	if err != nil {
		return Project{}, err
	}
	if up.Description != "" {
		p.Description = up.Description
	}
	if up.DueDate != "" {
		due, err := ParseDueDate(up.DueDate)
		if err != nil {
			return Project{}, err
		}
		p.DueDate = due
		p.Status = StatusOpen
		if p.PastDue(svc.now()) {
			p.Status = StatusOverdue
		}
	}
	if err = svc.repo.UpdateProject(ctx, courseID, p); err != nil {
		return Project{}, errors.Wrap(err, "updating project")
	}
	return p, nil
}

func (svc *service) Delete(ctx context.Context, sess core.Session, courseID, name string) error {
	if _, err := svc.owned(ctx, sess, courseID, name); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteProject(ctx, courseID, name), "deleting project")
}

func (svc *service) ReadTeam(ctx context.Context, sess core.Session, courseID, name, team string) (Team, error) {
	if _, err := svc.classrooms.Get(ctx, sess, courseID); err != nil {
		return Team{}, err
	}
	if _, err := svc.get(ctx, courseID, name); err != nil {
		return Team{}, err
	}
	t, err := svc.repo.GetTeam(ctx, courseID, name, team)
	if err != nil {
		if core.IsNotFound(err) {
			return Team{}, ErrTeamNotFound
		}
		return Team{}, errors.Wrap(err, "getting team")
	}
	return t, nil
}

func (svc *service) SweepOverdue(ctx context.Context) (int, error) {
	ids, err := svc.repo.ListCourseIDs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing classrooms")
	}
	now := svc.now()
	count := 0
	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			return count, err
		}
		projects, err := svc.repo.ListProjects(ctx, id)
		if err != nil {
			return count, errors.Wrapf(err, "listing projects of %s", id)
		}
		var due []string
		for _, p := range projects {
			if p.Status != StatusOverdue && p.PastDue(now) {
				due = append(due, p.Name)
			}
		}
		if len(due) == 0 {
			continue
		}
		if err = svc.repo.MarkOverdue(ctx, id, due...); err != nil {
			return count, errors.Wrapf(err, "flagging projects of %s", id)
		}
		count += len(due)
		svc.notifyOverdue(ctx, id, due)
	}
	return count, nil
}

// notifyOverdue tells the teacher of a classroom which of its projects just went past due.
func (svc *service) notifyOverdue(ctx context.Context, courseID string, names []string) {
	c, err := svc.classrooms.Find(ctx, courseID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("overdue notice for %s: %v", courseID, err))
		return
	}
	if c.TeacherEmail == "" {
		return
	}

	projects := make([]map[string]string, 0, len(names))
	for _, n := range names {
		projects = append(projects, map[string]string{"Name": n, "Path": url.PathEscape(n)})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:       []mail.Address{{Address: c.TeacherEmail}},
		Subject:  fmt.Sprintf("[%s] %d project(s) past due", c.Name, len(names)),
		Template: overdueTemplate,
		Data: map[string]interface{}{
			"Classroom":     c.Name,
			"ClassroomPath": url.PathEscape(c.CourseID),
			"Projects":      projects,
		},
	})
}

func (svc *service) get(ctx context.Context, courseID, name string) (Project, error) {
	p, err := svc.repo.GetProject(ctx, courseID, name)
	if err != nil {
		if core.IsNotFound(err) {
			return Project{}, ErrNotFound
		}
		return Project{}, errors.Wrap(err, "getting project")
	}
	return p, nil
}

// owned returns the project when sess owns its classroom.
func (svc *service) owned(ctx context.Context, sess core.Session, courseID, name string) (Project, error) {
	if _, err := svc.classrooms.Owned(ctx, sess, courseID); err != nil {
		return Project{}, err
	}
	return svc.get(ctx, courseID, name)
}

// groupTeams builds teams from team file rows, in order of first appearance.
// A student listed twice stays in the first team listing them.
func groupTeams(entries []roster.Entry, students []classroom.Student) ([]Team, error) {
	byKey := make(map[string]classroom.Student, len(students))
	byEmail := make(map[string]classroom.Student, len(students))
	for _, s := range students {
		byKey[s.ID] = s
		if s.Email != "" {
			byEmail[s.Email] = s
		}
	}

	var teams []Team
	placed := make(map[string]bool)
	for _, e := range entries {
		if !ValidTeamName(e.Team) {
			return nil, core.NewValidationError(fmt.Errorf("Row %d: invalid team name %q.", e.Row, e.Team))
		}
		s, ok := byKey[classroom.StudentKey(e.LSUID, e.Email)]
		if !ok {
			s, ok = byEmail[e.Email]
		}
		if !ok {
			return nil, core.NewValidationError(
				fmt.Errorf("Student %s %s is not part of this class.", e.FirstName, e.LastName),
			)
		}
		if placed[s.ID] {
			continue
		}
		placed[s.ID] = true

		m := Member{StudentID: s.ID, Name: s.FullName(), Email: s.Email}
		i := teamIndex(teams, e.Team)
		if i < 0 {
			teams = append(teams, Team{Name: e.Team})
			i = len(teams) - 1
		}
		teams[i].Members = append(teams[i].Members, m)
	}
	return teams, nil
}

func teamIndex(teams []Team, name string) int {
	for i, t := range teams {
		if SameName(t.Name, name) {
			return i
		}
	}
	return -1
}

// ValidTeamName reports whether name can key a team document.
func ValidTeamName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}
