// Package testutil builds in-memory fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/core/roster"
	"github.com/SaramshGautam/collaBoard/core/team"
	"github.com/SaramshGautam/collaBoard/core/user"
	"github.com/SaramshGautam/collaBoard/core/whiteboard"
	cachesvc "github.com/SaramshGautam/collaBoard/services/cache"
	emailsvc "github.com/SaramshGautam/collaBoard/services/email"
	identitysvc "github.com/SaramshGautam/collaBoard/services/identity"
	logsvc "github.com/SaramshGautam/collaBoard/services/logger"
	"github.com/SaramshGautam/collaBoard/storage/docrepos"
	"github.com/SaramshGautam/collaBoard/storage/docstore/memstore"
)

// Now is the clock of the services built by NewEnv.
var Now = time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

// Env holds one in-memory store and every repository & service wired on top of it.
type Env struct {
	Conf     *core.Config
	Logger   core.Logger
	Store    *memstore.DB
	Overlay  *cachesvc.MemoryCache
	Identity *identitysvc.StaticProvider
	Mail     *emailsvc.Recorder

	UserRepo      user.Repository
	ClassroomRepo classroom.Repository
	ProjectRepo   project.Repository

	UserSvc       user.Service
	ClassroomSvc  classroom.Service
	ProjectSvc    project.Service
	TeamSvc       team.Service
	WhiteboardSvc whiteboard.Service
}

// NewConfig returns the configuration of tests: no debug output, team notifications on.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.NotifyTeams = true
	conf.Sync.BaseURL = "wss://sync.test/connect"
	return conf
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	env := &Env{
		Conf:     NewConfig(),
		Logger:   logsvc.NewLoggerMock(),
		Store:    memstore.Open(),
		Overlay:  cachesvc.NewMemoryCache(0),
		Identity: identitysvc.NewStaticProvider(true /* devTokens */),
	}
	core.ParseEmailTemplates(env.Conf, env.Logger)
	env.Mail = emailsvc.NewRecorder(env.Conf, env.Logger)

	env.UserRepo = docrepos.NewUserRepository(env.Store)
	env.ClassroomRepo = docrepos.NewClassroomRepository(env.Store)
	env.ProjectRepo = docrepos.NewProjectRepository(env.Store)

	env.UserSvc = user.NewService(env.UserRepo, env.Identity)
	env.ClassroomSvc = classroom.NewServiceMock(env.ClassroomRepo, env.UserRepo, Now)
	env.ProjectSvc = project.NewServiceMock(env.ProjectRepo, env.ClassroomSvc, env.Mail, env.Logger, Now)
	env.TeamSvc = team.NewService(env.Conf, env.ClassroomSvc, env.ProjectSvc, env.ProjectRepo, env.Mail, env.Logger)
	env.WhiteboardSvc = whiteboard.NewService(env.Conf, env.ClassroomSvc, env.ProjectSvc, env.ProjectRepo, env.Overlay)
	return env
}

// Teacher returns the session of a teacher.
func Teacher(email string) core.Session {
	return core.Session{Email: email, Name: "Prof " + strings.Split(email, "@")[0], Role: core.RoleTeacher}
}

// Student returns the session of a student.
func Student(email, lsuID string) core.Session {
	return core.Session{Email: email, Role: core.RoleStudent, LSUID: lsuID}
}

func CreateUser(t *testing.T, repo user.Repository, email, name, role string, lsuID ...string) user.User {
	t.Helper()
	usr := user.User{Email: email, Name: name, Role: role, CreatedAt: Now}
	if len(lsuID) > 0 {
		usr.LSUID = lsuID[0]
	}
	if err := repo.SaveUser(context.Background(), usr); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CSVFile returns an uploaded .csv file with the given lines.
func CSVFile(name string, lines ...string) roster.File {
	data := []byte(strings.Join(lines, "\n") + "\n")
	return roster.File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// RosterFile returns a roster.csv holding one row per student: "first,last,email,lsu_id".
func RosterFile(rows ...string) roster.File {
	return CSVFile("roster.csv", append([]string{"firstname,lastname,email,lsu_id"}, rows...)...)
}

// TeamFile returns a teams.csv holding one row per student: "first,last,email,lsu_id,team".
func TeamFile(rows ...string) roster.File {
	return CSVFile("teams.csv", append([]string{"firstname,lastname,email,lsu_id,teamname"}, rows...)...)
}

// CreateClassroom creates a classroom owned by teacher with the given roster rows.
func CreateClassroom(t *testing.T, env *Env, teacher core.Session, courseID string, rows ...string) classroom.Classroom {
	t.Helper()
	c, err := env.ClassroomSvc.Create(
		context.Background(), teacher,
		classroom.NewClassroom{CourseID: courseID, Name: courseID + " class", Semester: "Spring 2024"},
		RosterFile(rows...),
	)
	if err != nil {
		t.Fatalf("CreateClassroom() failed: %v", err)
	}
	return c
}

// CreateProject creates a project due in a week.
func CreateProject(t *testing.T, env *Env, teacher core.Session, courseID, name string) project.Project {
	t.Helper()
	p, err := env.ProjectSvc.Create(context.Background(), teacher, courseID, project.NewProject{
		Name:        name,
		Description: name + " description",
		DueDate:     Now.Add(7 * 24 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return p
}

// SaveTeams stores the given teams through the team editor service.
func SaveTeams(t *testing.T, env *Env, teacher core.Session, courseID, projectName string, teams ...team.Assignment) {
	t.Helper()
	if err := env.TeamSvc.Save(context.Background(), teacher, courseID, projectName, teams); err != nil {
		t.Fatalf("SaveTeams() failed: %v", err)
	}
}
