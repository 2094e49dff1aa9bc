package classroom

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/roster"
	"github.com/SaramshGautam/collaBoard/core/user"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("Classroom not found.")
	ErrStudentNotFound = core.NewNotFoundError("Student not found.")
	ErrExists          = core.NewConflictError("A classroom with this course ID already exists.")
	ErrStudentExists   = core.NewConflictError("This student is already part of the class.")
	ErrRosterRequired  = core.NewValidationError(
		errors.New("A roster file is required."),
		core.FieldError{Field: "student_file", Error: "this field is required"},
	)
	ErrTeachersOnly = core.NewPermissionError("Only teachers can manage classrooms.")
	ErrNoAccess     = core.NewPermissionError("You do not have access to this classroom.")
)

type (
	Repository interface {
		// CreateClassroom stores the classroom and its roster.
		CreateClassroom(ctx context.Context, c Classroom, students []Student) error
		// GetClassroom returns ErrNotFound when the classroom does not exist.
		GetClassroom(ctx context.Context, courseID string) (Classroom, error)
		ListClassroomsByTeacher(ctx context.Context, teacherEmail string) ([]Classroom, error)
		ListClassroomsByStudent(ctx context.Context, email string) ([]Classroom, error)
		UpdateClassroom(ctx context.Context, c Classroom) error
		// DeleteClassroom removes the classroom document only, its sub-collections stay.
		DeleteClassroom(ctx context.Context, courseID string) error
		// PurgeClassroom removes the classroom and everything stored under it. Returns the number of deleted documents.
		PurgeClassroom(ctx context.Context, courseID string) (int, error)
		ListProjectItems(ctx context.Context, courseID string) ([]ProjectItem, error)

		ListStudents(ctx context.Context, courseID string) ([]Student, error)
		// GetStudent returns ErrStudentNotFound when the student is not rostered.
		GetStudent(ctx context.Context, courseID, studentID string) (Student, error)
		// SaveStudents creates or merges roster entries.
		SaveStudents(ctx context.Context, courseID string, students ...Student) error
		// ReplaceRoster swaps the whole roster for students in one batch.
		ReplaceRoster(ctx context.Context, courseID string, students []Student) error
		// DeleteStudent removes the roster entry, takes the student out of every team of the classroom
		// and deletes the teams left empty, all in one batch.
		DeleteStudent(ctx context.Context, courseID, studentID string) error
	}

	Service interface {
		Create(ctx context.Context, sess core.Session, nc NewClassroom, file roster.File) (Classroom, error)
		Read(ctx context.Context, sess core.Session, courseID string) (Detail, error)
		// Get returns the classroom when sess may see it: owning teacher or rostered student.
		Get(ctx context.Context, sess core.Session, courseID string) (Classroom, error)
		// Owned returns the classroom when sess is its owning teacher.
		Owned(ctx context.Context, sess core.Session, courseID string) (Classroom, error)
		// Find returns a classroom without access checks, for background jobs.
		Find(ctx context.Context, courseID string) (Classroom, error)
		List(ctx context.Context, sess core.Session) ([]Classroom, error)
		Update(ctx context.Context, sess core.Session, courseID string, uc UpdateClassroom, file *roster.File) (Classroom, error)
		Delete(ctx context.Context, sess core.Session, courseID string) error
		Purge(ctx context.Context, courseID string) (int, error)

		ListStudents(ctx context.Context, sess core.Session, courseID string) ([]Student, error)
		AddStudent(ctx context.Context, sess core.Session, courseID string, ns NewStudent) (Student, error)
		GetStudent(ctx context.Context, sess core.Session, courseID, studentID string) (Student, error)
		UpdateStudent(ctx context.Context, sess core.Session, courseID, studentID string, us UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, sess core.Session, courseID, studentID string) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		now     func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceMock returns a Service whose clock is frozen at now.
func NewServiceMock(repo Repository, usrRepo user.Repository, now time.Time) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		now:     func() time.Time { return now },
	}
}

// Create validates the roster file before anything reaches the store.
func (svc *service) Create(ctx context.Context, sess core.Session, nc NewClassroom, file roster.File) (Classroom, error) {
	if !sess.IsTeacher() {
		return Classroom{}, ErrTeachersOnly
	}
	if file.Name == "" || file.Open == nil {
		return Classroom{}, ErrRosterRequired
	}
	entries, err := file.Students()
	if err != nil {
		return Classroom{}, err
	}

	if _, err = svc.repo.GetClassroom(ctx, nc.CourseID); err == nil {
		return Classroom{}, ErrExists
	} else if !core.IsNotFound(err) {
		return Classroom{}, errors.Wrap(err, "checking classroom")
	}

	now := svc.now()
	c := Classroom{
		CourseID:     nc.CourseID,
		Name:         nc.Name,
		Semester:     nc.Semester,
		TeacherEmail: core.CleanString(sess.Email, true /* lower */),
		CreatedAt:    now,
	}
	students := svc.students(entries, now)
	if err = svc.repo.CreateClassroom(ctx, c, students); err != nil {
		return Classroom{}, errors.Wrap(err, "creating classroom")
	}
	if err = svc.provision(ctx, students); err != nil {
		return Classroom{}, err
	}
	return c, nil
}

func (svc *service) Read(ctx context.Context, sess core.Session, courseID string) (Detail, error) {
	c, err := svc.Get(ctx, sess, courseID)
	if err != nil {
		return Detail{}, err
	}
	projects, err := svc.repo.ListProjectItems(ctx, courseID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "listing projects")
	}
	students, err := svc.repo.ListStudents(ctx, courseID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "listing students")
	}
	return Detail{Classroom: c, Projects: projects, Roster: students}, nil
}

func (svc *service) Get(ctx context.Context, sess core.Session, courseID string) (Classroom, error) {
	c, err := svc.get(ctx, courseID)
	if err != nil {
		return Classroom{}, err
	}
	if sess.IsTeacher() {
		if c.OwnedBy(sess.Email) {
			return c, nil
		}
		return Classroom{}, ErrNoAccess
	}
	if sess.IsStudent() {
		ok, err := svc.enrolled(ctx, courseID, sess)
		if err != nil {
			return Classroom{}, err
		}
		if ok {
			return c, nil
		}
	}
	return Classroom{}, ErrNoAccess
}

func (svc *service) Owned(ctx context.Context, sess core.Session, courseID string) (Classroom, error) {
	if !sess.IsTeacher() {
		return Classroom{}, ErrTeachersOnly
	}
	c, err := svc.get(ctx, courseID)
	if err != nil {
		return Classroom{}, err
	}
	if !c.OwnedBy(sess.Email) {
		return Classroom{}, ErrNoAccess
	}
	return c, nil
}

func (svc *service) Find(ctx context.Context, courseID string) (Classroom, error) {
	return svc.get(ctx, courseID)
}

func (svc *service) List(ctx context.Context, sess core.Session) ([]Classroom, error) {
	var cs []Classroom
	var err error
	switch {
	case sess.IsTeacher():
		cs, err = svc.repo.ListClassroomsByTeacher(ctx, core.CleanString(sess.Email, true /* lower */))
	case sess.IsStudent():
		cs, err = svc.repo.ListClassroomsByStudent(ctx, core.CleanString(sess.Email, true /* lower */))
	default:
		return nil, ErrNoAccess
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing classrooms")
	}
	if cs == nil {
		cs = []Classroom{}
	}
	return cs, nil
}

// Update merges the non-empty fields. A roster file is merged into the roster, or replaces it with uc.ReplaceRoster.
func (svc *service) Update(ctx context.Context, sess core.Session, courseID string, uc UpdateClassroom, file *roster.File) (Classroom, error) {
	if !sess.IsTeacher() {
		return Classroom{}, ErrTeachersOnly
	}
	var entries []roster.Entry
	if file != nil && file.Name != "" {
		var err error
		if entries, err = file.Students(); err != nil {
			return Classroom{}, err
		}
	}

	c, err := svc.Owned(ctx, sess, courseID)
	if err != nil {
		return Classroom{}, err
	}
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Semester != "" {
		c.Semester = uc.Semester
	}
	if err = svc.repo.UpdateClassroom(ctx, c); err != nil {
		return Classroom{}, errors.Wrap(err, "updating classroom")
	}

	if file == nil || file.Name == "" {
		return c, nil
	}
	students := svc.students(entries, svc.now())
	if uc.ReplaceRoster {
		err = svc.repo.ReplaceRoster(ctx, courseID, students)
	} else {
		err = svc.repo.SaveStudents(ctx, courseID, students...)
	}
	if err != nil {
		return Classroom{}, errors.Wrap(err, "importing roster")
	}
	if err = svc.provision(ctx, students); err != nil {
		return Classroom{}, err
	}
	return c, nil
}

func (svc *service) Delete(ctx context.Context, sess core.Session, courseID string) error {
	if _, err := svc.Owned(ctx, sess, courseID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteClassroom(ctx, courseID), "deleting classroom")
}

func (svc *service) Purge(ctx context.Context, courseID string) (int, error) {
	if _, err := svc.get(ctx, courseID); err != nil {
		return 0, err
	}
	n, err := svc.repo.PurgeClassroom(ctx, courseID)
	return n, errors.Wrap(err, "purging classroom")
}

func (svc *service) ListStudents(ctx context.Context, sess core.Session, courseID string) ([]Student, error) {
	if _, err := svc.Owned(ctx, sess, courseID); err != nil {
		return nil, err
	}
	students, err := svc.repo.ListStudents(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}

func (svc *service) AddStudent(ctx context.Context, sess core.Session, courseID string, ns NewStudent) (Student, error) {
	if _, err := svc.Owned(ctx, sess, courseID); err != nil {
		return Student{}, err
	}
	s := Student{
		ID:         StudentKey(ns.LSUID, ns.Email),
		FirstName:  ns.FirstName,
		LastName:   ns.LastName,
		Email:      ns.Email,
		LSUID:      ns.LSUID,
		AssignedAt: svc.now(),
	}
	if _, err := svc.repo.GetStudent(ctx, courseID, s.ID); err == nil {
		return Student{}, ErrStudentExists
	} else if !core.IsNotFound(err) {
		return Student{}, errors.Wrap(err, "checking student")
	}
	if err := svc.repo.SaveStudents(ctx, courseID, s); err != nil {
		return Student{}, errors.Wrap(err, "adding student")
	}
	if err := svc.provision(ctx, []Student{s}); err != nil {
		return Student{}, err
	}
	return s, nil
}

func (svc *service) GetStudent(ctx context.Context, sess core.Session, courseID, studentID string) (Student, error) {
	if _, err := svc.Owned(ctx, sess, courseID); err != nil {
		return Student{}, err
	}
	return svc.getStudent(ctx, courseID, studentID)
}

// UpdateStudent renames a roster entry and mirrors the new name on the user profile.
func (svc *service) UpdateStudent(ctx context.Context, sess core.Session, courseID, studentID string, us UpdateStudent) (Student, error) {
	if _, err := svc.Owned(ctx, sess, courseID); err != nil {
		return Student{}, err
	}
	s, err := svc.getStudent(ctx, courseID, studentID)
	if err != nil {
		return Student{}, err
	}
	s.FirstName = us.FirstName
	s.LastName = us.LastName
	if err = svc.repo.SaveStudents(ctx, courseID, s); err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	if s.Email != "" {
		if err = svc.usrRepo.UpdateUserName(ctx, s.Email, s.DisplayName()); err != nil && !core.IsNotFound(err) {
			return Student{}, errors.Wrap(err, "updating user name")
		}
	}
	return s, nil
}

func (svc *service) DeleteStudent(ctx context.Context, sess core.Session, courseID, studentID string) error {
	if _, err := svc.Owned(ctx, sess, courseID); err != nil {
		return err
	}
	if _, err := svc.getStudent(ctx, courseID, studentID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteStudent(ctx, courseID, studentID), "deleting student")
}

func (svc *service) get(ctx context.Context, courseID string) (Classroom, error) {
	c, err := svc.repo.GetClassroom(ctx, courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return Classroom{}, ErrNotFound
		}
		return Classroom{}, errors.Wrap(err, "getting classroom")
	}
	return c, nil
}

func (svc *service) getStudent(ctx context.Context, courseID, studentID string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, courseID, studentID)
	if err != nil {
		if core.IsNotFound(err) {
			return Student{}, ErrStudentNotFound
		}
		return Student{}, errors.Wrap(err, "getting student")
	}
	return s, nil
}

func (svc *service) enrolled(ctx context.Context, courseID string, sess core.Session) (bool, error) {
	if sess.LSUID != "" {
		if _, err := svc.repo.GetStudent(ctx, courseID, StudentKey(sess.LSUID, "")); err == nil {
			return true, nil
		} else if !core.IsNotFound(err) {
			return false, errors.Wrap(err, "getting student")
		}
	}
	students, err := svc.repo.ListStudents(ctx, courseID)
	if err != nil {
		return false, errors.Wrap(err, "listing students")
	}
	email := core.CleanString(sess.Email, true /* lower */)
	for _, s := range students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// students converts rows to roster entries, a key seen twice keeps its last row.
func (svc *service) students(entries []roster.Entry, at time.Time) []Student {
	index := make(map[string]int, len(entries))
	students := make([]Student, 0, len(entries))
	for _, e := range entries {
		s := StudentFromEntry(e, at)
		if i, ok := index[s.ID]; ok {
			students[i] = s
			continue
		}
		index[s.ID] = len(students)
		students = append(students, s)
	}
	return students
}

// provision gives every rostered student a user profile so they can sign in.
func (svc *service) provision(ctx context.Context, students []Student) error {
	users := make([]user.User, 0, len(students))
	for _, s := range students {
		if s.Email == "" {
			continue
		}
		users = append(users, user.User{
			Email:     s.Email,
			Name:      s.DisplayName(),
			Role:      core.RoleStudent,
			LSUID:     s.LSUID,
			CreatedAt: s.AssignedAt,
		})
	}
	if len(users) == 0 {
		return nil
	}
	return errors.Wrap(svc.usrRepo.CreateMissingUsers(ctx, users...), "provisioning student users")
}
