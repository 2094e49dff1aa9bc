package classroom

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/roster"
)

// Classroom is a teacher's course section, keyed by its course id.
type Classroom struct {
	CourseID     string    `json:"courseId"`
	Name         string    `json:"className"`
	Semester     string    `json:"semester"`
	TeacherEmail string    `json:"teacherEmail"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
}

// OwnedBy reports whether email is the owning teacher.
func (c Classroom) OwnedBy(email string) bool {
	return c.TeacherEmail != "" && strings.EqualFold(c.TeacherEmail, email)
}

// Student is a roster entry, keyed by institutional id or sanitized email.
type Student struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	LSUID      string    `json:"lsuId"`
	AssignedAt time.Time `json:"assignedAt"` // UTC
}

// FullName is "Last, First".
func (s Student) FullName() string {
	return s.LastName + ", " + s.FirstName
}

// DisplayName is "First Last".
func (s Student) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentKey returns the roster key of a student: the institutional id when known, the email otherwise.
func StudentKey(lsuID, email string) string {
	if id := core.CleanString(lsuID); id != "" {
		return strings.ReplaceAll(id, "/", "_")
	}
	return strings.ReplaceAll(core.CleanString(email, true /* lower */), "/", "_")
}

// StudentFromEntry builds a roster entry from a spreadsheet row.
func StudentFromEntry(e roster.Entry, at time.Time) Student {
	return Student{
		ID:         StudentKey(e.LSUID, e.Email),
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		LSUID:      e.LSUID,
		AssignedAt: at,
	}
}

// Detail is a classroom with its projects & roster.
type Detail struct {
	Classroom Classroom     `json:"classroom"`
	Projects  []ProjectItem `json:"projects"`
	Roster    []Student     `json:"roster"`
}

// ProjectItem is the classroom page view of a project.
type ProjectItem struct {
	Name        string    `json:"projectName"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status,omitempty"`
}

// NewClassroom contains information needed to create a classroom.
type NewClassroom struct {
	CourseID string `json:"courseId" form:"course_id" validate:"required,dockey,max=64"`
	Name     string `json:"className" form:"class_name" validate:"required,max=128"`
	Semester string `json:"semester" form:"semester" validate:"required,max=64"`
}

func (nc *NewClassroom) Validate(validate *validator.Validate) error {
	nc.CourseID = core.CleanString(nc.CourseID)
	nc.Name = core.CleanString(nc.Name)
	nc.Semester = core.CleanString(nc.Semester)
	return validate.Struct(nc)
}

// UpdateClassroom contains the fields a teacher may change. Empty fields are left untouched.
type UpdateClassroom struct {
	Name          string `json:"className" form:"class_name" validate:"max=128"`
	Semester      string `json:"semester" form:"semester" validate:"max=64"`
	ReplaceRoster bool   `json:"replaceRoster" form:"replace_roster"`
}

func (uc *UpdateClassroom) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Semester = core.CleanString(uc.Semester)
	return validate.Struct(uc)
}

// NewStudent contains information needed to add a student to a roster.
type NewStudent struct {
	FirstName string `json:"firstName" form:"firstname" validate:"required,max=64"`
	LastName  string `json:"lastName" form:"lastname" validate:"required,max=64"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	LSUID     string `json:"lsuId" form:"lsu_id" validate:"omitempty,dockey,max=32"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.LSUID = core.CleanString(ns.LSUID)
	return validate.Struct(ns)
}

// UpdateStudent contains the name fields of a roster entry.
type UpdateStudent struct {
	FirstName string `json:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"required,max=64"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	return validate.Struct(us)
}
