package project

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
)

// Statuses
const (
	StatusOpen    = ""
	StatusOverdue = "overdue"
)

// accepted due date layouts, the first one is used for output
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Project is a unit of work of a classroom, divided into teams.
type Project struct {
	Name        string    `json:"projectName"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
}

// PastDue reports whether the due date is before now.
func (p Project) PastDue(now time.Time) bool {
	return !p.DueDate.IsZero() && p.DueDate.Before(now)
}

// Member is a student as stored in a team document.
type Member struct {
	StudentID    string     `json:"studentId"`
	Name         string     `json:"name"` // "Last, First"
	Email        string     `json:"email"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
}

// Team is a named subset of a project's students sharing one whiteboard.
type Team struct {
	Name    string   `json:"teamName"`
	Members []Member `json:"students"`
}

func (t Team) Has(studentID string) bool {
	return t.index(studentID) >= 0
}

func (t Team) index(studentID string) int {
	for i, m := range t.Members {
		if m.StudentID == studentID {
			return i
		}
	}
	return -1
}

// Without returns a copy of t without the given students.
func (t Team) Without(ids map[string]bool) Team {
	out := Team{Name: t.Name, Members: make([]Member, 0, len(t.Members))}
	for _, m := range t.Members {
		if !ids[m.StudentID] {
			out.Members = append(out.Members, m)
		}
	}
	return out
}

// SameName compares team names the way uniqueness is enforced: trimmed, case-insensitive.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Detail is a project with its teams.
type Detail struct {
	Project Project `json:"project"`
	Teams   []Team  `json:"teams"`
}

// NewProject contains information needed to create a project.
type NewProject struct {
	Name        string `json:"projectName" form:"project_name" validate:"required,dockey,max=128"`
	Description string `json:"description" form:"description" validate:"max=2000"`
	DueDate     string `json:"dueDate" form:"due_date" validate:"required"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	np.DueDate = core.CleanString(np.DueDate)
	if err := validate.Struct(np); err != nil {
		return err
	}
	_, err := ParseDueDate(np.DueDate)
	return err
}

// UpdateProject contains the fields a teacher may change. Empty fields are left untouched.
type UpdateProject struct {
	Description string `json:"description" form:"description" validate:"max=2000"`
	DueDate     string `json:"dueDate" form:"due_date"`
}

func (up *UpdateProject) Validate(validate *validator.Validate) error {
	up.Description = core.CleanString(up.Description)
	up.DueDate = core.CleanString(up.DueDate)
	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.DueDate == "" {
		return nil
	}
	_, err := ParseDueDate(up.DueDate)
	return err
}

// ParseDueDate accepts RFC 3339 timestamps, html datetime-local values and plain dates.
// Values without a zone are taken as UTC.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, core.NewValidationError(
		errors.Errorf("Invalid due date %q.", s),
		core.FieldError{Field: "dueDate", Error: "dueDate must be a date, e.g. 2024-05-01T17:00"},
	)
}
