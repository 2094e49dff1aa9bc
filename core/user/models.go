package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SaramshGautam/collaBoard/core"
)

var Roles = []string{core.RoleTeacher, core.RoleStudent}

// User is the profile stored under users/{email}.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	LSUID     string    `json:"lsuId,omitempty"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

func (u User) HasRole() bool {
	return u.Role == core.RoleTeacher || u.Role == core.RoleStudent
}

// Session turns the profile into the session carried by authenticated requests.
func (u User) Session() core.Session {
	return core.Session{Email: u.Email, Name: u.Name, Role: u.Role, LSUID: u.LSUID}
}

// Identity is what the identity provider vouches for.
type Identity struct {
	Email       string
	DisplayName string
	Subject     string
}

// NewUser contains information needed to provision a user.
type NewUser struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required,role"`
	LSUID string `json:"lsuId"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.LSUID = core.CleanString(nu.LSUID)
	return validate.Struct(nu)
}
