package core

import (
	"context"
	"time"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Landing paths
const (
	TeacherHomePath = "/teachers-home"
	StudentHomePath = "/students-home"
	PublicHomePath  = "/"
)

// Session is the signed-in user as carried by every authenticated request.
type Session struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	LSUID string `json:"lsuId,omitempty"`
}

func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }
func (s Session) IsStudent() bool { return s.Role == RoleStudent }

// HomePath returns the landing route of a role, "/" for anything else.
func HomePath(role string) string {
	switch role {
	case RoleTeacher:
		return TeacherHomePath
	case RoleStudent:
		return StudentHomePath
	default:
		return PublicHomePath
	}
}

// TokenDenylist keeps revoked session tokens until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
