package breadcrumb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaramshGautam/collaBoard/core"
)

func TestDerive(t *testing.T) {
	teacherHome := Crumb{Label: "Home", Path: "/teachers-home"}
	studentHome := Crumb{Label: "Home", Path: "/students-home"}

	tests := []struct {
		name string
		path string
		role string
		want []Crumb
	}{
		{
			name: "home",
			path: "/teachers-home",
			role: core.RoleTeacher,
			want: []Crumb{teacherHome},
		},
		{
			name: "classroom root",
			path: "/classroom/CS101",
			role: core.RoleTeacher,
			want: []Crumb{teacherHome, {Label: "CS101", Path: "/classroom/CS101"}},
		},
		{
			name: "whiteboard",
			path: "/whiteboard/CS101/Proj1/TeamA",
			role: core.RoleStudent,
			want: []Crumb{
				studentHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Proj1", Path: "/classroom/CS101/project/Proj1"},
				{Label: "TeamA", Path: "/classroom/CS101/project/Proj1/team/TeamA"},
				{Label: "whiteboard", Path: "/whiteboard/CS101/Proj1/TeamA"},
			},
		},
		{
			name: "whiteboard with escaped segments",
			path: "/whiteboard/CS%20101/Final%20Project/Team%2FA",
			role: core.RoleStudent,
			want: []Crumb{
				studentHome,
				{Label: "CS 101", Path: "/classroom/CS%20101"},
				{Label: "Final Project", Path: "/classroom/CS%20101/project/Final%20Project"},
				{Label: "Team/A", Path: "/classroom/CS%20101/project/Final%20Project/team/Team%2FA"},
				{Label: "whiteboard", Path: "/whiteboard/CS%20101/Final%20Project/Team%2FA"},
			},
		},
		{
			name: "incomplete whiteboard falls back to segments",
			path: "/whiteboard/CS101/Proj1",
			role: core.RoleStudent,
			want: []Crumb{
				studentHome,
				{Label: "whiteboard", Path: "/whiteboard"},
				{Label: "CS101", Path: "/whiteboard/CS101"},
				{Label: "Proj1", Path: "/whiteboard/CS101/Proj1"},
			},
		},
		{
			name: "add project",
			path: "/classroom/CS101/add-project",
			role: core.RoleTeacher,
			want: []Crumb{
				teacherHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Add Project", Path: "/classroom/CS101/add-project"},
			},
		},
		{
			name: "edit student",
			path: "/classroom/CS101/manage-students/890001/edit",
			role: core.RoleTeacher,
			want: []Crumb{
				teacherHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Manage Students", Path: "/classroom/CS101/manage-students"},
				{Label: "Edit Student", Path: "/classroom/CS101/manage-students/890001/edit"},
			},
		},
		{
			name: "add student",
			path: "/classroom/CS101/add-student",
			role: core.RoleTeacher,
			want: []Crumb{
				teacherHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Manage Students", Path: "/classroom/CS101/manage-students"},
				{Label: "Add Student", Path: "/classroom/CS101/add-student"},
			},
		},
		{
			name: "manage teams",
			path: "/classroom/CS101/project/Proj1/manage-teams",
			role: core.RoleTeacher,
			want: []Crumb{
				teacherHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Proj1", Path: "/classroom/CS101/project/Proj1"},
				{Label: "Manage Teams", Path: "/classroom/CS101/project/Proj1/manage-teams"},
			},
		},
		{
			name: "team",
			path: "/classroom/CS101/project/Proj1/team/TeamA",
			role: core.RoleTeacher,
			want: []Crumb{
				teacherHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Proj1", Path: "/classroom/CS101/project/Proj1"},
				{Label: "TeamA", Path: "/classroom/CS101/project/Proj1/team/TeamA"},
			},
		},
		{
			name: "student project",
			path: "/classroom/CS101/project/Proj1",
			role: core.RoleStudent,
			want: []Crumb{
				studentHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "Proj1", Path: "/classroom/CS101/project/Proj1"},
			},
		},
		{
			name: "unknown teacher sub-path skips keywords",
			path: "/classroom/CS101/reports",
			role: core.RoleTeacher,
			want: []Crumb{
				teacherHome,
				{Label: "CS101", Path: "/classroom/CS101"},
				{Label: "reports", Path: "/classroom/CS101/reports"},
			},
		},
		{
			name: "generic",
			path: "/settings/profile%20page/",
			role: "",
			want: []Crumb{
				{Label: "Home", Path: "/"},
				{Label: "settings", Path: "/settings"},
				{Label: "profile page", Path: "/settings/profile%20page"},
			},
		},
		{
			name: "malformed escape is shown raw",
			path: "/docs/100%",
			role: core.RoleStudent,
			want: []Crumb{
				studentHome,
				{Label: "docs", Path: "/docs"},
				{Label: "100%", Path: "/docs/100%"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.path, tt.role))
		})
	}
}

func TestDerive_AlwaysStartsAtHome(t *testing.T) {
	for _, path := range []string{"", "/", "/classroom", "/whiteboard", "//x//y"} {
		for _, role := range []string{core.RoleTeacher, core.RoleStudent, ""} {
			crumbs := Derive(path, role)
			if assert.NotEmpty(t, crumbs, path) {
				assert.Equal(t, Crumb{Label: "Home", Path: core.HomePath(role)}, crumbs[0], path)
			}
		}
	}
}
