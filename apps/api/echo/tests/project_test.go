package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/SaramshGautam/collaBoard/apps/api/echo"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/core/team"
	"github.com/SaramshGautam/collaBoard/testutil"
)

const teamsCSV = "firstname,lastname,email,lsu_id,teamname\n" +
	"Alice,Smith,alice@lsu.edu,890001,Red\n" +
	"Bob,Jones,bob@lsu.edu,,Red\n" +
	"Carol,White,carol@lsu.edu,890003,Blue\n"

func projectSetup(t *testing.T) (Server, *testutil.Env, string) {
	app, env := setup(t)
	teacher := testutil.Teacher("prof@lsu.edu")
	testutil.CreateClassroom(t, env, teacher, "CS101",
		"Alice,Smith,alice@lsu.edu,890001",
		"Bob,Jones,bob@lsu.edu,",
		"Carol,White,carol@lsu.edu,890003",
	)
	return app, env, getToken(t, env, teacher)
}

func Test_projectApi_create(t *testing.T) {
	app, env, token := projectSetup(t)
	due := testutil.Now.Add(48 * time.Hour).Format(time.RFC3339)

	t.Run("with teams", func(t *testing.T) {
		req, rec := newFormRequest(t, http.MethodPost, "/api/add_project/CS101", token,
			map[string]string{"project_name": "Proj1", "description": "First", "due_date": due},
			&upload{field: "team_file", filename: "teams.csv", content: teamsCSV})
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ProjectResponse
		unmarshall(t, rec, &resp)
		assert.Equal(t, "Project and teams added successfully.", resp.Message)
		assert.Equal(t, "Proj1", resp.Project.Name)
		assert.Equal(t, project.StatusOpen, resp.Project.Status)
		require.Len(t, resp.Teams, 2)
		assert.Equal(t, "Red", resp.Teams[0].Name)
		assert.Len(t, resp.Teams[0].Members, 2)

		teams, err := env.ProjectRepo.ListTeams(ctx, "CS101", "Proj1")
		require.NoError(t, err)
		assert.Len(t, teams, 2)
	})

	t.Run("without teams", func(t *testing.T) {
		req, rec := newFormRequest(t, http.MethodPost, "/api/add_project/CS101", token,
			map[string]string{"project_name": "Proj2", "due_date": "2024-05-01"}, nil)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ProjectResponse
		unmarshall(t, rec, &resp)
		assert.Equal(t, "Project added successfully.", resp.Message)
		assert.Empty(t, resp.Teams)
	})

	t.Run("rejected team file keeps the project", func(t *testing.T) {
		req, rec := newFormRequest(t, http.MethodPost, "/api/add_project/CS101", token,
			map[string]string{"project_name": "Proj3", "due_date": due},
			&upload{
				field:    "team_file",
				filename: "teams.csv",
				content:  "firstname,lastname,email,lsu_id,teamname\nEve,Black,eve@lsu.edu,890099,Red\n",
			})
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Student Eve Black is not part of this class."}),
		}, rec)

		_, err := env.ProjectRepo.GetProject(ctx, "CS101", "Proj3")
		assert.NoError(t, err)
	})

	tests := []struct {
		name     string
		fields   map[string]string
		token    string
		wantCode int
		wantData []byte
	}{
		{
			name:     "taken",
			fields:   map[string]string{"project_name": "Proj1", "due_date": due},
			token:    token,
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "A project with this name already exists in the classroom."}),
		},
		{
			name:     "bad due date",
			fields:   map[string]string{"project_name": "Proj9", "due_date": "next week"},
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpFieldsErr{
				Error:  `Invalid due date "next week".`,
				Fields: map[string]string{"dueDate": "dueDate must be a date, e.g. 2024-05-01T17:00"},
			}),
		},
		{
			name:     "missing fields",
			fields:   map[string]string{},
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpFieldsErr{
				Error: "Invalid input.",
				Fields: map[string]string{
					"projectName": "this field is required",
					"dueDate":     "this field is required",
				},
			}),
		},
		{
			name:     "student",
			fields:   map[string]string{"project_name": "Proj9", "due_date": due},
			token:    getToken(t, env, testutil.Student("alice@lsu.edu", "890001")),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newFormRequest(t, http.MethodPost, "/api/add_project/CS101", tt.token, tt.fields, nil)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}
}

func Test_projectApi_saveTeams(t *testing.T) {
	app, env, token := projectSetup(t)
	testutil.CreateProject(t, env, testutil.Teacher("prof@lsu.edu"), "CS101", "Proj1")

	body := marchallObj(t, SaveTeamsRequest{
		ClassID:     "CS101",
		ProjectName: "Proj1",
		Teams: []team.Assignment{
			{Name: "Red", Students: []string{"890001", "bob@lsu.edu"}},
			{Name: "Blue", Students: []string{}},
		},
	})
	alice := getToken(t, env, testutil.Student("alice@lsu.edu", "890001"))

	tests := []httpTest{
		{
			name:     "saved",
			method:   http.MethodPost,
			path:     "/save-teams",
			body:     body,
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, MessageResponse{Message: "Teams saved successfully."}),
		},
		{
			name:     "missing teams",
			method:   http.MethodPost,
			path:     "/save-teams",
			body:     []byte(`{"class_name":"CS101","project_name":"Proj1"}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpFieldsErr{
				Error:  "Invalid input.",
				Fields: map[string]string{"teams": "this field is required"},
			}),
		},
		{
			name:     "duplicate team names",
			method:   http.MethodPost,
			path:     "/save-teams",
			body:     []byte(`{"class_name":"CS101","project_name":"Proj1","teams":[{"teamName":"Red"},{"teamName":"red"}]}`),
			token:    token,
			wantCode: http.StatusConflict,
		},
		{
			name:     "student",
			method:   http.MethodPost,
			path:     "/save-teams",
			body:     body,
			token:    alice,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "team page of a member",
			method:   http.MethodGet,
			path:     "/api/classroom/CS101/project/Proj1/team/Red",
			token:    alice,
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown team",
			method:   http.MethodGet,
			path:     "/api/classroom/CS101/project/Proj1/team/Green",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "Team not found."}),
		},
		{
			name:     "delete team",
			method:   http.MethodDelete,
			path:     "/api/classroom/CS101/project/Proj1/team/Blue/delete",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, MessageResponse{Message: "Team deleted successfully."}),
		},
	}
	runHttpTests(t, app, tests)

	req, rec := newAuthRequest(http.MethodGet, "/api/classroom/CS101/project/Proj1/manage_team", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state team.State
	unmarshall(t, rec, &state)
	require.Len(t, state.Teams, 1)
	assert.Equal(t, "Red", state.Teams[0].Name)
	require.Len(t, state.Unassigned, 1)
	assert.Equal(t, "890003", state.Unassigned[0].StudentID)
}

func Test_projectApi_retrieve(t *testing.T) {
	app, env, token := projectSetup(t)
	testutil.CreateProject(t, env, testutil.Teacher("prof@lsu.edu"), "CS101", "Final Project")

	req, rec := newAuthRequest(http.MethodGet, "/api/classroom/CS101/project/Final%20Project", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail project.Detail
	unmarshall(t, rec, &detail)
	assert.Equal(t, "Final Project", detail.Project.Name)

	req, rec = newAuthRequest(http.MethodDelete, "/api/classroom/CS101/project/Final%20Project/delete", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, MessageResponse{Message: "Project deleted successfully."}),
	}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/api/classroom/CS101/project/Final%20Project", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "Project not found."}),
	}, rec)
}
