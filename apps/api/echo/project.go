package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/core/team"
)

const teamField = "team_file"

type projectApi struct {
	svc      project.Service
	teamSvc  team.Service
	validate *validator.Validate
}

func registerProjectAPI(e *echo.Echo, g *echo.Group, auth []echo.MiddlewareFunc, deps ServerDeps) {
	api := projectApi{
		svc:      deps.ProjectSvc,
		teamSvc:  deps.TeamSvc,
		validate: deps.Validate,
	}

	teacherOnly := append(append([]echo.MiddlewareFunc{}, auth...), teacherMiddleware)

	e.POST("/save-teams", api.saveTeams, teacherOnly...)
	g.POST("/add_project/:classId", api.create, teacherOnly...)

	pg := g.Group("/classroom/:classId/project/:projectName", auth...)
	pg.GET("", api.retrieve)
	pg.POST("/edit", api.update, teacherMiddleware)
	pg.DELETE("/delete", api.destroy, teacherMiddleware)
	pg.POST("/import_teams", api.importTeams, teacherMiddleware)

	// teams
	pg.GET("/manage_team", api.editorState, teacherMiddleware)
	pg.GET("/team/:teamName", api.retrieveTeam)
	pg.DELETE("/team/:teamName/delete", api.destroyTeam, teacherMiddleware)
}

// Handlers

// create stores the project, then the teams of the optional team file.
// The two writes are independent: a rejected team file leaves the project in place.
func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	file, err := formFile(ctx, teamField)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqCtx, courseID := ctx.Request().Context(), param(ctx, "classId")

	p, err := api.svc.Create(reqCtx, sess, courseID, data)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	resp := ProjectResponse{Message: "Project added successfully.", Project: p}
	if file != nil {
		if resp.Teams, err = api.svc.ImportTeams(reqCtx, sess, courseID, p.Name, *file); err != nil {
			return errors.Wrap(err, "importing teams")
		}
		resp.Message = "Project and teams added successfully."
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	detail, err := api.svc.Read(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "projectName"))
	if err != nil {
		return errors.Wrap(err, "reading project")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *projectApi) update(ctx echo.Context) error {
	var data project.UpdateProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	file, err := formFile(ctx, teamField)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqCtx, courseID, name := ctx.Request().Context(), param(ctx, "classId"), param(ctx, "projectName")

	p, err := api.svc.Update(reqCtx, sess, courseID, name, data)
	if err != nil {
		return errors.Wrap(err, "updating project")
	}
	resp := ProjectResponse{Message: "Project updated successfully.", Project: p}
	if file != nil {
		if resp.Teams, err = api.svc.ImportTeams(reqCtx, sess, courseID, p.Name, *file); err != nil {
			return errors.Wrap(err, "importing teams")
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *projectApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	err = api.svc.Delete(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "projectName"))
	if err != nil {
		return errors.Wrap(err, "deleting project")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Project deleted successfully."})
}

func (api *projectApi) importTeams(ctx echo.Context) error {
	file, err := formFile(ctx, teamField)
	if err != nil {
		return err
	}
	if file == nil {
		return core.NewValidationError(
			errors.New("A team file is required."),
			core.FieldError{Field: teamField, Error: "this field is required"},
		)
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	teams, err := api.svc.ImportTeams(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "projectName"), *file)
	if err != nil {
		return errors.Wrap(err, "importing teams")
	}
	return ctx.JSON(http.StatusOK, TeamsResponse{Message: "Teams imported successfully.", Teams: teams})
}

func (api *projectApi) editorState(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	state, err := api.teamSvc.Load(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "projectName"))
	if err != nil {
		return errors.Wrap(err, "loading teams")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *projectApi) saveTeams(ctx echo.Context) error {
	var data SaveTeamsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveTeamsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err = api.teamSvc.Save(ctx.Request().Context(), sess, data.ClassID, data.ProjectName, data.Teams); err != nil {
		return errors.Wrap(err, "saving teams")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Teams saved successfully."})
}

func (api *projectApi) retrieveTeam(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.ReadTeam(
		ctx.Request().Context(), sess,
		param(ctx, "classId"), param(ctx, "projectName"), param(ctx, "teamName"),
	)
	if err != nil {
		return errors.Wrap(err, "reading team")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *projectApi) destroyTeam(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	err = api.teamSvc.DeleteTeam(
		ctx.Request().Context(), sess,
		param(ctx, "classId"), param(ctx, "projectName"), param(ctx, "teamName"),
	)
	if err != nil {
		return errors.Wrap(err, "deleting team")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Team deleted successfully."})
}

type (
	ProjectResponse struct {
		Message string          `json:"message"`
		Project project.Project `json:"project"`
		Teams   []project.Team  `json:"teams,omitempty"`
	}

	TeamsResponse struct {
		Message string         `json:"message"`
		Teams   []project.Team `json:"teams"`
	}

	SaveTeamsRequest struct {
		ClassID     string            `json:"class_name" validate:"required"`
		ProjectName string            `json:"project_name" validate:"required"`
		Teams       []team.Assignment `json:"teams" validate:"required"`
	}
)

func (sr *SaveTeamsRequest) Validate(validate *validator.Validate) error {
	sr.ClassID = core.CleanString(sr.ClassID)
	sr.ProjectName = core.CleanString(sr.ProjectName)
	return validate.Struct(sr)
}
