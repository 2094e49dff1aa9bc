package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/breadcrumb"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/user"
)

type sessionApi struct {
	conf         *core.Config
	svc          user.Service
	classroomSvc classroom.Service
	denylist     core.TokenDenylist
	validate     *validator.Validate
}

func registerSessionAPI(g *echo.Group, auth []echo.MiddlewareFunc, deps ServerDeps) {
	api := sessionApi{
		conf:         deps.Conf,
		svc:          deps.UserSvc,
		classroomSvc: deps.ClassroomSvc,
		denylist:     deps.Denylist,
		validate:     deps.Validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", auth...)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
	ag.GET("/breadcrumbs", api.breadcrumbs)
	ag.GET("/classrooms", api.dashboard)
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Login(ctx.Request().Context(), data.IDToken)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	sess := usr.Session()
	token, err := GenerateToken(NewClaims(sess, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Session: sess,
		Home:    core.HomePath(sess.Role),
	})
}

// logout revokes the token until it expires on its own.
func (api *sessionApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if api.denylist != nil && claims.Id != "" {
		if err = api.denylist.Revoke(ctx.Request().Context(), claims.Id, claims.ExpiresAtTime()); err != nil {
			return errors.Wrap(err, "revoking token")
		}
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully."})
}

func (api *sessionApi) me(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MeResponse{Session: sess, Home: core.HomePath(sess.Role)})
}

func (api *sessionApi) breadcrumbs(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, breadcrumb.Derive(ctx.QueryParam("path"), sess.Role))
}

// dashboard lists the classrooms of the home page: owned ones for teachers, enrolled ones for students.
func (api *sessionApi) dashboard(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	cs, err := api.classroomSvc.List(ctx.Request().Context(), sess)
	if err != nil {
		return errors.Wrap(err, "listing classrooms")
	}
	if cs == nil {
		cs = []classroom.Classroom{}
	}
	return ctx.JSON(http.StatusOK, cs)
}

type (
	LoginRequest struct {
		IDToken string `json:"idToken" validate:"required"`
	}

	LoginResponse struct {
		Token   string       `json:"token"`
		Session core.Session `json:"user"`
		Home    string       `json:"home"`
	}

	MeResponse struct {
		Session core.Session `json:"user"`
		Home    string       `json:"home"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.IDToken = core.CleanString(lr.IDToken)
	return validate.Struct(lr)
}
