package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core/whiteboard"
)

type whiteboardApi struct {
	svc      whiteboard.Service
	validate *validator.Validate
}

func registerWhiteboardAPI(g *echo.Group, auth []echo.MiddlewareFunc, deps ServerDeps) {
	api := whiteboardApi{
		svc:      deps.WhiteboardSvc,
		validate: deps.Validate,
	}

	wg := g.Group("/whiteboard/:classId/:projectName/:teamName", auth...)
	wg.GET("", api.open)
	wg.GET("/history", api.history)

	// overlay
	sg := wg.Group("/shapes/:shapeId")
	sg.GET("", api.summary)
	sg.POST("/reactions", api.react)
	sg.GET("/comments", api.queryComments)
	sg.POST("/comments", api.comment)
}

func roomRef(ctx echo.Context) whiteboard.Ref {
	return whiteboard.Ref{
		Classroom: param(ctx, "classId"),
		Project:   param(ctx, "projectName"),
		Team:      param(ctx, "teamName"),
	}
}

// Handlers

func (api *whiteboardApi) open(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	room, err := api.svc.OpenRoom(ctx.Request().Context(), sess, roomRef(ctx))
	if err != nil {
		return errors.Wrap(err, "opening room")
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *whiteboardApi) history(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	actions, err := api.svc.History(ctx.Request().Context(), sess, roomRef(ctx))
	if err != nil {
		return errors.Wrap(err, "getting history")
	}
	return ctx.JSON(http.StatusOK, actions)
}

func (api *whiteboardApi) summary(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.Summary(ctx.Request().Context(), sess, roomRef(ctx), param(ctx, "shapeId"))
	if err != nil {
		return errors.Wrap(err, "getting summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *whiteboardApi) react(ctx echo.Context) error {
	var data whiteboard.NewReaction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReaction")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	summary, err := api.svc.React(ctx.Request().Context(), sess, roomRef(ctx), param(ctx, "shapeId"), data.Reaction)
	if err != nil {
		return errors.Wrap(err, "reacting")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *whiteboardApi) queryComments(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	comments, err := api.svc.Comments(ctx.Request().Context(), sess, roomRef(ctx), param(ctx, "shapeId"))
	if err != nil {
		return errors.Wrap(err, "listing comments")
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *whiteboardApi) comment(ctx echo.Context) error {
	var data whiteboard.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.AddComment(ctx.Request().Context(), sess, roomRef(ctx), param(ctx, "shapeId"), data.Text)
	if err != nil {
		return errors.Wrap(err, "adding comment")
	}
	return ctx.JSON(http.StatusCreated, c)
}
