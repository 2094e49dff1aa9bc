package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core/classroom"
)

const rosterField = "student_file"

type classroomApi struct {
	svc      classroom.Service
	validate *validator.Validate
}

func registerClassroomAPI(e *echo.Echo, g *echo.Group, auth []echo.MiddlewareFunc, deps ServerDeps) {
	api := classroomApi{
		svc:      deps.ClassroomSvc,
		validate: deps.Validate,
	}

	teacherOnly := append(append([]echo.MiddlewareFunc{}, auth...), teacherMiddleware)

	// form endpoints
	e.POST("/addclassroom", api.create, teacherOnly...)
	e.POST("/editclassroom/:classId", api.update, teacherOnly...)

	cg := g.Group("/classroom/:classId", auth...)
	cg.GET("", api.retrieve)
	cg.DELETE("/delete", api.destroy, teacherMiddleware)

	// roster
	cg.GET("/manage_students", api.queryStudents, teacherMiddleware)
	cg.POST("/add_student", api.createStudent, teacherMiddleware)
	cg.GET("/edit_student/:studentId", api.retrieveStudent, teacherMiddleware)
	cg.PUT("/edit_student/:studentId", api.updateStudent, teacherMiddleware)
	cg.POST("/delete_student/:studentId", api.destroyStudent, teacherMiddleware)
}

// Handlers

func (api *classroomApi) create(ctx echo.Context) error {
	var data classroom.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	file, err := formFile(ctx, rosterField)
	if err != nil {
		return err
	}
	if file == nil {
		return classroom.ErrRosterRequired
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), sess, data, *file)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	return ctx.JSON(http.StatusCreated, ClassroomResponse{Message: "Classroom created successfully.", Classroom: c})
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	detail, err := api.svc.Read(ctx.Request().Context(), sess, param(ctx, "classId"))
	if err != nil {
		return errors.Wrap(err, "reading classroom")
	}
	return ctx.JSON(http.StatusOK, detail)
}

// update merges the new roster file into the current roster, or replaces it when replace_roster is set.
func (api *classroomApi) update(ctx echo.Context) error {
	var data classroom.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	file, err := formFile(ctx, rosterField)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), sess, param(ctx, "classId"), data, file)
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}
	return ctx.JSON(http.StatusOK, ClassroomResponse{Message: "Classroom updated successfully.", Classroom: c})
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), sess, param(ctx, "classId")); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Classroom deleted successfully."})
}

func (api *classroomApi) queryStudents(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.ListStudents(ctx.Request().Context(), sess, param(ctx, "classId"))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	if students == nil {
		students = []classroom.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *classroomApi) createStudent(ctx echo.Context) error {
	var data classroom.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	s, err := api.svc.AddStudent(ctx.Request().Context(), sess, param(ctx, "classId"), data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, StudentResponse{Message: "Student added successfully.", Student: s})
}

func (api *classroomApi) retrieveStudent(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetStudent(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "studentId"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *classroomApi) updateStudent(ctx echo.Context) error {
	var data classroom.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	s, err := api.svc.UpdateStudent(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "studentId"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, StudentResponse{Message: "Student updated successfully.", Student: s})
}

func (api *classroomApi) destroyStudent(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	err = api.svc.DeleteStudent(ctx.Request().Context(), sess, param(ctx, "classId"), param(ctx, "studentId"))
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Student deleted successfully."})
}

type (
	ClassroomResponse struct {
		Message   string              `json:"message"`
		Classroom classroom.Classroom `json:"classroom"`
	}

	StudentResponse struct {
		Message string            `json:"message"`
		Student classroom.Student `json:"student"`
	}
)
