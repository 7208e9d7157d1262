package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/user"
)

var errNotATeacher = "not a teacher"

type meetingApi struct {
	svc      *meeting.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerMeetingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := meetingApi{
		svc:      deps.App.Meetings,
		usrSvc:   deps.App.Users,
		validate: deps.Validate,
	}

	mg := g.Group("/meetings", jwt, ctxUserMiddleware(api.usrSvc))
	mg.GET("", api.query)
	mg.POST("", api.create, roleMiddleware(user.RoleParent))
	mg.PUT("/:id/status", api.updateStatus, roleMiddleware(user.RoleTeacher, user.RoleAdmin))
}

// Handlers

// query lists the caller's requests. Admins see them all.
func (api *meetingApi) query(ctx echo.Context) error {
	usr := contextUser(ctx)
	if usr.IsAdmin() {
		return ctx.JSON(http.StatusOK, nonNil(api.svc.All()))
	}
	return ctx.JSON(http.StatusOK, nonNil(api.svc.ForUser(usr)))
}

func (api *meetingApi) create(ctx echo.Context) error {
	var data meeting.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	teacher, err := api.usrSvc.GetByID(data.TeacherID)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return errors.Wrap(err, "finding teacher")
	}
	if err != nil || !teacher.IsTeacher() {
		return core.NewValidationError(nil, core.FieldError{Field: "teacherId", Error: errNotATeacher})
	}

	req, err := api.svc.RequestMeeting(
		ctx.Request().Context(),
		core.CleanString(data.Reason),
		core.CleanString(data.PreferredDateTime),
		contextUser(ctx),
		teacher.ID,
		teacher.Name,
	)
	if err != nil {
		return errors.Wrap(err, "requesting meeting")
	}
	return ctx.JSON(http.StatusCreated, req)
}

// updateStatus sets any status, whatever the current one. Teachers only answer their own requests.
func (api *meetingApi) updateStatus(ctx echo.Context) error {
	var data meeting.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if status, err := meeting.ParseStatus(string(data.Status)); err == nil {
		data.Status = status
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	req, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding meeting request")
	}
	if usr := contextUser(ctx); usr.IsTeacher() && req.TeacherID != usr.ID {
		return errHttpForbidden
	}

	if err := api.svc.UpdateRequestStatus(ctx.Request().Context(), req.ID, data.Status); err != nil {
		return errors.Wrap(err, "updating meeting request status")
	}
	req.Status = data.Status
	return ctx.JSON(http.StatusOK, req)
}
