package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/user"
)

type userApi struct {
	conf     *core.Config
	svc      *user.Service
	validate *validator.Validate
	mailer   core.EmailService
	logger   core.Logger
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		conf:     deps.Conf,
		svc:      deps.App.Users,
		validate: deps.Validate,
		mailer:   deps.Mailer,
		logger:   deps.Logger,
	}

	g.GET("/roles", api.queryRoles)

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/signup", api.signup)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt, ctxUserMiddleware(api.svc))
	ag.POST("/logout", api.logout)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.GET("/teachers", api.teachers)
	ag.GET("/parents", api.parents)
	ag.GET("", api.query, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	data.Clean()
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(data.Email, data.Password, data.Role)
	if err != nil {
		return errAuthenticationFailed
	}
	return api.respondWithToken(ctx, http.StatusOK, usr)
}

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.svc.Signup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return api.respondWithToken(ctx, http.StatusCreated, usr)
}

// resetPassword emails a reset link. Unknown emails get the same answer.
func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	reset, err := api.svc.RequestPasswordReset(data.Email, api.resetTokens())
	switch {
	case err == nil:
		if api.mailer != nil {
			api.mailer.SendMessages(&core.EmailMessage{
				To:           []mail.Address{{Name: reset.User.Name, Address: reset.User.Email}},
				Subject:      "Password reset",
				TemplateName: "password_reset",
				TemplateData: reset,
			})
		}
	case !errors.Is(err, user.ErrNotFound):
		// do not return errors to attackers
		api.logger.Error(fmt.Sprintf("requesting password reset: %+v", err), err)
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: passwordResetRequested})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := api.svc.ResetPassword(ctx.Request().Context(), data, api.resetTokens()); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) resetTokens() user.ResetTokens {
	return user.ResetTokens{SecretKey: api.conf.SecretKey, Timeout: api.conf.PasswordResetTimeoutDelta}
}

// logout is a no-op for stateless tokens; clients drop theirs.
func (api *userApi) logout(ctx echo.Context) error {
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: contextUser(ctx)})
}

func (api *userApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, contextUser(ctx))
}

func (api *userApi) teachers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, nonNil(api.svc.Teachers()))
}

func (api *userApi) parents(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, nonNil(api.svc.Parents()))
}

// query lists every user but the caller.
func (api *userApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, nonNil(api.svc.Others(contextUser(ctx).ID)))
}

// destroy deletes a user. Their conversations, meetings and files are kept.
func (api *userApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")

	// Say No to Suicide! ctxUser cannot delete themselves
	if id == contextUser(ctx).ID {
		return errHttpForbidden
	}
	if _, err := api.svc.GetByID(id); err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) respondWithToken(ctx echo.Context, code int, usr user.User) error {
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, LoginResponse{Token: token, User: usr})
}

const passwordResetRequested = "If the email address supplied is associated with an account on this system, " +
	"an email will arrive in your inbox shortly with instructions to reset your password."

type (
	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
