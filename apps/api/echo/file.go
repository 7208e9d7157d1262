package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/file"
	"github.com/trezcool/wazazi/core/user"
)

const fileFormField = "file"

type fileApi struct {
	svc    *file.Service
	usrSvc *user.Service
}

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := fileApi{
		svc:    deps.App.Files,
		usrSvc: deps.App.Users,
	}

	fg := g.Group("/files", jwt, ctxUserMiddleware(api.usrSvc))
	fg.GET("", api.query)
	fg.POST("", api.upload)
	fg.GET("/:id", api.download)
	fg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *fileApi) query(ctx echo.Context) error {
	files := api.svc.All()
	res := make([]file.Summary, 0, len(files))
	for _, f := range files {
		res = append(res, file.Summarize(f))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *fileApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile(fileFormField)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: fileFormField, Error: "this field is required"})
	}

	f, err := api.svc.UploadAsync(file.FormSource{FileHeader: fh}, contextUser(ctx)).Await(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusCreated, file.Summarize(f))
}

func (api *fileApi) download(ctx echo.Context) error {
	f, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding file")
	}
	content, mimeType, err := file.Decode(f)
	if err != nil {
		return errors.Wrap(err, "decoding file")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+strconv.Quote(f.Name))
	return ctx.Blob(http.StatusOK, mimeType, content)
}

// destroy lets uploaders remove their own files, and admins any file.
func (api *fileApi) destroy(ctx echo.Context) error {
	f, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding file")
	}
	usr := contextUser(ctx)
	if !usr.IsAdmin() && (f.UploadedBy != usr.Name || f.Role != usr.Role) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), f.ID); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return ctx.NoContent(http.StatusNoContent)
}
