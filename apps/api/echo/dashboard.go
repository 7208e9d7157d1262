package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	app := deps.App
	g.GET("/dashboard", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, app.DashboardFor(contextUser(ctx)))
	}, jwt, ctxUserMiddleware(app.Users))
}
