package echoapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/services/notify"
)

type feedApi struct {
	hub      *notify.Hub
	logger   core.Logger
	upgrader websocket.Upgrader
}

// registerFeedAPI serves the websocket change feed. Browsers cannot set headers on websockets,
// so the token comes in the `token` query param.
func registerFeedAPI(g *echo.Group, deps ServerDeps) {
	if deps.Hub == nil {
		return
	}
	origin := deps.Conf.FrontendBaseURL
	api := feedApi{
		hub:    deps.Hub,
		logger: deps.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || o == origin || deps.Conf.Debug
			},
		},
	}
	g.GET("/ws", api.serve, jwtMiddleware(deps.Conf, true), ctxUserMiddleware(deps.App.Users))
}

func (api *feedApi) serve(ctx echo.Context) error {
	usr := contextUser(ctx)
	conn, err := api.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader already replied
		api.logger.Debug(fmt.Sprintf("websocket upgrade: %v", err), usr)
		return nil
	}
	api.hub.Serve(conn, usr.ID)
	return nil
}
