package portal

import "github.com/trezcool/wazazi/core/user"

type Route string

const (
	RouteLogin     Route = "login"
	RouteSignup    Route = "signup"
	RouteDashboard Route = "dashboard"
	RouteMessages  Route = "messages"
	RouteFiles     Route = "file-uploads"
	RouteMeetings  Route = "meeting-requests"
	RouteAdmin     Route = "admin"
)

// Guard decides whether usr (nil when logged out) may open route.
// When it may not, redirect is where the client should go instead.
func Guard(route Route, usr *user.User) (allowed bool, redirect Route) {
	switch route {
	case RouteLogin, RouteSignup:
		return true, ""
	case RouteAdmin:
		if usr == nil {
			return false, RouteLogin
		}
		if !usr.IsAdmin() {
			return false, RouteDashboard
		}
		return true, ""
	default:
		if usr == nil {
			return false, RouteLogin
		}
		return true, ""
	}
}
