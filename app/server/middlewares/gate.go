package middlewares

import (
	"github.com/labstack/echo/v4"
	"membership-dashboard/app/server/gate"
	"membership-dashboard/app/server/session"
	"net/http"
)

// Gate runs every request through the auth gate and turns its redirect
// decisions into responses.
func Gate(g *gate.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			action := g.Decide(req.Context(), req.URL.Path, session.FromRequest(req))
			if action == gate.Allow {
				return next(c)
			}

			// browsers re-issue non-GET redirects as GET on 303
			status := http.StatusFound
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				status = http.StatusSeeOther
			}
			return c.Redirect(status, g.Location(action))
		}
	}
}
