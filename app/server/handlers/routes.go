package handlers

import (
	"github.com/labstack/echo/v4"
	"membership-dashboard/app/server/middlewares"
	"membership-dashboard/app/server/permissions"
)

// RegisterRoutes binds every handler of the app. The auth gate runs before
// routing, so only the signed-in groups load the profile.
func (a *App) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", a.HealthCheck)

	e.GET("/pages", a.PageList)
	e.GET("/pages/:slug", a.PageGet)

	e.GET("/login", a.Form("login", "email", "password"))
	e.POST("/login", a.AuthLogin)
	e.GET("/register", a.Form("register", "email", "password", "display_name"))
	e.POST("/register", a.AuthRegister)
	e.POST("/logout", a.AuthLogout)
	e.GET("/recuperar-senha", a.Form("recovery", "email"))
	e.POST("/recuperar-senha", a.RecoveryRequest)
	e.POST("/recuperar-senha/confirm", a.RecoveryConfirm)

	e.GET("/blog", a.BlogList)
	e.GET("/blog/:slug", a.BlogGet)

	signedIn := middlewares.RequireProfile(a.sessions, a.profiles, a.cookie, a.l)

	dashboard := e.Group("/dashboard", signedIn)
	dashboard.GET("", a.Dashboard)
	dashboard.GET("/profile", a.ProfileGet)
	dashboard.PUT("/profile", a.ProfileUpdate, middlewares.Require(permissions.EditProfile))
	dashboard.PUT("/security/password", a.PasswordUpdate)

	admin := e.Group("/admin", signedIn, middlewares.Require(permissions.ViewAdminPanel))
	admin.GET("/users", a.UserList)
	admin.POST("/users/promote", a.UserPromote, middlewares.Require(permissions.ManageUsers))
	admin.PUT("/users/:id/role", a.UserRoleUpdate, middlewares.Require(permissions.ManageUsers))
	admin.PUT("/users/:id/ban", a.UserBanUpdate, middlewares.Require(permissions.BanUsers))
	admin.GET("/posts", a.PostList)
	admin.POST("/posts", a.PostCreate, middlewares.Require(permissions.CreateContent))
	admin.PUT("/posts/:id", a.PostUpdate, middlewares.Require(permissions.EditContent))
	admin.DELETE("/posts/:id", a.PostDelete, middlewares.Require(permissions.DeleteContent))
	admin.GET("/audit", a.AuditList)
}
