package middlewares

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/profiles"
	"membership-dashboard/app/server/session"
	"net/http"
)

const (
	ctxKeySession     = "session"
	ctxKeyProfile     = "profile"
	ctxKeyPermissions = "permissions"
)

type ProfileGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// RequireProfile loads the session and the profile behind it, and derives
// the permissions of the request. The gate may have let a request through on
// a cached result, so the session is checked again here.
func RequireProfile(sessions session.Store, store ProfileGetter, cookie session.CookieOptions, l *zap.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rctx := c.Request().Context()

			token := session.FromRequest(c.Request())
			sess, err := sessions.Get(rctx, token)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					l.Error("failed to load session", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, errorBody(http.StatusInternalServerError))
				}
				return c.JSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized))
			}

			id, err := uuid.Parse(sess.UserID)
			if err != nil {
				l.Error("session carries an invalid user id", zap.String("userID", sess.UserID), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized))
			}

			profile, err := store.Get(rctx, id)
			if err != nil {
				if errors.Is(err, profiles.ErrNotFound) {
					// the profile is gone, so is the session
					if err := sessions.Delete(rctx, token); err != nil {
						l.Error("failed to delete orphaned session", zap.Error(err))
					}
					session.ClearCookie(c.Response(), cookie)
					return c.JSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized))
				}
				l.Error("failed to load profile", zap.Stringer("id", id), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorBody(http.StatusInternalServerError))
			}

			c.Set(ctxKeySession, sess)
			c.Set(ctxKeyProfile, profile)
			c.Set(ctxKeyPermissions, permissions.Resolve(profile))

			return next(c)
		}
	}
}

// Require rejects requests whose permissions lack capability. It must run after RequireProfile.
func Require(capability permissions.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			perms, ok := c.Get(ctxKeyPermissions).(permissions.Permissions)
			if !ok || !capability(perms) {
				return c.JSON(http.StatusForbidden, errorBody(http.StatusForbidden))
			}
			return next(c)
		}
	}
}

func SessionFrom(c echo.Context) *session.Session {
	s, _ := c.Get(ctxKeySession).(*session.Session)
	return s
}

func ProfileFrom(c echo.Context) *models.Profile {
	p, _ := c.Get(ctxKeyProfile).(*models.Profile)
	return p
}

func PermissionsFrom(c echo.Context) permissions.Permissions {
	p, _ := c.Get(ctxKeyPermissions).(permissions.Permissions)
	return p
}

func errorBody(status int) map[string]string {
	return map[string]string{"message": http.StatusText(status)}
}
