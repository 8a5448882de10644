package handlers

import (
	"errors"
	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"membership-dashboard/app/server/constants"
	"membership-dashboard/app/server/middlewares"
	"membership-dashboard/app/server/profiles"
	"net/http"
)

func (a *App) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, &signedInResponse{
		Profile:     middlewares.ProfileFrom(c),
		Permissions: middlewares.PermissionsFrom(c),
	})
}

func (a *App) ProfileGet(c echo.Context) error {
	return c.JSON(http.StatusOK, middlewares.ProfileFrom(c))
}

func (a *App) ProfileUpdate(c echo.Context) error {
	profile := middlewares.ProfileFrom(c)

	var fields profiles.Fields
	if err := c.Bind(&fields); err != nil {
		a.l.Debug("failed to bind profile fields", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	updated, err := a.profiles.UpdateFields(c.Request().Context(), profile.ID, &fields)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to update profile", zap.Stringer("id", profile.ID), zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to update profile")
	}

	return c.JSON(http.StatusOK, updated)
}

type passwordUpdateRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

func (a *App) PasswordUpdate(c echo.Context) error {
	rctx := c.Request().Context()
	profile := middlewares.ProfileFrom(c)

	var req passwordUpdateRequest
	if err := c.Bind(&req); err != nil || req.Current == "" {
		return a.er(c, http.StatusBadRequest)
	}
	if len(req.New) < constants.PasswordMinLength {
		return a.erm(c, http.StatusBadRequest, "password too short")
	}

	hash, err := a.profiles.PasswordHash(rctx, profile.ID)
	if err != nil {
		a.l.Error("failed to load credential", zap.Stringer("id", profile.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if match, _, err := argon2id.CheckHash(req.Current, hash); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		return a.erm(c, http.StatusForbidden, "current password does not match")
	}

	newHash, err := argon2id.CreateHash(req.New, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.profiles.SetPasswordHash(rctx, profile.ID, newHash); err != nil {
		a.l.Error("failed to update password", zap.Stringer("id", profile.ID), zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to update password")
	}

	return c.NoContent(http.StatusNoContent)
}
