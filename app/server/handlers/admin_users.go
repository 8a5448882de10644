package handlers

import (
	"errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"membership-dashboard/app/server/middlewares"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/profiles"
	"net/http"
	"strconv"
	"strings"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 500
)

func parseProfileID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func (a *App) UserList(c echo.Context) error {
	showAll, page, limit := a.parsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	offset, take := offsetOf(showAll, page, limit)

	filter := profiles.ListFilter{
		Query:  c.QueryParam("q"),
		Role:   c.QueryParam("role"),
		Offset: offset,
		Limit:  take,
	}
	if banned := c.QueryParam("banned"); banned != "" {
		b, err := strconv.ParseBool(banned)
		if err != nil {
			return a.erm(c, http.StatusBadRequest, "invalid banned filter")
		}
		filter.Banned = &b
	}

	list, count, err := a.profiles.List(c.Request().Context(), filter)
	if err != nil {
		a.l.Error("failed to list profiles", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &listResponse[models.Profile]{
		Limit:   limit,
		PageMax: a.calcMaxPage(count, showAll, limit),
		Total:   count,
		List:    list,
	})
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

func (a *App) UserRoleUpdate(c echo.Context) error {
	actor := middlewares.ProfileFrom(c)

	id, err := parseProfileID(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	var req roleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest)
	}
	role, err := permissions.ParseRole(req.Role)
	if err != nil {
		return a.erm(c, http.StatusBadRequest, "unknown role")
	}

	if id == actor.ID && role != permissions.RoleAdmin {
		return a.erm(c, http.StatusConflict, "admins cannot demote themselves")
	}

	profile, err := a.profiles.SetRole(c.Request().Context(), actor.ID.String(), id, role)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to set role", zap.Stringer("id", id), zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to update role")
	}

	return c.JSON(http.StatusOK, profile)
}

type banUpdateRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason"`
}

func (a *App) UserBanUpdate(c echo.Context) error {
	actor := middlewares.ProfileFrom(c)

	id, err := parseProfileID(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	var req banUpdateRequest
	if err := c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	if id == actor.ID && req.Banned {
		return a.erm(c, http.StatusConflict, "admins cannot ban themselves")
	}

	profile, err := a.profiles.SetBan(c.Request().Context(), actor.ID.String(), id, req.Banned, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, profiles.ErrBanReasonRequired) {
			return a.erm(c, http.StatusBadRequest, "ban reason required")
		} else if errors.Is(err, profiles.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to set ban", zap.Stringer("id", id), zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to update ban")
	}

	return c.JSON(http.StatusOK, profile)
}

type promoteRequest struct {
	Email string `json:"email"`
}

func (a *App) UserPromote(c echo.Context) error {
	actor := middlewares.ProfileFrom(c)

	var req promoteRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return a.er(c, http.StatusBadRequest)
	}

	profile, err := a.profiles.PromoteByEmail(c.Request().Context(), actor.ID.String(), req.Email)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to promote profile", zap.String("email", req.Email), zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to promote")
	}

	return c.JSON(http.StatusOK, profile)
}

func (a *App) AuditList(c echo.Context) error {
	limit := auditDefaultLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			return a.erm(c, http.StatusBadRequest, "invalid limit")
		}
		limit = min(l, auditMaxLimit)
	}

	list, err := a.profiles.AuditTrail(c.Request().Context(), limit)
	if err != nil {
		a.l.Error("failed to list audit trail", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, list)
}
