package handlers

import (
	"context"
	"errors"
	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"membership-dashboard/app/server/constants"
	"membership-dashboard/app/server/jwt"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/profiles"
	"membership-dashboard/app/server/session"
	"net/http"
	"net/mail"
	"strings"
)

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type signedInResponse struct {
	Profile     *models.Profile         `json:"profile"`
	Permissions permissions.Permissions `json:"permissions"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind login body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Email == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	profile, err := a.profiles.GetByEmail(rctx, req.Email)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return a.erm(c, http.StatusUnauthorized, "invalid email or password")
		}
		a.l.Error("failed to find profile", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	hash, err := a.profiles.PasswordHash(rctx, profile.ID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return a.erm(c, http.StatusUnauthorized, "invalid email or password")
		}
		a.l.Error("failed to load credential", zap.Stringer("id", profile.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if match, _, err := argon2id.CheckHash(req.Password, hash); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		return a.erm(c, http.StatusUnauthorized, "invalid email or password")
	}

	if err := a.startSession(c, profile); err != nil {
		a.l.Error("failed to start session", zap.Stringer("id", profile.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	now := a.now()
	if err := a.profiles.TouchLastLogin(rctx, profile.ID, now); err != nil {
		a.l.Error("failed to record last login", zap.Stringer("id", profile.ID), zap.Error(err))
	} else {
		profile.LastLoginAt = &now
	}

	return c.JSON(http.StatusOK, &signedInResponse{
		Profile:     profile,
		Permissions: permissions.Resolve(profile),
	})
}

func (a *App) AuthRegister(c echo.Context) error {
	rctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind register body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if !validEmail(req.Email) {
		return a.erm(c, http.StatusBadRequest, "invalid email")
	}
	if len(req.Password) < constants.PasswordMinLength {
		return a.erm(c, http.StatusBadRequest, "password too short")
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	profile := models.Profile{
		Email:       req.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        string(permissions.RoleUser),
	}
	if err := a.profiles.Create(rctx, &profile, hash); err != nil {
		if errors.Is(err, profiles.ErrEmailTaken) {
			return a.erm(c, http.StatusConflict, "email already registered")
		}
		a.l.Error("failed to create profile", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.startSession(c, &profile); err != nil {
		a.l.Error("failed to start session", zap.Stringer("id", profile.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, &signedInResponse{
		Profile:     &profile,
		Permissions: permissions.Resolve(&profile),
	})
}

func (a *App) AuthLogout(c echo.Context) error {
	token := session.FromRequest(c.Request())
	if token != "" {
		if err := a.sessions.Delete(c.Request().Context(), token); err != nil {
			a.l.Error("failed to delete session", zap.Error(err))
		}
		a.gate.Forget(token)
	}

	session.ClearCookie(c.Response(), a.cookie)

	return c.NoContent(http.StatusNoContent)
}

type recoveryRequest struct {
	Email string `json:"email"`
}

// RecoveryRequest always answers 202 so the response does not reveal which emails exist.
func (a *App) RecoveryRequest(c echo.Context) error {
	var req recoveryRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return a.er(c, http.StatusBadRequest)
	}

	a.sendRecovery(c.Request().Context(), req.Email)

	return c.NoContent(http.StatusAccepted)
}

// sendRecovery signs and delivers a recovery token when email belongs to a
// profile. Failures are only logged.
func (a *App) sendRecovery(ctx context.Context, email string) {
	profile, err := a.profiles.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, profiles.ErrNotFound) {
			a.l.Error("failed to find profile for recovery", zap.Error(err))
		}
		return
	}

	hash, err := a.profiles.PasswordHash(ctx, profile.ID)
	if err != nil {
		a.l.Error("failed to load credential for recovery", zap.Stringer("id", profile.ID), zap.Error(err))
		return
	}

	token, err := a.jwt.SignRecovery(&jwt.Recovery{
		ProfileID:   profile.ID.String(),
		Fingerprint: jwt.Fingerprint(hash),
		Expires:     a.now().Add(constants.RecoveryTokenDuration).Unix(),
	})
	if err != nil {
		a.l.Error("failed to sign recovery token", zap.Error(err))
		return
	}

	if err := a.deliver(ctx, profile.Email, token); err != nil {
		a.l.Error("failed to deliver recovery token", zap.Stringer("id", profile.ID), zap.Error(err))
	}
}

type recoveryConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (a *App) RecoveryConfirm(c echo.Context) error {
	rctx := c.Request().Context()

	var req recoveryConfirmRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return a.er(c, http.StatusBadRequest)
	}
	if len(req.Password) < constants.PasswordMinLength {
		return a.erm(c, http.StatusBadRequest, "password too short")
	}

	recovery, err := a.jwt.ParseRecovery(req.Token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return a.erm(c, http.StatusBadRequest, "recovery link expired")
		}
		return a.erm(c, http.StatusBadRequest, "invalid recovery link")
	}

	id, err := parseProfileID(recovery.ProfileID)
	if err != nil {
		return a.erm(c, http.StatusBadRequest, "invalid recovery link")
	}

	hash, err := a.profiles.PasswordHash(rctx, id)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return a.erm(c, http.StatusBadRequest, "invalid recovery link")
		}
		a.l.Error("failed to load credential", zap.Stringer("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// a used link no longer matches the stored hash
	if jwt.Fingerprint(hash) != recovery.Fingerprint {
		return a.erm(c, http.StatusBadRequest, "invalid recovery link")
	}

	newHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.profiles.SetPasswordHash(rctx, id, newHash); err != nil {
		a.l.Error("failed to update password", zap.Stringer("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusNoContent)
}

func (a *App) startSession(c echo.Context, profile *models.Profile) error {
	sessionID, err := session.GenerateID()
	if err != nil {
		return err
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)

	if err := a.sessions.Create(c.Request().Context(), session.Session{
		SessionID: sessionID,
		UserID:    profile.ID.String(),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}

	session.SetCookie(c.Response(), sessionID, expiresAt, a.cookie)

	return nil
}
