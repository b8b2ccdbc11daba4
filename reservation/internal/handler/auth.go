package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/pkg/auth"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !h.creds.Check(req.Username, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrBadCredentials.Error())
	}

	ctx := c.Request().Context()
	token, err := h.sessions.Create(ctx, req.Username)
	if err != nil {
		h.log.Error("session create", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	resp := model.LoginResponse{Username: req.Username}
	if h.tokens != nil {
		access, exp, err := h.tokens.Issue(req.Username)
		if err != nil {
			h.log.Error("token issue", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp.Token, resp.ExpiresAt = access, &exp
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout drops the session, if any, and expires the cookie.
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(c.Request().Context(), cookie.Value); err != nil {
			h.log.Error("session delete", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}
