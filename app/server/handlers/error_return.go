package handlers

import (
	"github.com/labstack/echo/v4"
	"net/http"
)

type errorMessage struct {
	Message string `json:"message"`
}

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &errorMessage{
		Message: http.StatusText(statusCode),
	})
}

// erm answers with a specific, user-facing message.
func (a *App) erm(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &errorMessage{
		Message: message,
	})
}
