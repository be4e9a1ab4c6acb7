package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes exposed to clients.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func validationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{CodeValidation, message})
}

func forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, errorResponse{CodeForbidden, message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, errorResponse{CodeNotFound, message})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, errorResponse{CodeConflict, message})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{CodeInternal, "something went wrong"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}
