package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response shape. Status always mirrors the HTTP
// status code; Data is present only on successful reads.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK sends a 200 envelope. Pass nil data for bodies without a payload.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{
		Status:  http.StatusOK,
		Message: "OK",
		Data:    data,
	})
}

// Error sends an envelope whose body status equals the HTTP status. The
// message must never carry internal detail.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{
		Status:  status,
		Message: message,
	})
}

// BadRequest sends 400 with a description of the invalid field.
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends 401. One message for missing and wrong keys alike.
func Unauthorized(c echo.Context) error {
	return Error(c, http.StatusUnauthorized, "Unauthorized")
}

// InternalError sends 500 with a generic message.
func InternalError(c echo.Context, message string) error {
	return Error(c, http.StatusInternalServerError, message)
}
