// Package respond shapes every API response into the same envelope:
// {"success": true, "data": ...} or {"success": false, "message": ...}.
package respond

import (
	"github.com/labstack/echo/v4"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK writes a success envelope with the given status code.
func OK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// Fail writes a failure envelope with the given status code.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}
