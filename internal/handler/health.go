package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness. It deliberately checks nothing downstream so a
// database or redis outage does not make the process look dead.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
