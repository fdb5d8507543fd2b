package controllers

import (
	"net/http"

	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
)

// HealthController : Health Controller struct
type HealthController struct {
	svc *service.AvocadoService
}

func NewHealthController(svc *service.AvocadoService) *HealthController {
	return &HealthController{svc: svc}
}

func (controller *HealthController) Health(c echo.Context) error {
	if err := controller.svc.DB.PingContext(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}
	return c.NoContent(http.StatusOK)
}
