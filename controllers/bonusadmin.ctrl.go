package controllers

import (
	"net/http"
	"sync/atomic"

	"github.com/avocadohq/avocado.go/lib/responses"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
)

// BonusAdminController : Bonus Admin Controller struct
type BonusAdminController struct {
	svc     *service.AvocadoService
	running atomic.Bool
}

func NewBonusAdminController(svc *service.AvocadoService) *BonusAdminController {
	return &BonusAdminController{svc: svc}
}

type ManageProcessingRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type ManageProcessingResponse struct {
	Message string `json:"message"`
}

// ManageProcessing : Turn automatic bonus posting on or off.
func (controller *BonusAdminController) ManageProcessing(c echo.Context) error {
	var body ManageProcessingRequest

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load manage bonus processing request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid manage bonus processing request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	message, err := controller.svc.ManageBonusProcessing(c.Request().Context(), *body.Enabled)
	if err != nil {
		c.Logger().Errorf("Failed to manage bonus processing: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &ManageProcessingResponse{Message: message})
}

// Recalculate : Rebuild the whole bonus ledger. One run at a time; the
// request blocks until the rebuild finishes and reports its totals.
func (controller *BonusAdminController) Recalculate(c echo.Context) error {
	if !controller.running.CompareAndSwap(false, true) {
		return c.JSON(http.StatusConflict, responses.RecalculationRunningError)
	}
	defer controller.running.Store(false)

	result, err := controller.svc.RecalculateAllBonuses(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Bonus recalculation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, result)
}
