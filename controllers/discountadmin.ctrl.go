package controllers

import (
	"net/http"
	"sync/atomic"

	"github.com/avocadohq/avocado.go/lib/responses"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
)

// DiscountAdminController : Discount Admin Controller struct
type DiscountAdminController struct {
	svc     *service.AvocadoService
	running atomic.Bool
}

func NewDiscountAdminController(svc *service.AvocadoService) *DiscountAdminController {
	return &DiscountAdminController{svc: svc}
}

// ManageProcessing : Turn automatic discount reconciliation on or off.
func (controller *DiscountAdminController) ManageProcessing(c echo.Context) error {
	var body ManageProcessingRequest

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load manage discount processing request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid manage discount processing request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	message, err := controller.svc.ManageDiscountProcessing(c.Request().Context(), *body.Enabled)
	if err != nil {
		c.Logger().Errorf("Failed to manage discount processing: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &ManageProcessingResponse{Message: message})
}

// Recalculate : Recompute every transaction's discount in one pass.
func (controller *DiscountAdminController) Recalculate(c echo.Context) error {
	if !controller.running.CompareAndSwap(false, true) {
		return c.JSON(http.StatusConflict, responses.RecalculationRunningError)
	}
	defer controller.running.Store(false)

	result, err := controller.svc.RecalculateAllDiscounts(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Discount recalculation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, result)
}
