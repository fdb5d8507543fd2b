package controllers

import (
	"net/http"

	"github.com/avocadohq/avocado.go/lib/responses"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
)

// SettingsController : Settings Controller struct
type SettingsController struct {
	svc *service.AvocadoService
}

func NewSettingsController(svc *service.AvocadoService) *SettingsController {
	return &SettingsController{svc: svc}
}

type SettingResponse struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// GetSetting : Read one system setting. A missing key returns a null value,
// not a 404: callers treat absence as "use the default".
func (controller *SettingsController) GetSetting(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	value, err := controller.svc.GetSetting(c.Request().Context(), key)
	if err != nil {
		c.Logger().Errorf("Failed to fetch setting key:%s error: %v", key, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &SettingResponse{Key: key, Value: value})
}

type SetSettingRequest struct {
	Value       string `json:"value" validate:"required"`
	Description string `json:"description"`
}

// SetSetting : Upsert one system setting.
func (controller *SettingsController) SetSetting(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var body SetSettingRequest
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load set setting request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid set setting request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := controller.svc.SetSetting(c.Request().Context(), key, body.Value, body.Description); err != nil {
		c.Logger().Errorf("Failed to store setting key:%s error: %v", key, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &SettingResponse{Key: key, Value: &body.Value})
}
