package controllers

import (
	"net/http"

	"github.com/avocadohq/avocado.go/db/models"
	"github.com/avocadohq/avocado.go/lib/responses"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CatalogController : Catalog Controller struct
type CatalogController struct {
	svc *service.AvocadoService
}

func NewCatalogController(svc *service.AvocadoService) *CatalogController {
	return &CatalogController{svc: svc}
}

type UpsertProductRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"required"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
}

func (controller *CatalogController) UpsertProduct(c echo.Context) error {
	var body UpsertProductRequest

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load upsert product request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid upsert product request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	product, err := controller.svc.UpsertProduct(c.Request().Context(), &models.Product{
		ProductID: body.ProductID,
		Name:      body.Name,
		Category:  body.Category,
		Price:     body.Price,
	})
	if err != nil {
		c.Logger().Errorf("Failed to upsert product product_id:%d error: %v", body.ProductID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, product)
}

func (controller *CatalogController) ListProducts(c echo.Context) error {
	products, err := controller.svc.ListProducts(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list products: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, products)
}

type UpsertSpotRequest struct {
	SpotID  int64  `json:"spot_id" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

func (controller *CatalogController) UpsertSpot(c echo.Context) error {
	var body UpsertSpotRequest

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load upsert spot request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid upsert spot request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	spot, err := controller.svc.UpsertSpot(c.Request().Context(), &models.Spot{
		SpotID:  body.SpotID,
		Name:    body.Name,
		Address: body.Address,
	})
	if err != nil {
		c.Logger().Errorf("Failed to upsert spot spot_id:%d error: %v", body.SpotID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, spot)
}

func (controller *CatalogController) ListSpots(c echo.Context) error {
	spots, err := controller.svc.ListSpots(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list spots: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, spots)
}
