package controllers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/avocadohq/avocado.go/db/models"
	"github.com/avocadohq/avocado.go/lib/responses"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TransactionController : Transaction Controller struct
type TransactionController struct {
	svc *service.AvocadoService
}

func NewTransactionController(svc *service.AvocadoService) *TransactionController {
	return &TransactionController{svc: svc}
}

type UpsertTransactionRequest struct {
	TransactionID int64                `json:"transaction_id" validate:"required,gt=0"`
	SpotID        int64                `json:"spot_id"`
	ClientID      *int64               `json:"client_id"`
	DateStart     *time.Time           `json:"date_start"`
	DateClose     *time.Time           `json:"date_close"`
	Sum           decimal.Decimal      `json:"sum"`
	PayedSum      *decimal.Decimal     `json:"payed_sum"`
	PayedCash     *decimal.Decimal     `json:"payed_cash"`
	PayedCard     *decimal.Decimal     `json:"payed_card"`
	PayedBonus    *decimal.Decimal     `json:"payed_bonus"`
	RoundSum      *decimal.Decimal     `json:"round_sum"`
	BonusPercent  *decimal.Decimal     `json:"bonus"`
	Status        int                  `json:"status"`
	Products      []TransactionLineDTO `json:"products" validate:"omitempty,dive"`
}

type TransactionLineDTO struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Count     decimal.Decimal `json:"count"`
	Sum       decimal.Decimal `json:"sum"`
}

type TransactionResponse struct {
	Transaction *models.Transaction         `json:"transaction"`
	Products    []models.TransactionProduct `json:"products"`
}

// UpsertTransaction : Sync a sale from the POS, line items included.
func (controller *TransactionController) UpsertTransaction(c echo.Context) error {
	ctx := c.Request().Context()
	var body UpsertTransactionRequest

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load upsert transaction request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid upsert transaction request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	transaction := &models.Transaction{
		TransactionID: body.TransactionID,
		SpotID:        body.SpotID,
		Sum:           body.Sum,
		PayedSum:      nullDecimal(body.PayedSum),
		PayedCash:     nullDecimal(body.PayedCash),
		PayedCard:     nullDecimal(body.PayedCard),
		PayedBonus:    nullDecimal(body.PayedBonus),
		RoundSum:      nullDecimal(body.RoundSum),
		Status:        body.Status,
	}
	if body.ClientID != nil {
		transaction.ClientID = sql.NullInt64{Int64: *body.ClientID, Valid: true}
	}
	if body.DateStart != nil {
		transaction.DateStart = bun.NullTime{Time: *body.DateStart}
	}
	if body.DateClose != nil {
		transaction.DateClose = bun.NullTime{Time: *body.DateClose}
	}

	if body.BonusPercent != nil {
		transaction.Bonus = *body.BonusPercent
	} else {
		percent, err := controller.svc.DefaultBonusPercent(ctx)
		if err != nil {
			c.Logger().Errorf("Failed to load default bonus percent: %v", err)
			return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
		}
		transaction.Bonus = percent
	}

	transaction, err := controller.svc.UpsertTransaction(ctx, transaction)
	if err != nil {
		c.Logger().Errorf("Failed to upsert transaction transaction_id:%d error: %v", body.TransactionID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	// Inline line items reuse the replace path, so the items_changed event
	// fires and the discount gets reconciled against the new set.
	if body.Products != nil {
		if err := controller.replaceProducts(ctx, body.TransactionID, body.Products); err != nil {
			c.Logger().Errorf("Failed to replace line items transaction_id:%d error: %v", body.TransactionID, err)
			return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
		}
	}

	return c.JSON(http.StatusOK, transaction)
}

type ReplaceProductsRequest struct {
	Products []TransactionLineDTO `json:"products" validate:"required,dive"`
}

// ReplaceProducts : Replace the full line-item set of a transaction.
func (controller *TransactionController) ReplaceProducts(c echo.Context) error {
	transactionID, err := pathID(c, "transaction_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var body ReplaceProductsRequest
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load replace products request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid replace products request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	err = controller.replaceProducts(c.Request().Context(), transactionID, body.Products)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to replace line items transaction_id:%d error: %v", transactionID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.NoContent(http.StatusOK)
}

func (controller *TransactionController) replaceProducts(ctx context.Context, transactionID int64, lines []TransactionLineDTO) error {
	products := make([]models.TransactionProduct, 0, len(lines))
	for _, line := range lines {
		products = append(products, models.TransactionProduct{
			TransactionID: transactionID,
			ProductID:     line.ProductID,
			Count:         line.Count,
			Sum:           line.Sum,
		})
	}
	return controller.svc.ReplaceTransactionProducts(ctx, transactionID, products)
}

// GetTransaction : Fetch a transaction with its line items.
func (controller *TransactionController) GetTransaction(c echo.Context) error {
	ctx := c.Request().Context()
	transactionID, err := pathID(c, "transaction_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	transaction, err := controller.svc.FindTransaction(ctx, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to fetch transaction transaction_id:%d error: %v", transactionID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	products, err := controller.svc.TransactionProductsFor(ctx, transactionID)
	if err != nil {
		c.Logger().Errorf("Failed to fetch line items transaction_id:%d error: %v", transactionID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &TransactionResponse{Transaction: transaction, Products: products})
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
