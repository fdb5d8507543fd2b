package controllers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/avocadohq/avocado.go/db/models"
	"github.com/avocadohq/avocado.go/lib/responses"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ClientController : Client Controller struct
type ClientController struct {
	svc *service.AvocadoService
}

func NewClientController(svc *service.AvocadoService) *ClientController {
	return &ClientController{svc: svc}
}

type UpsertClientRequest struct {
	ClientID        int64            `json:"client_id" validate:"required,gt=0"`
	Firstname       string           `json:"firstname"`
	Lastname        string           `json:"lastname"`
	Phone           string           `json:"phone"`
	DiscountPercent *decimal.Decimal `json:"discount_percent" validate:"omitempty"`
}

// UpsertClient : Sync a client record from the POS. The bonus balance is
// engine-owned and not accepted here.
func (controller *ClientController) UpsertClient(c echo.Context) error {
	var body UpsertClientRequest

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load upsert client request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid upsert client request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	client := &models.Client{
		ClientID:        body.ClientID,
		Firstname:       body.Firstname,
		Lastname:        body.Lastname,
		Phone:           body.Phone,
		DiscountPercent: nullDecimal(body.DiscountPercent),
	}

	client, err := controller.svc.UpsertClient(c.Request().Context(), client)
	if err != nil {
		c.Logger().Errorf("Failed to upsert client client_id:%d error: %v", body.ClientID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, client)
}

// GetClient : Fetch a client record.
func (controller *ClientController) GetClient(c echo.Context) error {
	clientID, err := pathID(c, "client_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	client, err := controller.svc.FindClient(c.Request().Context(), clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to fetch client client_id:%d error: %v", clientID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, client)
}

type BalanceResponse struct {
	ClientID      int64 `json:"client_id"`
	Balance       int64 `json:"balance"`
	LedgerBalance int64 `json:"ledger_balance"`
}

// Balance : Report the stored balance next to the one recomputed from the
// ledger, so drift is visible to callers.
func (controller *ClientController) Balance(c echo.Context) error {
	ctx := c.Request().Context()
	clientID, err := pathID(c, "client_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	balance, err := controller.svc.ClientBonusBalance(ctx, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	}
	if err != nil {
		c.Logger().Errorf("Failed to fetch balance client_id:%d error: %v", clientID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	ledgerBalance, err := controller.svc.ClientLedgerBalance(ctx, clientID)
	if err != nil {
		c.Logger().Errorf("Failed to sum ledger client_id:%d error: %v", clientID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &BalanceResponse{
		ClientID:      clientID,
		Balance:       balance,
		LedgerBalance: ledgerBalance,
	})
}

// BonusHistory : List a client's ledger entries, newest first.
func (controller *ClientController) BonusHistory(c echo.Context) error {
	ctx := c.Request().Context()
	clientID, err := pathID(c, "client_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if _, err := controller.svc.FindClient(ctx, clientID); errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	} else if err != nil {
		c.Logger().Errorf("Failed to fetch client client_id:%d error: %v", clientID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	history, err := controller.svc.BonusHistoryFor(ctx, clientID)
	if err != nil {
		c.Logger().Errorf("Failed to fetch bonus history client_id:%d error: %v", clientID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, history)
}
