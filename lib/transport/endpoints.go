package transport

import (
	"github.com/avocadohq/avocado.go/controllers"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/labstack/echo/v4"
)

func RegisterEndpoints(svc *service.AvocadoService, e *echo.Echo, adminMw echo.MiddlewareFunc, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.GET("/health", controllers.NewHealthController(svc).Health)

	transactionCtrl := controllers.NewTransactionController(svc)
	clientCtrl := controllers.NewClientController(svc)
	catalogCtrl := controllers.NewCatalogController(svc)

	// POS sync surface
	// the POS webhook layer sends both verbs depending on its version
	sync := e.Group("/sync", logMw)
	sync.POST("/transactions", transactionCtrl.UpsertTransaction)
	sync.PUT("/transactions", transactionCtrl.UpsertTransaction)
	sync.PUT("/transactions/:transaction_id/products", transactionCtrl.ReplaceProducts)
	sync.POST("/clients", clientCtrl.UpsertClient)
	sync.PUT("/clients", clientCtrl.UpsertClient)
	sync.POST("/products", catalogCtrl.UpsertProduct)
	sync.PUT("/products", catalogCtrl.UpsertProduct)
	sync.POST("/spots", catalogCtrl.UpsertSpot)
	sync.PUT("/spots", catalogCtrl.UpsertSpot)

	// read surface for the web and bot layers
	e.GET("/transactions/:transaction_id", transactionCtrl.GetTransaction, logMw)
	e.GET("/clients/:client_id", clientCtrl.GetClient, logMw)
	e.GET("/clients/:client_id/balance", clientCtrl.Balance, logMw)
	e.GET("/clients/:client_id/bonus-history", clientCtrl.BonusHistory, logMw)
	e.GET("/products", catalogCtrl.ListProducts, logMw)
	e.GET("/spots", catalogCtrl.ListSpots, logMw)

	// control surface, admin token + strict rate limit
	settingsCtrl := controllers.NewSettingsController(svc)
	bonusAdminCtrl := controllers.NewBonusAdminController(svc)
	discountAdminCtrl := controllers.NewDiscountAdminController(svc)

	admin := e.Group("/admin", adminMw, strictRateLimitMiddleware, logMw)
	admin.GET("/settings/:key", settingsCtrl.GetSetting)
	admin.PUT("/settings/:key", settingsCtrl.SetSetting)
	admin.PUT("/bonus-processing", bonusAdminCtrl.ManageProcessing)
	admin.POST("/bonus-recalculation", bonusAdminCtrl.Recalculate)
	admin.PUT("/discount-processing", discountAdminCtrl.ManageProcessing)
	admin.POST("/discount-recalculation", discountAdminCtrl.Recalculate)
}
