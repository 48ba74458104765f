package server

import (
	"net/http"

	"bakery/internal/handler"
	"bakery/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// /api 以下と運用系のルートを登録
func RegisterRoutes(e *echo.Echo, jwtSecret string, h Handlers, metricsHandler http.Handler) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	api := e.Group("/api")
	h.Product.RegisterRoutes(api)

	// ここから下は注文者が必要
	authed := api.Group("", middleware.ActorJWT(jwtSecret))
	h.Cart.RegisterRoutes(authed)
	h.Order.RegisterRoutes(authed)
}
