package handler

import (
	"net/http"
	"strings"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// pickup_dateは受け取るが検証も保存もしない
type OrderCreateRequest struct {
	PickupDate string `json:"pickup_date"`
	PickupTime string `json:"pickup_time"`
}

type OrderCreateResponse struct {
	Message          string `json:"message"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/order", h.create)
	g.GET("/order-history", h.history)
}

func (h *OrderHandler) create(c echo.Context) error {
	actorID, ok := getActorIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not logged in"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.PlaceOrderInput{}
	if t := strings.TrimSpace(req.PickupTime); t != "" {
		in.PickupTime = &t
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), actorID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, OrderCreateResponse{
		Message:          "Order placed successfully!",
		ConfirmationCode: out.ConfirmationCode,
	})
}

func (h *OrderHandler) history(c echo.Context) error {
	actorID, ok := getActorIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not logged in"})
	}

	out, err := h.uc.GetOrderHistory(c.Request().Context(), actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
