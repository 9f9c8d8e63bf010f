package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/cart"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/models"
)

type cartResponse struct {
	Items  []models.CartItem  `json:"items"`
	Count  int                `json:"count"`
	Totals map[string]float64 `json:"totals"`
}

func newCartResponse(items []models.CartItem) cartResponse {
	if items == nil {
		items = []models.CartItem{}
	}
	return cartResponse{Items: items, Count: cart.Count(items), Totals: cart.Total(items)}
}

func (h *Handler) GetCart(c echo.Context) error {
	items, err := h.Carts.Load(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "Failed to load cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

func (h *Handler) AddToCart(c echo.Context) error {
	var item models.CartItem
	if err := c.Bind(&item); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(item.ItemID) == "" || strings.TrimSpace(item.StoreID) == "" {
		return errorJSON(c, http.StatusBadRequest, "itemId and storeId are required")
	}
	if item.DeliveryType != models.DeliveryTypeDelivery {
		item.DeliveryType = models.DeliveryTypeCollection
	}

	items, err := h.Carts.Add(c.Request().Context(), middleware.UserID(c), item)
	if err != nil {
		return h.fail(c, err, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

// ReplaceCart overwrites the whole cart, as a client restoring its saved cart does.
func (h *Handler) ReplaceCart(c echo.Context) error {
	var req struct {
		Items []models.CartItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	for i := range req.Items {
		if req.Items[i].DeliveryType != models.DeliveryTypeDelivery {
			req.Items[i].DeliveryType = models.DeliveryTypeCollection
		}
	}

	items, err := h.Carts.Replace(c.Request().Context(), middleware.UserID(c), req.Items)
	if err != nil {
		return h.fail(c, err, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

func (h *Handler) UpdateCartQuantity(c echo.Context) error {
	var req struct {
		ItemID   string `json:"itemId"`
		StoreID  string `json:"storeId"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	items, err := h.Carts.UpdateQuantity(c.Request().Context(), middleware.UserID(c), req.ItemID, req.StoreID, req.Quantity)
	if err != nil {
		return h.fail(c, err, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	items, err := h.Carts.Remove(c.Request().Context(), middleware.UserID(c), c.Param("itemId"), c.Param("storeId"))
	if err != nil {
		return h.fail(c, err, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

func (h *Handler) ClearCart(c echo.Context) error {
	if err := h.Carts.Clear(c.Request().Context(), middleware.UserID(c)); err != nil {
		return h.fail(c, err, "Failed to clear cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(nil))
}
