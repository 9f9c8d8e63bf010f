package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/receipts"
)

func (h *Handler) PreviewReceipt(c echo.Context) error {
	preview, err := h.Receipts.Preview(c.Request().Context(), middleware.UserID(c), c.Param("txnId"))
	if err != nil {
		return h.fail(c, err, "Failed to build receipt")
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *Handler) SendReceipt(c echo.Context) error {
	res, err := h.Receipts.Send(c.Request().Context(), middleware.UserID(c), c.Param("txnId"))
	if err != nil {
		return h.fail(c, err, "Failed to send receipt")
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) RecentReceipts(c echo.Context) error {
	entries, err := h.Receipts.Recent(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "Failed to load recent receipts")
	}
	if entries == nil {
		entries = []receipts.RecentEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
