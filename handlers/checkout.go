package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/middleware"
)

func (h *Handler) QuoteCheckout(c echo.Context) error {
	quote, err := h.Checkout.Quote(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "Failed to price cart")
	}
	return c.JSON(http.StatusOK, quote)
}

// SubmitCheckout sends one order request per store. When a send fails part way the error
// is returned together with the orders already sent.
func (h *Handler) SubmitCheckout(c echo.Context) error {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	res, err := h.Checkout.Submit(c.Request().Context(), middleware.UserID(c), req.Note)
	if err != nil {
		if res.Sent > 0 {
			h.log().WithError(err).WithField("submission", res.SubmissionID).Error("checkout stopped part way")
			return c.JSON(http.StatusBadGateway, map[string]interface{}{
				"error":  "Some order requests could not be sent",
				"result": res,
			})
		}
		return h.fail(c, err, "Failed to send order requests")
	}
	return c.JSON(http.StatusCreated, res)
}
