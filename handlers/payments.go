package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/payments"
)

// PaymentProvider picks the payment provider for the caller's country. An explicit
// ?country= or the edge's CF-IPCountry header wins over the IP lookup.
func (h *Handler) PaymentProvider(c echo.Context) error {
	hint := c.QueryParam("country")
	if hint == "" {
		hint = c.Request().Header.Get("CF-IPCountry")
	}
	det := h.Detector.Detect(c.Request().Context(), c.RealIP(), hint)
	info := payments.Describe(det.Country)
	info.Source = string(det.Source)
	return c.JSON(http.StatusOK, info)
}

func (h *Handler) CreatePaymentIntent(c echo.Context) error {
	var req payments.IntentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.StoreID) == "" {
		return errorJSON(c, http.StatusBadRequest, "storeId is required")
	}

	pi, err := h.Intents.Create(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return h.fail(c, err, "Failed to create payment intent")
	}
	return c.JSON(http.StatusOK, pi)
}

// SendPaymentReceipt has Stripe email its receipt for the payment intent in the path.
func (h *Handler) SendPaymentReceipt(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if err := h.Intents.SendReceipt(c.Request().Context(), c.Param("id"), req.Email); err != nil {
		return h.fail(c, err, "Failed to send payment receipt")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Receipt sent"})
}

func (h *Handler) CreateStripeAccount(c echo.Context) error {
	var req struct {
		Country string `json:"country"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if payments.SelectProvider(req.Country) != payments.ProviderStripeConnect {
		return errorJSON(c, http.StatusBadRequest, "Stripe Connect is not available in this country")
	}

	id, err := h.Connect.CreateAccount(c.Request().Context(), middleware.UserID(c), req.Country)
	if err != nil {
		return h.fail(c, err, "Failed to create Stripe account")
	}
	return c.JSON(http.StatusCreated, map[string]string{"accountId": id})
}

func (h *Handler) StripeAccountLink(c echo.Context) error {
	var req struct {
		RefreshURL string `json:"refreshUrl"`
		ReturnURL  string `json:"returnUrl"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshURL == "" || req.ReturnURL == "" {
		return errorJSON(c, http.StatusBadRequest, "refreshUrl and returnUrl are required")
	}

	url, err := h.Connect.AccountLink(c.Request().Context(), middleware.UserID(c), req.RefreshURL, req.ReturnURL)
	if err != nil {
		return h.fail(c, err, "Failed to create onboarding link")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) StripeAccountStatus(c echo.Context) error {
	status, err := h.Connect.Status(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "Failed to load account status")
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) StripeBalance(c echo.Context) error {
	balance, err := h.Connect.Balance(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "Failed to load balance")
	}
	return c.JSON(http.StatusOK, balance)
}

// StripePayout takes the amount in the currency's minor unit.
func (h *Handler) StripePayout(c echo.Context) error {
	var req struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	payout, err := h.Connect.Payout(c.Request().Context(), middleware.UserID(c), req.Amount, req.Currency)
	if err != nil {
		return h.fail(c, err, "Failed to create payout")
	}
	return c.JSON(http.StatusOK, payout)
}

func (h *Handler) PaystackInitialize(c echo.Context) error {
	var req payments.PaystackInitRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	session, err := h.Paystack.Initialize(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Failed to start Paystack payment")
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) PaystackVerify(c echo.Context) error {
	if err := h.Paystack.Verify(c.Request().Context(), c.Param("reference")); err != nil {
		return h.fail(c, err, "Failed to verify Paystack payment")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "verified"})
}
