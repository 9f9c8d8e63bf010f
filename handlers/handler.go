// Package handlers exposes the marketplace services over echo.
package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/cart"
	"github.com/localmart/localmart-backend-go/checkout"
	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/helpcenter"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	"github.com/localmart/localmart-backend-go/payments"
	"github.com/localmart/localmart-backend-go/receipts"
	"github.com/localmart/localmart-backend-go/reports"
	"github.com/sirupsen/logrus"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Store     docstore.Store
	JWTSecret string

	Carts    *cart.Store
	Messages *messaging.Service
	Unread   *messaging.Tracker
	Checkout *checkout.Service

	Detector *payments.CountryDetector
	Connect  *payments.ConnectService
	Intents  *payments.Intents
	Paystack payments.Paystack

	Receipts *receipts.Service
	Reports  *reports.Service
	Help     *helpcenter.Center
	Contact  *helpcenter.ContactService

	Log logrus.FieldLogger
}

func (h *Handler) log() logrus.FieldLogger {
	if h.Log == nil {
		return logger.Discard()
	}
	return logger.Component(h.Log, "http")
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, messaging.ErrNotFound),
		errors.Is(err, receipts.ErrTransactionNotFound),
		errors.Is(err, helpcenter.ErrArticleNotFound),
		errors.Is(err, payments.ErrUserNotFound),
		errors.Is(err, payments.ErrNoAccount):
		return http.StatusNotFound
	case errors.Is(err, messaging.ErrForbidden),
		errors.Is(err, receipts.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, payments.ErrAccountDeleted):
		return http.StatusGone
	case errors.Is(err, checkout.ErrDeliveryLocationRequired),
		errors.Is(err, receipts.ErrMissingCustomer),
		errors.Is(err, checkout.ErrUnknownSeller):
		return http.StatusUnprocessableEntity
	case errors.Is(err, messaging.ErrInvalidMessage),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, payments.ErrInvalidAmount),
		errors.Is(err, payments.ErrInvalidReceipt),
		errors.Is(err, payments.ErrInvalidPayout),
		errors.Is(err, helpcenter.ErrMissingFields),
		errors.Is(err, helpcenter.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, payments.ErrPaystackUnavailable),
		errors.Is(err, payments.ErrFunctionsDisabled):
		return http.StatusNotImplemented
	}
	var apiErr *payments.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail answers with the mapped status. Server errors are logged and reported generically.
func (h *Handler) fail(c echo.Context, err error, msg string) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.log().WithError(err).WithField("path", c.Path()).Error(msg)
		return errorJSON(c, status, msg)
	}
	return errorJSON(c, status, err.Error())
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
