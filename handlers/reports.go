package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/models"
)

const defaultReportWindow = 30 * 24 * time.Hour

func (h *Handler) ReportTransactions(c echo.Context) error {
	txns, err := h.Reports.Transactions(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err, "Failed to load transactions")
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return c.JSON(http.StatusOK, txns)
}

func (h *Handler) ReportSummary(c echo.Context) error {
	from, to, ok := reportWindow(c.QueryParam("from"), c.QueryParam("to"))
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "from and to must be dates (YYYY-MM-DD or RFC 3339)")
	}
	summary, err := h.Reports.Summary(c.Request().Context(), middleware.UserID(c), from, to)
	if err != nil {
		return h.fail(c, err, "Failed to build report")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) SaveReport(c echo.Context) error {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	from, to, ok := reportWindow(req.From, req.To)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "from and to must be dates (YYYY-MM-DD or RFC 3339)")
	}

	id, summary, err := h.Reports.Save(c.Request().Context(), middleware.UserID(c), from, to)
	if err != nil {
		return h.fail(c, err, "Failed to save report")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"id": id, "summary": summary})
}

// reportWindow defaults to the last 30 days. A bare date for to covers that whole day.
func reportWindow(fromRaw, toRaw string) (time.Time, time.Time, bool) {
	to := time.Now().UTC()
	if toRaw != "" {
		t, dateOnly, ok := parseDate(toRaw)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}
	from := to.Add(-defaultReportWindow)
	if fromRaw != "" {
		t, _, ok := parseDate(fromRaw)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseDate(s string) (time.Time, bool, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}
