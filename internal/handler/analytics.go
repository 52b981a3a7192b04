package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dahnny/analytics-api/internal/analytics"
	"github.com/dahnny/analytics-api/internal/middleware"
	"github.com/dahnny/analytics-api/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	minYear     = 2000
	maxYear     = 2050
	defaultYear = 2001
)

// AnalyticsHandler exposes the aggregation engine over HTTP. It only parses
// parameters, enforces ownership through the authenticated user and maps
// engine results to responses; all aggregation policy lives in the engine.
type AnalyticsHandler struct {
	Service *analytics.Service
}

func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

// dateParam parses an optional ISO date query parameter. A malformed value
// writes the fixed 400 response and reports failure.
func dateParam(c *gin.Context, name string) (*time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	t, err := util.ParseDate(s)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid date format. Use ISO format (YYYY-MM-DD).")
		return nil, false
	}
	return &t, true
}

// Summary returns the owner's income, expense and net-profit totals for an
// optional date range. A range with no matching rows at all is reported as
// not found; rows that merely sum to zero are not.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	start, ok := dateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := dateParam(c, "end_date")
	if !ok {
		return
	}

	summary, err := h.Service.FinancialSummary(user.ID, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !summary.HasData() {
		util.Error(c, http.StatusNotFound, "No financial data found for the specified period.")
		return
	}

	c.JSON(http.StatusOK, summary.Chart())
}

// MonthlySummary returns twelve month buckets for the given year.
func (h *AnalyticsHandler) MonthlySummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	year := defaultYear
	if s := c.Query("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < minYear || v > maxYear {
			util.Error(c, http.StatusBadRequest, "Year must be between 2000 and 2050.")
			return
		}
		year = v
	}

	chart, err := h.Service.MonthlySummary(user.ID, year)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, chart)
}

// WeeklySummary returns 7-day buckets starting at the mandatory start date.
func (h *AnalyticsHandler) WeeklySummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if c.Query("start_date") == "" {
		util.Error(c, http.StatusBadRequest, "Start date is required.")
		return
	}
	start, ok := dateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := dateParam(c, "end_date")
	if !ok {
		return
	}

	chart, err := h.Service.WeeklySummary(user.ID, *start, end)
	if err != nil {
		if errors.Is(err, analytics.ErrStartAfterEnd) {
			util.Error(c, http.StatusBadRequest, "Start date cannot be later than end date.")
			return
		}
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, chart)
}

// TopSelling returns the owner's best-selling items ranked by quantity sold.
func (h *AnalyticsHandler) TopSelling(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	start, ok := dateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := dateParam(c, "end_date")
	if !ok {
		return
	}

	limit := analytics.DefaultTopItemsLimit
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > analytics.MaxTopItemsLimit {
			util.Error(c, http.StatusBadRequest, "Limit must be between 1 and 50.")
			return
		}
		limit = v
	}

	item := strings.TrimSpace(c.Query("item"))
	if len(item) > 100 {
		util.Error(c, http.StatusBadRequest, "Item filter must be at most 100 characters.")
		return
	}

	chart, err := h.Service.TopSellingItems(user.ID, start, end, limit, item)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, chart)
}

// ExpenseBreakdown returns per-category expense totals.
func (h *AnalyticsHandler) ExpenseBreakdown(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	start, ok := dateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := dateParam(c, "end_date")
	if !ok {
		return
	}

	chart, err := h.Service.ExpenseBreakdown(user.ID, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, chart)
}
