package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/period"
)

// GetPeriod returns the period of the given type containing date (default today).
// Unknown types fall back to monthly.
func (h *Handler) GetPeriod(c echo.Context) error {
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return h.fail(c, "GetPeriod", err)
	}
	ref := time.Now().UTC()
	if date != nil {
		ref = *date
	}
	return c.JSON(http.StatusOK, period.ForDate(ref, period.ParseType(c.QueryParam("type"))))
}

// GetMonths lists the twelve months of a year (default current year)
func (h *Handler) GetMonths(c echo.Context) error {
	year := time.Now().UTC().Year()
	if raw := c.QueryParam("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			return h.fail(c, "GetMonths", apperr.Validation("invalid year %q", raw))
		}
		year = y
	}
	return c.JSON(http.StatusOK, period.MonthsInYear(year, time.UTC))
}
