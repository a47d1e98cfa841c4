package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"regenx/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      Activity history
// @Description  Day records of the logged-in user, oldest first. Accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; values without an offset are read in the tracker time zone. Bounds are inclusive calendar days.
// @Tags         activity
// @Produce      json
// @Param        from  query     string  false  "Start of range"  example(2025-08-01)
// @Param        to    query     string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Success      200   {object}  map[string]interface{}  "count, history"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	id, _ := currentIdentity(c)
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs, h.opts.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs, h.opts.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	records, err := h.services.History(c.Request.Context(), id.UserID, service.HistoryFilter{From: from, To: to})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTimeRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		default:
			h.log.Errorw("history_list_failed", "user_id", id.UserID, "err", err, "from", from, "to", to)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"history": records,
	})
}

// parseQueryTime reads values without an offset as wall time in loc.
func parseQueryTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
