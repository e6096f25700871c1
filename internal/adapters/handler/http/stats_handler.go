package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type StatsHandler struct {
	svc   *services.StatsService
	clock func() time.Time
}

func NewStatsHandler(svc *services.StatsService, clock func() time.Time) *StatsHandler {
	if clock == nil {
		clock = time.Now
	}
	return &StatsHandler{svc: svc, clock: clock}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/weekly", h.GetWeeklyStats)

	habit := r.Group("/habits/:id")
	{
		habit.GET("/summary", h.GetSummary)
		habit.GET("/statistics", h.GetStatistics)
		habit.GET("/calendar", h.GetCalendar)
	}
}

func (h *StatsHandler) GetWeeklyStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	endDate, ok := queryDate(c, "end_date", h.clock())
	if !ok {
		return
	}
	startDate, ok := queryDate(c, "start_date", endDate.AddDate(0, 0, -6))
	if !ok {
		return
	}

	if startDate.After(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return
	}

	input := domain.StatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	stats, err := h.svc.GetWeeklyStats(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetStatistics returns the day-by-day timeline; through defaults to today.
func (h *StatsHandler) GetStatistics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	through, ok := queryDate(c, "through", time.Time{})
	if !ok {
		return
	}

	stats, err := h.svc.GetDayStatistics(c.Request.Context(), c.Param("id"), userID, through)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetCalendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	now := h.clock()
	year, month := now.Year(), int(now.Month())

	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		year = v
	}
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be a number"})
			return
		}
		month = v
	}

	days, err := h.svc.GetCalendar(c.Request.Context(), c.Param("id"), userID, year, time.Month(month))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": month,
		"days":  days,
	})
}
