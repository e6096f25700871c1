package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title" binding:"required"`
	Description         string   `json:"description"`
	Color               string   `json:"color"`
	Icon                string   `json:"icon"`
	Unit                string   `json:"unit"`
	ReminderTime        string   `json:"reminder_time"`
	IsGoodHabit         *bool    `json:"is_good_habit"`
	RecordingType       string   `json:"recording_type"`
	GoalInterval        string   `json:"goal_interval"`
	GoalTarget          *float64 `json:"goal_target"`
	CustomIntervalDays  *int     `json:"custom_interval_days"`
	ScheduledDaysOfWeek []int    `json:"scheduled_days_of_week"`
	StartDate           string   `json:"start_date"`
	EndConditionType    string   `json:"end_condition_type"`
	EndConditionValue   string   `json:"end_condition_value"`
}

type updateHabitRequest struct {
	Title               *string  `json:"title"`
	Description         *string  `json:"description"`
	Color               *string  `json:"color"`
	Icon                *string  `json:"icon"`
	Unit                *string  `json:"unit"`
	ReminderTime        *string  `json:"reminder_time"`
	IsGoodHabit         *bool    `json:"is_good_habit"`
	RecordingType       *string  `json:"recording_type"`
	GoalInterval        *string  `json:"goal_interval"`
	GoalTarget          *float64 `json:"goal_target"`
	CustomIntervalDays  *int     `json:"custom_interval_days"`
	ScheduledDaysOfWeek []int    `json:"scheduled_days_of_week"`
	StartDate           *string  `json:"start_date"`
	EndConditionType    *string  `json:"end_condition_type"`
	EndConditionValue   *string  `json:"end_condition_value"`
	Version             int      `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/sync", h.Sync)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var start time.Time
	if req.StartDate != "" {
		parsed, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	input := services.CreateHabitInput{
		ID:                  req.ID,
		UserID:              userID,
		Title:               req.Title,
		Description:         req.Description,
		Color:               req.Color,
		Icon:                req.Icon,
		Unit:                req.Unit,
		ReminderTime:        req.ReminderTime,
		IsGoodHabit:         req.IsGoodHabit,
		RecordingType:       req.RecordingType,
		GoalInterval:        req.GoalInterval,
		GoalTarget:          req.GoalTarget,
		CustomIntervalDays:  req.CustomIntervalDays,
		ScheduledDaysOfWeek: req.ScheduledDaysOfWeek,
		StartDate:           start,
		EndConditionType:    req.EndConditionType,
		EndConditionValue:   req.EndConditionValue,
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	lastSync, ok := querySince(c, "last_sync")
	if !ok {
		return
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var start *time.Time
	if req.StartDate != nil {
		parsed, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return
		}
		start = &parsed
	}

	input := services.UpdateHabitInput{
		ID:                  c.Param("id"),
		UserID:              userID,
		Title:               req.Title,
		Description:         req.Description,
		Color:               req.Color,
		Icon:                req.Icon,
		Unit:                req.Unit,
		ReminderTime:        req.ReminderTime,
		IsGoodHabit:         req.IsGoodHabit,
		RecordingType:       req.RecordingType,
		GoalInterval:        req.GoalInterval,
		GoalTarget:          req.GoalTarget,
		CustomIntervalDays:  req.CustomIntervalDays,
		ScheduledDaysOfWeek: req.ScheduledDaysOfWeek,
		StartDate:           start,
		EndConditionType:    req.EndConditionType,
		EndConditionValue:   req.EndConditionValue,
		Version:             req.Version,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Restore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
