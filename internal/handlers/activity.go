package handlers

import (
	"errors"
	"net/http"

	"regenx/internal/service"

	"github.com/gin-gonic/gin"
)

// saveSessionInput uses pointers so that an explicit 0 passes "required".
type saveSessionInput struct {
	Steps  *int64   `json:"steps" binding:"required"`
	Energy *float64 `json:"energy" binding:"required"`
}

// @Summary      Current user
// @Description  Returns the logged-in user with lifetime totals and history, or null without a session.
// @Tags         activity
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      500  {object}  map[string]string
// @Router       /api/user [get]
func (h *Handler) getUser(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}

	u, err := h.services.GetUser(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		h.log.Errorw("user_fetch_failed", "user_id", id.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user data"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary      Save a workout session
// @Description  Adds steps and energy to the lifetime totals and merges them into today's history record.
// @Tags         activity
// @Accept       json
// @Produce      json
// @Param        input  body      saveSessionInput  true  "session totals"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/save-session [post]
func (h *Handler) saveSession(c *gin.Context) {
	id, _ := currentIdentity(c)

	var input saveSessionInput
	if ok := h.bindJSONOrBadRequest(c, &input, "Invalid Data"); !ok {
		return
	}
	inc := service.Increment{Steps: *input.Steps, Energy: *input.Energy}
	if inc.Steps < 0 || inc.Energy < 0 {
		h.log.Warnw("save_session_negative_increment", "user_id", id.UserID, "steps", inc.Steps, "energy", inc.Energy)
	}

	u, err := h.services.SaveSession(c.Request.Context(), id.UserID, inc)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if errors.Is(err, service.ErrCounterOverflow) {
			h.log.Warnw("save_session_overflow", "user_id", id.UserID, "steps", inc.Steps)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
			return
		}
		h.log.Errorw("save_session_failed", "user_id", id.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save data"})
		return
	}

	h.metrics.sessionsSaved.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":        "Session Saved and Merged",
		"lifetimeSteps":  u.LifetimeSteps,
		"lifetimeEnergy": u.LifetimeEnergy,
	})
}
