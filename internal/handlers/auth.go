package handlers

import (
	"context"
	"errors"
	"net/http"

	"regenx/internal/models"
	"regenx/internal/service"

	"github.com/gin-gonic/gin"
)

type signUpInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return false
	}
	return true
}

// @Summary      Create an account
// @Description  Registers a user and starts a session (cookie).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      signUpInput  true  "account"
// @Success      201    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input signUpInput
	if ok := h.bindJSONOrBadRequest(c, &input, "Invalid Data"); !ok {
		return
	}

	ctx := c.Request.Context()
	u, err := h.services.SignUp(ctx, service.SignUpInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		case errors.Is(err, service.ErrEmailTaken):
			h.log.Infow("auth_sign_up_conflict", "email", input.Email)
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		default:
			h.log.Errorw("auth_sign_up_failed", "email", input.Email, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	if !h.startSession(ctx, c, u.Identity()) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Success"})
}

// @Summary      Log in
// @Description  Verifies credentials and starts a session (cookie).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      loginInput  true  "credentials"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginInput
	if ok := h.bindJSONOrBadRequest(c, &input, "Invalid Data"); !ok {
		return
	}

	ctx := c.Request.Context()
	u, err := h.services.Login(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Infow("auth_sign_in_failed", "email", input.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Errorw("auth_sign_in_error", "email", input.Email, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if !h.startSession(ctx, c, u.Identity()) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login success"})
}

// startSession replaces any previous session with a fresh one for id.
func (h *Handler) startSession(ctx context.Context, c *gin.Context, id models.Identity) bool {
	if old, err := c.Cookie(h.opts.CookieName); err == nil && old != "" {
		if err := h.sessions.Revoke(ctx, old); err != nil {
			h.log.Warnw("session_revoke_failed", "err", err)
		}
	}

	value, err := h.sessions.Issue(ctx, id)
	if err != nil {
		h.log.Errorw("session_issue_failed", "user_id", id.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return false
	}
	h.setSessionCookie(c, value)
	return true
}

func (h *Handler) setSessionCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, int(h.sessions.TTL().Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.CookieSecure, true)
}
