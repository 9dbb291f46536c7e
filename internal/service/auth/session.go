// Package auth exposes the session lifecycle: sign in with an upstream
// token, switch language, sign out.
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/models/records"
	"viksitkanpur/internal/session"
	"viksitkanpur/internal/utils"
)

// Login creates a dashboard session
// @Summary      Login
// @Description  Exchanges the bearer token issued by the complaint backend for a dashboard session JWT. The token is checked against the backend; only an explicit rejection fails the login.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body dto.LoginRequest true "Upstream token and profile"
// @Success      200 {object} dto.SuccessResponse{data=dto.LoginResponse}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Upstream token rejected"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /auth/session [post]
func Login(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
				"Bad Request", "Invalid request body", err.Error()))
			return
		}

		lang := locale.Lang(req.Language)
		if lang == "" {
			lang = cfg.Settings.DefaultLanguage
			if l, ok := locale.Match(c.GetHeader("Accept-Language")); ok {
				lang = l
			}
		}

		ip, ua := utils.ClientInfo(c)
		sess, token, err := cfg.Sessions.Login(c.Request.Context(), session.LoginInput{
			Token:     req.Token,
			UserID:    req.UserID,
			Name:      req.Name,
			Role:      records.Role(req.Role),
			Language:  lang,
			IPAddress: ip,
			UserAgent: ua,
		})
		switch {
		case errors.Is(err, session.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Upstream token rejected"))
			return
		case err != nil:
			cfg.Logger.Error("Failed to create session", err, map[string]interface{}{"user_id": req.UserID})
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to create session", err.Error()))
			return
		}

		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, dto.LoginResponse{
			Token:     token,
			ExpiresAt: sess.CreatedAt.Add(cfg.Sessions.TTL()),
			Session:   dto.NewSessionView(sess),
		}, sess.Translator().T("messages.signed_in")))
	}
}

// Logout ends the current session
// @Summary      Logout
// @Description  Deletes the session and stops its auto-refresh.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SuccessResponse
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /auth/session [delete]
func Logout(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		ip, ua := utils.ClientInfo(c)

		if err := cfg.Sessions.Logout(c.Request.Context(), sess, ip, ua); err != nil {
			cfg.Logger.Error("Failed to end session", err, map[string]interface{}{"session_id": sess.ID})
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to end session", err.Error()))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, nil, sess.Translator().T("messages.signed_out")))
	}
}

// SetLanguage switches the language of the current session
// @Summary      Switch language
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.LanguageRequest true "New language"
// @Success      200 {object} dto.SuccessResponse{data=dto.SessionView}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /auth/session/language [put]
func SetLanguage(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LanguageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
				"Bad Request", "Invalid request body", err.Error()))
			return
		}

		sess, _ := middleware.CurrentSession(c)
		updated, err := cfg.Sessions.SetLanguage(c.Request.Context(), sess, locale.Lang(req.Language))
		if err != nil {
			cfg.Logger.Error("Failed to switch language", err, map[string]interface{}{"session_id": sess.ID})
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to switch language", err.Error()))
			return
		}

		if ctrl, ok := cfg.Refresh.Get(updated.ID); ok {
			ctrl.SetSession(updated)
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, dto.NewSessionView(updated),
			updated.Translator().T("messages.language_changed")))
	}
}

// Events lists the latest sign-in and sign-out events of the caller
// @Summary      Session audit trail
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Maximum number of events (1-100)"
// @Success      200 {object} dto.SuccessResponse{data=[]entities.SessionAuditLog}
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      501 {object} dto.ErrorResponse "Audit log not configured"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /auth/session/events [get]
func Events(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.SqlServer == nil {
			c.JSON(http.StatusNotImplemented, dto.NewErrorResponse(c, http.StatusNotImplemented,
				"Not Implemented", "Session audit log is not configured", nil))
			return
		}

		var q struct {
			Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
				"Bad Request", "Invalid query parameters", err.Error()))
			return
		}
		if q.Limit == 0 {
			q.Limit = 20
		}

		sess, _ := middleware.CurrentSession(c)
		events, err := cfg.SqlServer.RecentSessionEvents(c.Request.Context(), sess.UserID, q.Limit)
		if err != nil {
			cfg.Logger.Error("Failed to read session audit log", err, map[string]interface{}{"user_id": sess.UserID})
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to read session audit log", err.Error()))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, events, ""))
	}
}
