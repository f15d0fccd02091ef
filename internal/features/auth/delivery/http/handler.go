package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/middleware"
	"polygreen-backend/internal/features/auth/service"
)

// AuthHandler exposes the OTP password-recovery endpoints.
type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterPublicRoutes attaches the recovery flow, reachable without a token.
func (h *AuthHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/auth/check-user", h.checkUser)
	router.POST("/auth/send-otp", h.sendOTP)
	router.POST("/auth/verify-otp", h.verifyOTP)
	router.POST("/auth/set-new-password", h.setNewPassword)
}

// RegisterProtectedRoutes attaches endpoints that require a user token.
func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/auth/reset-password", h.changePassword)
}

type mobileRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

func (h *AuthHandler) checkUser(c *gin.Context) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid payload"))
		return
	}

	exists, err := h.service.CheckUser(c.Request.Context(), req.Mobile)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *AuthHandler) sendOTP(c *gin.Context) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid payload"))
		return
	}

	if err := h.service.SendOTP(c.Request.Context(), req.Mobile); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

type verifyRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

func (h *AuthHandler) verifyOTP(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid payload"))
		return
	}

	if err := h.service.VerifyOTP(c.Request.Context(), req.Mobile, req.OTP); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code verified"})
}

type resetRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) setNewPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid payload"))
		return
	}

	if err := h.service.SetNewPassword(c.Request.Context(), req.Mobile, req.Password); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid payload"))
		return
	}

	userID := middleware.GetUserID(c)
	if userID == "" {
		middleware.SendError(c, errors.NewUnauthorizedError("missing user identity"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
