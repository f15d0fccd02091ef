package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/middleware"
	"polygreen-backend/internal/features/user/service"
)

// UserHandler exposes registration, login and profile endpoints.
type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterPublicRoutes attaches the unauthenticated account endpoints.
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	router.POST("/user/fetch", h.fetchByMobile)
}

// RegisterProtectedRoutes attaches endpoints that require a user token.
func (h *UserHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/users/me", h.profile)
	router.GET("/points/summary", h.pointsSummary)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid registration payload"))
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.Name, req.Mobile, req.Password)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid login payload"))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Mobile, req.Password)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type fetchRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

// fetchByMobile lets a vending machine resolve the depositing user before it
// accepts bottles.
func (h *UserHandler) fetchByMobile(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid fetch payload"))
		return
	}

	user, err := h.service.FetchByMobile(c.Request.Context(), req.Mobile)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) profile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		middleware.SendError(c, errors.NewUnauthorizedError("missing user identity"))
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) pointsSummary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		middleware.SendError(c, errors.NewUnauthorizedError("missing user identity"))
		return
	}

	summary, err := h.service.PointsSummary(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
