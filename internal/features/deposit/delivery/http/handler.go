package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/middleware"
	"polygreen-backend/internal/features/deposit/models"
	"polygreen-backend/internal/features/deposit/service"
)

// DepositHandler exposes the machine-facing bottle-insert endpoint.
type DepositHandler struct {
	service service.DepositService
}

func NewDepositHandler(service service.DepositService) *DepositHandler {
	return &DepositHandler{service: service}
}

func (h *DepositHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/machine/insert", h.insert)
}

type insertRequest struct {
	MachineID       string `json:"machine_id" binding:"required"`
	UserID          string `json:"user_id" binding:"required"`
	BottleCount     *int64 `json:"bottle_count"`
	PointsPerBottle *int64 `json:"points_per_bottle" binding:"omitempty,gte=0"`
	DepositKey      string `json:"deposit_key"`
}

type insertResponse struct {
	Message string `json:"message"`
	models.DepositResult
}

func (h *DepositHandler) insert(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid deposit payload"))
		return
	}

	in := models.DepositInput{
		MachineID:       req.MachineID,
		UserID:          req.UserID,
		BottleCount:     1,
		PointsPerBottle: -1,
		DepositKey:      req.DepositKey,
	}
	if req.BottleCount != nil {
		in.BottleCount = *req.BottleCount
	}
	if req.PointsPerBottle != nil {
		in.PointsPerBottle = *req.PointsPerBottle
	}

	result, err := h.service.Deposit(c.Request.Context(), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, insertResponse{
		Message:       "Points and bottles added successfully",
		DepositResult: *result,
	})
}
