package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polygreen-backend/internal/common/middleware"
	"polygreen-backend/internal/features/machine/models"
	"polygreen-backend/internal/features/machine/service"
)

// MachineHandler exposes the user-facing machine listing.
type MachineHandler struct {
	service service.MachineService
}

func NewMachineHandler(service service.MachineService) *MachineHandler {
	return &MachineHandler{service: service}
}

// RegisterRoutes attaches routes to the authenticated user group.
func (h *MachineHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/machines", h.list)
}

type machineInfo struct {
	*models.Machine
	AvailableSpace int64 `json:"available_space"`
}

func (h *MachineHandler) list(c *gin.Context) {
	machines, err := h.service.List(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	items := make([]machineInfo, 0, len(machines))
	for _, m := range machines {
		items = append(items, machineInfo{Machine: m, AvailableSpace: m.AvailableSpace()})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
