package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/middleware"
	"polygreen-backend/internal/features/admin/service"
	machinemodels "polygreen-backend/internal/features/machine/models"
	machineservice "polygreen-backend/internal/features/machine/service"
)

// AdminHandler exposes the dashboard, listings, machine management and PDF
// exports behind the admin session token.
type AdminHandler struct {
	admin    service.AdminService
	machines machineservice.MachineService
}

func NewAdminHandler(admin service.AdminService, machines machineservice.MachineService) *AdminHandler {
	return &AdminHandler{admin: admin, machines: machines}
}

// RegisterRoutes mounts login publicly and everything else behind the
// session check.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	router.POST("/admin/login", h.login)

	protected := router.Group("/admin", requireAdmin)
	protected.POST("/logout", h.logout)
	protected.GET("/dashboard", h.dashboard)

	protected.GET("/users", h.listUsers)
	protected.GET("/users/:id", h.userDetail)
	protected.POST("/users/report", h.usersReport)
	protected.POST("/users/:id/report", h.userReport)

	protected.GET("/machines", h.listMachines)
	protected.POST("/machines", h.addMachine)
	protected.GET("/machines/:id", h.machineDetail)
	protected.POST("/machines/:id/empty", h.emptyMachine)
	protected.POST("/machines/report", h.machinesReport)
	protected.POST("/machines/:id/report", h.machineReport)

	protected.GET("/transactions", h.listTransactions)
	protected.POST("/transactions/report", h.transactionsReport)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid login payload"))
		return
	}

	sessionToken, err := h.admin.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_token": sessionToken})
}

func (h *AdminHandler) logout(c *gin.Context) {
	sessionToken := c.GetHeader(middleware.AdminTokenHeader)
	if err := h.admin.Logout(c.Request.Context(), sessionToken); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	dashboard, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

func (h *AdminHandler) userDetail(c *gin.Context) {
	detail, err := h.admin.UserDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *AdminHandler) listMachines(c *gin.Context) {
	machines, err := h.admin.ListMachines(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": machines})
}

type addMachineRequest struct {
	MachineID   string   `json:"machine_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	City        string   `json:"city" binding:"required"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	MaxCapacity int64    `json:"max_capacity" binding:"required,gt=0"`
}

func (h *AdminHandler) addMachine(c *gin.Context) {
	var req addMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid machine payload"))
		return
	}

	machine := &machinemodels.Machine{
		ID:          req.MachineID,
		Name:        req.Name,
		City:        req.City,
		Lat:         req.Lat,
		Lng:         req.Lng,
		MaxCapacity: req.MaxCapacity,
	}
	if err := h.machines.Add(c.Request.Context(), machine); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"machine": machine})
}

func (h *AdminHandler) machineDetail(c *gin.Context) {
	detail, err := h.admin.MachineDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *AdminHandler) emptyMachine(c *gin.Context) {
	report, err := h.machines.Empty(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) listTransactions(c *gin.Context) {
	transactions, err := h.admin.ListTransactions(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": transactions})
}

func (h *AdminHandler) usersReport(c *gin.Context) {
	h.sendPDF(c, "users_report.pdf", func() ([]byte, error) {
		return h.admin.UsersReport(c.Request.Context())
	})
}

func (h *AdminHandler) userReport(c *gin.Context) {
	h.sendPDF(c, "user_report.pdf", func() ([]byte, error) {
		return h.admin.UserReport(c.Request.Context(), c.Param("id"))
	})
}

func (h *AdminHandler) machinesReport(c *gin.Context) {
	h.sendPDF(c, "machines_report.pdf", func() ([]byte, error) {
		return h.admin.MachinesReport(c.Request.Context())
	})
}

func (h *AdminHandler) machineReport(c *gin.Context) {
	h.sendPDF(c, "machine_report.pdf", func() ([]byte, error) {
		return h.admin.MachineReport(c.Request.Context(), c.Param("id"))
	})
}

func (h *AdminHandler) transactionsReport(c *gin.Context) {
	h.sendPDF(c, "transactions_report.pdf", func() ([]byte, error) {
		return h.admin.TransactionsReport(c.Request.Context())
	})
}

func (h *AdminHandler) sendPDF(c *gin.Context, filename string, build func() ([]byte, error)) {
	pdf, err := build()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
