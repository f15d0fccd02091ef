// Package http assembles the gin engine from the feature handlers.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"polygreen-backend/internal/common/config"
	"polygreen-backend/internal/common/middleware"
	"polygreen-backend/internal/common/token"
	adminhttp "polygreen-backend/internal/features/admin/delivery/http"
	authhttp "polygreen-backend/internal/features/auth/delivery/http"
	deposithttp "polygreen-backend/internal/features/deposit/delivery/http"
	machinehttp "polygreen-backend/internal/features/machine/delivery/http"
	userhttp "polygreen-backend/internal/features/user/delivery/http"
	platformredis "polygreen-backend/internal/platform/redis"
)

const serviceName = "polygreen-backend"

// Handlers groups the per-feature HTTP handlers the router mounts.
type Handlers struct {
	User    *userhttp.UserHandler
	Auth    *authhttp.AuthHandler
	Machine *machinehttp.MachineHandler
	Deposit *deposithttp.DepositHandler
	Admin   *adminhttp.AdminHandler
}

// NewRouter builds the engine: common middleware, CORS, health probes and
// the public / user / admin route groups.
func NewRouter(
	cfg *config.Config,
	tokens *token.Manager,
	sessions middleware.SessionValidator,
	pg *pgxpool.Pool,
	rdb *platformredis.Client,
	h Handlers,
) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.AdminTokenHeader}
	router.Use(cors.New(corsConfig))

	registerProbes(router, pg, rdb)

	api := router.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "message": "PolyGreen recycling rewards API"})
	})

	// Machine-facing and account endpoints, no token required.
	h.User.RegisterPublicRoutes(api)
	h.Auth.RegisterPublicRoutes(api)
	h.Deposit.RegisterRoutes(api)

	protected := api.Group("", middleware.RequireUser(tokens))
	h.User.RegisterProtectedRoutes(protected)
	h.Auth.RegisterProtectedRoutes(protected)
	h.Machine.RegisterRoutes(protected)

	h.Admin.RegisterRoutes(api, middleware.RequireAdmin(sessions))

	return router
}

func registerProbes(router *gin.Engine, pg *pgxpool.Pool, rdb *platformredis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pg.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "postgres unavailable",
			})
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "redis unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}
