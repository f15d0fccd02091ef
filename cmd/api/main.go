package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"polygreen-backend/internal/common/config"
	"polygreen-backend/internal/common/logger"
	"polygreen-backend/internal/common/token"
	adminhttp "polygreen-backend/internal/features/admin/delivery/http"
	adminredis "polygreen-backend/internal/features/admin/repository/redis"
	adminservice "polygreen-backend/internal/features/admin/service"
	authhttp "polygreen-backend/internal/features/auth/delivery/http"
	authpg "polygreen-backend/internal/features/auth/repository/postgres"
	authredis "polygreen-backend/internal/features/auth/repository/redis"
	authservice "polygreen-backend/internal/features/auth/service"
	deposithttp "polygreen-backend/internal/features/deposit/delivery/http"
	depositpg "polygreen-backend/internal/features/deposit/repository/postgres"
	depositservice "polygreen-backend/internal/features/deposit/service"
	machinehttp "polygreen-backend/internal/features/machine/delivery/http"
	machinepg "polygreen-backend/internal/features/machine/repository/postgres"
	machineservice "polygreen-backend/internal/features/machine/service"
	userhttp "polygreen-backend/internal/features/user/delivery/http"
	userpg "polygreen-backend/internal/features/user/repository/postgres"
	userservice "polygreen-backend/internal/features/user/service"
	apphttp "polygreen-backend/internal/http"
	"polygreen-backend/internal/platform/postgres"
	platformredis "polygreen-backend/internal/platform/redis"
	"polygreen-backend/internal/platform/sms"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("polygreen-backend", false)
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init("polygreen-backend", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("starting polygreen backend")

	pg, err := postgres.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pg.Close()

	rdb, err := platformredis.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	var sender sms.Sender = sms.NoopSender{}
	if cfg.Vonage.APIKey != "" && cfg.Vonage.APISecret != "" {
		sender = sms.NewVonageSender(cfg.Vonage.APIKey, cfg.Vonage.APISecret, cfg.Vonage.From)
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	userRepo := userpg.NewPostgresRepository(pg)
	machineRepo := machinepg.NewPostgresRepository(pg)
	depositRepo := depositpg.NewPostgresRepository(pg)
	otpRepo := authpg.NewOTPRepository(pg)
	otpLimiter := authredis.NewSendLimiter(rdb, cfg.OTP.SendRateLimit)
	sessions := adminredis.NewSessionStore(rdb, cfg.Admin.SessionTTL)

	userSvc := userservice.NewUserService(userRepo, depositRepo, tokens)
	machineSvc := machineservice.NewMachineService(machineRepo)
	depositSvc := depositservice.NewDepositService(depositRepo, cfg.PointsPerBottle)
	authSvc := authservice.NewAuthService(otpRepo, otpLimiter, userRepo, sender, cfg.OTP.TTL)
	adminSvc := adminservice.NewAdminService(
		adminservice.Credentials{Username: cfg.Admin.Username, Password: cfg.Admin.Password},
		sessions, userRepo, machineRepo, depositRepo,
	)

	router := apphttp.NewRouter(cfg, tokens, sessions, pg, rdb, apphttp.Handlers{
		User:    userhttp.NewUserHandler(userSvc),
		Auth:    authhttp.NewAuthHandler(authSvc),
		Machine: machinehttp.NewMachineHandler(machineSvc),
		Deposit: deposithttp.NewDepositHandler(depositSvc),
		Admin:   adminhttp.NewAdminHandler(adminSvc, machineSvc),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
