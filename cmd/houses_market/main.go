package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"houses_market/internal/app/service"
	"houses_market/internal/infrastructure/configloader"
	"houses_market/internal/infrastructure/contract"
	"houses_market/internal/infrastructure/httpclient"
	clientprovider "houses_market/internal/infrastructure/network/client"
	"houses_market/internal/infrastructure/restapi"
	"houses_market/internal/pkg/logger"
	"houses_market/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := configloader.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: %v\n", err)
		os.Exit(1)
	}

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Houses market starting", "solidity", cfg.Solidity, "defaultNetwork", cfg.DefaultNetwork, "networks", cfg.NetworkNames())
	appLogger := logger.NewSlogAdapter()

	clientProvider := clientprovider.NewEVMClientProvider(
		time.Duration(cfg.RpcClient.ConnectTimeoutMs)*time.Millisecond,
		time.Duration(cfg.RpcClient.CallTimeoutMs)*time.Millisecond,
		appLogger,
	)
	defer clientProvider.Close()

	metadataClient := httpclient.NewMetadataClient(
		cfg.Metadata.IPFSGateway,
		time.Duration(cfg.Metadata.RequestTimeoutMillis)*time.Millisecond,
		cfg.Metadata.RateLimit,
		cfg.Metadata.Burst,
		appLogger,
	)

	if cfg.Contract.Address == "" {
		logger.Warn("Contract address is not configured; binding a contract will fail until HOUSES_CONTRACT_ADDRESS is set")
	}
	housesService := service.NewHousesService(
		clientProvider,
		contract.NewHouseContract,
		metadataClient,
		service.HousesServiceConfig{
			Network:         cfg.ContractNetwork(),
			ContractAddress: cfg.Contract.Address,
			MaxConcurrent:   cfg.Metadata.MaxConcurrent,
			CallTimeout:     time.Duration(cfg.RpcClient.CallTimeoutMs) * time.Millisecond,
		},
		appLogger,
	)

	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	sessions := service.NewSessionStore(
		sessionTTL,
		time.Duration(cfg.Session.CleanupIntervalMinutes)*time.Minute,
		appLogger,
	)

	router := restapi.SetupRouter(restapi.RouterDeps{
		Houses:         housesService,
		Sessions:       sessions,
		Routes:         restapi.NewRouteTable(restapi.ViewsFS(), restapi.DefaultRoutes),
		Cookie:         restapi.SessionCookie{Name: cfg.Session.CookieName, TTL: sessionTTL, Secure: cfg.Session.SecureCookie},
		AllowedOrigins: cfg.Frontend.AllowedOrigins,
		ZapLogger:      zapLogger.Named("http"),
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}
}
