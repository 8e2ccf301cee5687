package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/supermarkets/internal/auth"
	"github.com/totegamma/supermarkets/internal/config"
	"github.com/totegamma/supermarkets/internal/infrastructure/providers"
	"github.com/totegamma/supermarkets/internal/infrastructure/repository"
	"github.com/totegamma/supermarkets/internal/present/rest"
	restmiddleware "github.com/totegamma/supermarkets/internal/present/rest/middleware"
	"github.com/totegamma/supermarkets/internal/service"
	"github.com/totegamma/supermarkets/internal/telemetry"
	"github.com/totegamma/supermarkets/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := telemetry.SetupLogger(conf.Server.LogLevel); err != nil {
		slog.Error("failed to setup logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ValidateAPI(conf); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.SetupTracer(ctx, "supermarkets-api", conf.Server.TraceEndpoint)
		if err != nil {
			panic(err)
		}
		defer shutdown(context.Background())
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		panic("failed to connect database")
	}
	if err := providers.MigrateDatabase(db); err != nil {
		panic("failed to migrate database")
	}

	rdb, err := providers.NewRedis(ctx, conf.Server)
	if err != nil {
		panic(err)
	}

	verifier, err := auth.NewAccessTokenVerifier(ctx, conf.Okta)
	if err != nil {
		panic(err)
	}

	// without redis there is no change signal and /realtime is not served
	var publisher usecase.EventPublisher
	var subscriber rest.EventSubscriber
	if rdb != nil {
		signalService := service.NewSignalService(rdb)
		publisher = signalService
		subscriber = signalService
	}

	supermarketUsecase := usecase.NewSupermarketUsecase(repository.NewSupermarketRepository(db), publisher)
	authMiddleware := restmiddleware.NewAuthMiddleware(service.NewAuthService(verifier))

	e := echo.New()
	e.HideBanner = true
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("supermarkets-api"))
	}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(conf.API.CorsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: conf.API.CorsOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		}))
	} else {
		e.Use(middleware.CORS())
	}

	handler := rest.NewHandler(supermarketUsecase, subscriber, authMiddleware.RequireBearer)
	handler.RegisterRoutes(e)

	go func() {
		slog.Info("api listening", slog.String("addr", conf.API.Addr))
		if err := e.Start(conf.API.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.String("error", err.Error()))
	}
	if rdb != nil {
		rdb.Close()
	}
}
