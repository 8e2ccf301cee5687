package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/supermarkets/internal/auth"
	"github.com/totegamma/supermarkets/internal/config"
	"github.com/totegamma/supermarkets/internal/infrastructure/providers"
	"github.com/totegamma/supermarkets/internal/present/web"
	"github.com/totegamma/supermarkets/internal/telemetry"
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
	if err := config.ValidateWeb(conf); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.SetupTracer(ctx, "supermarkets-web", conf.Server.TraceEndpoint)
		if err != nil {
			panic(err)
		}
		defer shutdown(context.Background())
	}

	publicURL := strings.TrimSuffix(conf.Web.PublicURL, "/")
	gateway, err := auth.NewGateway(ctx, conf.Okta, publicURL+"/login/callback")
	if err != nil {
		panic(err)
	}

	sessions, err := providers.NewSessionStore(ctx, conf)
	if err != nil {
		panic(err)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		panic(err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("supermarkets-web"))
	}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := web.NewHandler(
		web.Options{
			PublicURL:    publicURL,
			CookieName:   conf.Session.CookieName,
			CookieSecure: conf.Session.Secure,
			SessionTTL:   time.Duration(conf.Session.TTLSeconds) * time.Second,
		},
		gateway,
		sessions,
		providers.NewClient(conf.Web),
	)
	handler.RegisterRoutes(e)

	go func() {
		slog.Info("web listening", slog.String("addr", conf.Web.Addr), slog.String("api", conf.Web.APIBaseURL))
		if err := e.Start(conf.Web.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
}
