package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"log"
	"membership-dashboard/app/server/apidocs"
	"membership-dashboard/app/server/gate"
	"membership-dashboard/app/server/handlers"
	"membership-dashboard/app/server/inits"
	"membership-dashboard/app/server/jwt"
	"membership-dashboard/app/server/metrics"
	"membership-dashboard/app/server/middlewares"
	"membership-dashboard/app/server/posts"
	"membership-dashboard/app/server/profiles"
	"membership-dashboard/app/server/session"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func docOpts(publicURL string) []apidocs.Opts {
	if publicURL == "" {
		return nil
	}
	return []apidocs.Opts{apidocs.WithServerURL(publicURL)}
}

func main() {
	// config
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// logger
	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer l.Sync()

	l.Debug("logger initialized")

	// database
	db, err := inits.DB(cfg.System.DBConnectionString)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}
	if err := inits.SeedAdmin(db, cfg.Security.BootstrapAdmin); err != nil {
		l.Fatal("error seeding bootstrap admin", zap.Error(err))
	}

	// redis
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}

	// recovery token signer
	j, err := jwt.New(cfg.Security.SignatureSecretKey)
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	sessions := session.NewRedisStore(rdb)
	authGate := gate.New(l.Named("gate"), sessions, gate.Options{
		Routes:        gate.DefaultRoutes(cfg.Gate.LoginPath),
		DashboardPath: cfg.Gate.DashboardPath,
		CacheTTL:      cfg.Gate.CacheTTL,
		CacheSize:     cfg.Gate.CacheSize,
		SweepRate:     cfg.Gate.SweepRate,
		KeyPrefixLen:  cfg.Gate.KeyPrefixLen,
	})

	handlerApp := handlers.NewApp(
		l,
		profiles.New(l.Named("profiles"), db, rdb),
		posts.New(l.Named("posts"), db),
		sessions,
		authGate,
		j,
		handlers.Options{
			SessionTTL:   cfg.Session.TTL,
			CookieSecure: cfg.Session.CookieSecure,
		},
	)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middlewares.Gate(authGate))

	handlerApp.RegisterRoutes(e)
	e.GET("/metrics", metrics.Handler())

	// api docs
	if !cfg.System.IsProd {
		if doc, err := apidocs.Load(context.Background()); err != nil {
			l.Error("error loading api docs", zap.Error(err))
		} else if mw, err := apidocs.Doc("/api/docs", doc, docOpts(cfg.System.PublicURL)...); err != nil {
			l.Error("error initializing api docs", zap.Error(err))
		} else {
			e.Pre(mw)
		}
	}

	// backstop for the probabilistic sweep when traffic is low
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		if n := authGate.Sweep(); n > 0 {
			l.Debug("swept gate cache", zap.Int("evicted", n))
		}
	}); err != nil {
		l.Fatal("error scheduling gate sweep", zap.Error(err))
	}
	scheduler.Start()

	go func() {
		if err := e.Start(cfg.System.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		l.Error("error shutting down the server", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		l.Error("error closing Redis connection", zap.Error(err))
	}
}
