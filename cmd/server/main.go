package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"election_portal/internal/auth"
	"election_portal/internal/config"
	"election_portal/internal/controllers"
	"election_portal/internal/dao"
	"election_portal/internal/logger"
	"election_portal/internal/metrics"
	"election_portal/internal/middleware"
	"election_portal/internal/routes"
	"election_portal/internal/upload"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	// Initialize structured logging to file
	logWriter := logger.Setup(logger.Options{
		Level:      cfg.Log.Level,
		Filename:   cfg.Log.Filename,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    cfg.Log.Console,
	})
	logrus.WithField("config", cfg.String()).Info("starting election portal")

	// Connect to the database
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database initialization failed")
	}
	defer func() {
		if err := config.CloseDB(); err != nil {
			logrus.WithError(err).Warn("closing database")
		}
	}()

	daos := dao.NewDaoManager(db)
	credentials := auth.NewCredentialService(daos.AccountDao, cfg.Auth.BcryptCost)
	if cfg.Auth.AdminUsername != "" {
		created, err := credentials.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			logrus.WithError(err).Fatal("admin bootstrap failed")
		}
		if created {
			logrus.WithField("username", cfg.Auth.AdminUsername).Info("admin account created")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	deps := controllers.Deps{
		Daos:           daos,
		Credentials:    credentials,
		Sessions:       middleware.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.SecureCookie),
		Photos:         upload.NewPhotoStore(cfg.Upload.Dir, cfg.Upload.MaxBytes),
		Metrics:        metrics.NewMetricService(),
		BallotPosition: cfg.BallotPosition,
	}
	r := routes.SetupRouter(deps, logWriter)

	// Wrap with CORS
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           middleware.EnableCORS(r, cfg.Origins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("server running at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logrus.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
