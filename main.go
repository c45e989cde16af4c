// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/veterinary-salons/backend/broker"
	"github.com/veterinary-salons/backend/config"
	"github.com/veterinary-salons/backend/docs"
	"github.com/veterinary-salons/backend/endpoint"
	"github.com/veterinary-salons/backend/mail"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
)

// @title           Veterinary Salons API
// @version         1.0
// @description     Marketplace connecting pet owners with groomers, veterinarians, dog trainers and shelters.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.LoadConfig()

	logger := config.NewLogger(os.Stdout, config.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		log.Fatal("JWTSECRET is not set")
	}
	util.SetJWTSecret(cfg.JWTSecret)

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		slog.Warn("redis unavailable, sessions and rate limits use the database only", "error", err)
	}
	if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
		slog.Warn("geoip disabled", "error", err)
	}
	defer util.CloseGeoIP()
	util.InitPrincipalCacheFromEnv()

	mailer := mail.New(mail.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})
	publisher := broker.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()
	media := util.NewMediaStore(cfg.MediaRoot, cfg.MediaURL)

	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.Use(
		middleware.CORSMiddleware(),
		middleware.DatabaseMiddleware(db),
		middleware.MailerMiddleware(mailer),
		middleware.PublisherMiddleware(publisher),
		middleware.MediaMiddleware(media),
		middleware.EndpointCallLogger(),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)

	endpoint.RegisterRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error starting server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
