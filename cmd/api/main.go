package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"snapcheck/internal/attendance"
	"snapcheck/internal/auth"
	"snapcheck/internal/cloudinary"
	"snapcheck/internal/config"
	"snapcheck/internal/geolocate"
	"snapcheck/internal/handler"
	"snapcheck/internal/httpmiddleware"
	"snapcheck/internal/store"
	"snapcheck/internal/student"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("warning: unknown timezone %q, using UTC: %v", cfg.Timezone, err)
		tz = time.UTC
	}

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	geo := geolocate.New(cfg.IPStackBaseURL, cfg.IPStackAPIKey, cfg.IPStackLookupIP, cfg.OpenCageBaseURL, cfg.OpenCageAPIKey)
	geo.Cache = redisClient
	geo.CacheTTL = cfg.LocationCacheTTL

	students := student.NewService(student.NewRepository(db.Client))
	records := attendance.NewRepository(db.Client)

	var images handler.ImageStore
	if cdnClient != nil {
		images = cdnClient
	}
	h := handler.New(students, records, geo, images, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.RegisterTTL, cfg.SignInTTL, tz)

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	// Security headers
	r.Use(httpmiddleware.SecurityHeaders())

	// Request metrics
	r.Use(httpmiddleware.NewMetrics().GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil && db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/signUp", h.SignUp)
	r.POST("/signIn", h.SignIn)
	r.POST("/upload-image", auth.RequireUser(cfg.JWTSigningKey, cfg.JWTIssuer), h.UploadImage)
	r.GET("/get-image/:ID", h.GetImages)
	r.DELETE("/delete-image/:ID", h.DeleteImages)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
