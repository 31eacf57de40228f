package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Roja-08/Scout-Nallur/internal/admin"
	"github.com/Roja-08/Scout-Nallur/internal/cloudinary"
	"github.com/Roja-08/Scout-Nallur/internal/config"
	"github.com/Roja-08/Scout-Nallur/internal/handler"
	"github.com/Roja-08/Scout-Nallur/internal/httpmiddleware"
	"github.com/Roja-08/Scout-Nallur/internal/notify"
	"github.com/Roja-08/Scout-Nallur/internal/queue"
	"github.com/Roja-08/Scout-Nallur/internal/scout"
	"github.com/Roja-08/Scout-Nallur/internal/store"
)

func main() {
	cfg := config.Load()

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
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	dispatcher := notify.NewDispatcher(q, logger)

	// With the in-memory backend there is no separate worker process, so
	// the API drains its own queue.
	if cfg.QueueBackend == "memory" {
		mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.SMTPFromName, cfg.SMTPFromEmail, logger)
		go drainQueue(ctx, q, mailer, logger)
	}

	scoutRepo := scout.NewRepository(db.Client)
	scouts := scout.NewService(scoutRepo, dispatcher, cfg.PublicBaseURL, cfg.BcryptCost, nil)

	adminRepo := admin.NewRepository(db.Client)
	admins := admin.NewService(adminRepo, dispatcher, cfg.BcryptCost, nil)

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware(cfg.CORSOrigin))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := cfg.QueueBackend == "memory" || redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	h := handler.New(scouts, admins, cdnClient, cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	h.RegisterRoutes(r)

	// Dashboard and the public status page. /user/:id is where the printed
	// QR codes point.
	r.StaticFile("/", "web/index.html")
	r.StaticFile("/leaderboard", "web/leaderboard.html")
	r.GET("/user/:id", func(c *gin.Context) {
		c.File("web/status.html")
	})
	r.Static("/static", "web/static")

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// drainQueue is the in-process fallback consumer used with the memory
// backend. The redis backend runs cmd/worker instead.
func drainQueue(ctx context.Context, q queue.Queue, mailer *notify.Mailer, logger *slog.Logger) {
	messages, err := q.Consume(ctx)
	if err != nil {
		logger.Error("queue consume init failed", slog.String("error", err.Error()))
		return
	}
	for msg := range messages {
		var job notify.Job
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			logger.Error("bad notification payload", slog.String("error", err.Error()))
			continue
		}
		if err := mailer.Process(job); err != nil {
			logger.Error("notification delivery failed",
				slog.String("kind", job.Kind), slog.String("to", job.To), slog.String("error", err.Error()))
		}
	}
}

// CORS middleware for the dashboard origin
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
