package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/artifacts"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/config"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/database"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/dialog"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/logger"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/routes"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/services"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/sessions"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	cfg := config.Get()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Load model artifacts; the NLP pipeline is mandatory, risk models are
	// tolerated missing and reported through /health.
	bundle, err := artifacts.Load(cfg.ModelDir, log)
	if err != nil {
		log.Fatal("failed to load model artifacts", zap.Error(err))
	}

	// Optional message archive
	var archive services.MessageArchiver
	if cfg.ArchiveEnabled() {
		if err := database.Connect(cfg, log); err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.Disconnect()
		archive = database.NewMessageStore(database.GetDatabase())
	} else {
		log.Info("message archiving disabled, DATABASE_URL not set")
	}

	// Session store with TTL eviction
	store := sessions.New(cfg.Sessions.TTL)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go store.Run(janitorCtx, cfg.Sessions.SweepInterval)

	weather := services.NewWeatherService(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout)

	chatbotService := services.NewChatbotService(
		bundle.Vectorizer,
		bundle.Classifier,
		bundle.Catalog,
		[]*dialog.Engine{bundle.Heart, bundle.Asthma},
		store,
		weather,
		archive,
		log,
	)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	routes.SetupRoutes(router, chatbotService, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.Bool("heart_model", bundle.Heart.Ready()),
			zap.Bool("asthma_model", bundle.Asthma.Ready()))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// corsMiddleware mirrors the allowed-origins list into the CORS headers.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSpace(origin)] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
