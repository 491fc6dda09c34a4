package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edirooss/museq-server/internal/config"
	"github.com/edirooss/museq-server/internal/env"
	"github.com/edirooss/museq-server/internal/http/handler"
	"github.com/edirooss/museq-server/internal/http/middleware"
	museqredis "github.com/edirooss/museq-server/internal/redis"
	"github.com/edirooss/museq-server/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// Custom Gin middleware that logs using Zap
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		// collect all errors from Gin context
		var errs []error
		for _, ge := range c.Errors {
			if ge.Err != nil {
				errs = append(errs, ge.Err)
			}
		}
		// errors.Join returns nil if errs is empty
		joinedErr := errors.Join(errs...)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Duration("latency", latency),
		}
		if joinedErr != nil {
			fields = append(fields, zap.Error(joinedErr))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	// Create Zap logger
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	cfgPath := os.Getenv("MUSEQ_CONFIG")
	if cfgPath == "" {
		cfgPath = "museq.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	// Enable strict JSON decoding (must be before binding happens)
	binding.EnableDecoderDisallowUnknownFields = true

	isDev := env.IsDev()

	// Song catalog store
	rdb := museqredis.NewClient(cfg.RedisAddr, cfg.RedisDB, log)
	songRepo := museqredis.NewSongRepository(rdb, log)

	// Service serializing all engine access
	queueSvc, err := service.NewQueueService(log, cfg.HeapCapacity, songRepo)
	if err != nil {
		log.Fatal("queue service creation failed", zap.Error(err))
	}
	authSvc := service.NewAuthService()

	queueHandler := handler.NewQueueHandler(log, queueSvc)
	searchHandler := handler.NewSearchHandler(log, queueSvc)
	songsHandler := handler.NewSongsHandler(log, songRepo)
	loginHandler := handler.NewLoginHandler(log, authSvc, isDev)
	debugHandler := handler.NewDebugHandler(log, queueSvc)

	gin.SetMode(gin.ReleaseMode)

	// Create Gin router
	r := gin.New()

	// Trust reverse proxy
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})

	// Apply middlewares
	r.Use(gin.Recovery()) // Recovery first (outermost)

	r.Use(secure.New(secure.Config{
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		FrameDeny:          true,
	}))

	// CORS (dev only)
	if isDev {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Total-Count", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour, // cache preflight
		}))
	}

	sessionStore := cookie.NewStore([]byte(env.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/api",
		MaxAge:   12 * 60 * 60,
		Secure:   !isDev,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("museq_session", sessionStore))

	r.Use(middleware.RequestID())
	r.Use(ZapLogger(log)) // Observability after that (logger, tracing)

	authRequired := middleware.Authentication(authSvc)
	validID := middleware.RequireValidSongID()

	api := r.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		api.POST("/login", loginHandler.Login)
		api.POST("/logout", loginHandler.Logout)
		api.GET("/me", authRequired, handler.Me)

		// reads are open
		api.GET("/queue", queueHandler.GetQueue)
		api.GET("/queue/current", queueHandler.GetCurrent)
		api.GET("/queue/upcoming", queueHandler.GetUpcoming)
		api.GET("/recommendations", searchHandler.Recommendations)
		api.GET("/search/songs", searchHandler.SearchSongs)
		api.GET("/search/artists", searchHandler.SearchArtists)
		api.GET("/songs", songsHandler.GetSongList)
		api.GET("/songs/:id", validID, songsHandler.GetSong)

		// mutations require auth
		edits := api.Group("", authRequired)
		{
			edits.POST("/queue/songs", queueHandler.AddSong)
			edits.DELETE("/queue/songs/:id", validID, queueHandler.RemoveSong)
			edits.POST("/queue/skip-next", queueHandler.SkipNext)
			edits.POST("/queue/skip-prev", queueHandler.SkipPrev)
			edits.POST("/queue/songs/:id/move-up", validID, queueHandler.MoveUp)
			edits.POST("/queue/songs/:id/move-down", validID, queueHandler.MoveDown)
			edits.POST("/queue/rotate", queueHandler.Rotate)
			edits.PUT("/queue/songs/:id/priority", validID, queueHandler.UpdatePriority)
			edits.POST("/queue/undo", queueHandler.Undo)
			edits.POST("/queue/redo", queueHandler.Redo)
			edits.POST("/queue/upcoming", queueHandler.AddUpcoming)
			edits.POST("/queue/upcoming/next", queueHandler.PopUpcoming)
			edits.GET("/debug/engine", debugHandler.EngineState)
		}
	}

	httpserver := &http.Server{
		Addr:    cfg.Listen,
		Handler: r, // <- gin.Engine satisfies http.Handler

		// Configure timeouts (by default it's all basically "infinite timeouts")
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,

		// Header size constraint
		MaxHeaderBytes: 1 << 15, // 32 KB

		// Attach zap's logger
		ErrorLog: zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("running HTTP server", zap.String("addr", cfg.Listen))
		if err := httpserver.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpserver.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return rdb.Close()
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
