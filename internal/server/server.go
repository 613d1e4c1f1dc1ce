package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/service"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Auth       *service.AuthService
	Accounts   *service.AccountService
	Posts      *service.PostService
	Calendar   *service.CalendarService
	Inbox      *service.InboxService
	Reviews    *service.ReviewService
	Library    *service.LibraryService
	Dispatch   *service.DispatchService
	Scheduler  *service.Scheduler
	Monitoring *service.MonitoringService
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	captioner := service.NewCaptioner(&cfg.AI, logger)
	monitoring := service.NewMonitoringService(db, logger)
	accounts := service.NewAccountService(db, logger)
	posts := service.NewPostService(db, accounts, logger)
	calendar := service.NewCalendarService(captioner, posts, accounts, monitoring, logger)
	dispatch := service.NewDispatchService(db, logger)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, dispatch)

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:     cfg,
		DB:         db,
		Router:     router,
		Logger:     logger,
		Auth:       service.NewAuthService(&cfg.Auth, db, logger),
		Accounts:   accounts,
		Posts:      posts,
		Calendar:   calendar,
		Inbox:      service.NewInboxService(db, accounts, logger),
		Reviews:    service.NewReviewService(db, accounts, captioner, logger),
		Library:    service.NewLibraryService(db, logger),
		Dispatch:   dispatch,
		Scheduler:  scheduler,
		Monitoring: monitoring,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Organization-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	authed := api.Group("")
	authed.Use(s.Auth.Middleware())
	{
		authed.GET("/auth/me", s.handleMe)
		authed.POST("/auth/totp/enroll", s.handleEnrollTOTP)

		accounts := authed.Group("/accounts")
		{
			accounts.GET("", s.handleListAccounts)
			accounts.POST("", s.handleConnectAccount)
			accounts.DELETE("/:id", s.handleDisconnectAccount)
		}

		posts := authed.Group("/posts")
		{
			posts.GET("", s.handleListPosts)
			posts.POST("", s.handleCreatePost)
			posts.PATCH("/:id", s.handleUpdatePost)
			posts.DELETE("/:id", s.handleDeletePost)
		}

		authed.POST("/calendar/generate", s.handleGenerateCalendar)
		authed.GET("/platforms", s.handleListPlatforms)

		inbox := authed.Group("/inbox")
		{
			inbox.GET("", s.handleListInbox)
			inbox.POST("/:id/read", s.handleMarkInboxRead)
			inbox.POST("/:id/reply", s.handleReplyInbox)
		}

		reviews := authed.Group("/reviews")
		{
			reviews.GET("", s.handleListReviews)
			reviews.GET("/:id/draft", s.handleDraftReviewReply)
			reviews.POST("/:id/reply", s.handleReplyReview)
		}

		library := authed.Group("/library")
		{
			library.GET("", s.handleListLibrary)
			library.POST("", s.handleAddLibraryItem)
			library.DELETE("/:id", s.handleDeleteLibraryItem)
		}

		authed.GET("/monitoring/errors", s.handleListErrors)
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	s.Scheduler.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
