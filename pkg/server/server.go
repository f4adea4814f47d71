package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/auth"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/config"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/database"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/logger"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/loginguard"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/professor"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/profile"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/search"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/subject"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/user"
)

type Server struct {
	cfg    *config.Config
	db     *gorm.DB
	logger zerolog.Logger
	router *gin.Engine
	http   *http.Server
}

// New builds the router and wires every handler against db.
func New(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), httpx.RequestID(), logger.Middleware(log))
	if c, ok := corsConfig(cfg.Server.CORSOrigins); ok {
		router.Use(cors.New(c))
	}

	s := &Server{cfg: cfg, db: db, logger: log, router: router}
	s.routes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	users := user.NewRepository(s.db)
	tokens := auth.NewTokenIssuer(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL())
	guard := loginguard.New(s.cfg.Auth.LoginMaxFailures, s.cfg.Auth.LoginWindow, s.cfg.Auth.LoginBlock)
	authService := auth.NewService(users, tokens, guard, s.cfg.Auth)
	requireUser := auth.RequireUser(authService, s.logger)

	s.router.GET("/manage/health", s.healthCheck)
	auth.NewHandler(authService, s.logger).RegisterRoutes(s.router)

	protected := s.router.Group("/", requireUser)
	professor.NewHandler(professor.NewService(professor.NewRepository(s.db)), s.logger).RegisterRoutes(protected)
	subject.NewHandler(subject.NewService(subject.NewRepository(s.db)), s.logger).RegisterRoutes(protected)
	profile.NewHandler(profile.NewService(users, s.cfg.Auth.AdminPassphrase), s.logger).RegisterRoutes(protected)

	searchService := search.NewService(search.NewRepository(s.db), s.cfg.Search.Limit)
	search.NewHandler(searchService, authService, s.logger).RegisterRoutes(s.router, requireUser)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	return s.http.Shutdown(ctx)
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, s.db); err != nil {
		s.logger.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", httpx.RequestIDHeader},
		ExposeHeaders: []string{httpx.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c, true
}
