package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/tupyy/jobengine/internal/config"
)

// RegisterFn wires handlers onto router, which is already scoped to
// /api/v1.
type RegisterFn func(router *gin.RouterGroup)

// Server hosts the job-engine introspection API.
type Server struct {
	cfg    config.Server
	http   *http.Server
	engine *gin.Engine
}

// NewServer builds a Server from cfg and registers routes via register.
// authCfg.Enabled adds a bearer-JWT middleware ahead of every /api/v1 route.
func NewServer(cfg config.Server, authCfg config.Auth, register RegisterFn) *Server {
	if cfg.ServerMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	logger := zap.L().Named("http")
	router.Use(ginzap.Ginzap(logger, time.RFC3339, false))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	group := router.Group("/api/v1")
	if authCfg.Enabled {
		group.Use(bearerAuthMiddleware(authCfg))
	}
	register(group)

	return &Server{
		cfg:    cfg,
		engine: router,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: router,
		},
	}
}

// Start blocks serving HTTP until the server is stopped or fails.
func (s *Server) Start(ctx context.Context) error {
	zap.S().Named("server").Infow("starting http server", "addr", s.http.Addr, "mode", s.cfg.ServerMode)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// bearerAuthMiddleware validates an HMAC-signed (HS256/384/512) bearer JWT against the key
// loaded from authCfg.JWTFilePath, rejecting the request with 401 otherwise.
func bearerAuthMiddleware(authCfg config.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := header[len(prefix):]

		key, err := loadSigningKey(authCfg.JWTFilePath)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth misconfigured"})
			return
		}

		_, err = jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}
