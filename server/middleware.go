package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authx "github.com/kingswood/clienthub/pkg/auth"
	logx "github.com/kingswood/clienthub/pkg/logger"
)

// requireToken rejects requests without a valid bearer token.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := authx.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err := s.auth.ValidateToken(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	log := logx.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
