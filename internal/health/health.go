// Package health serves the liveness and readiness checks over HTTP.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

// NewRouter returns a gin engine with GET /healthz (process is up) and
// GET /readyz (every checker passes).
func NewRouter(log *zap.Logger, checks map[string]Checker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	engine.GET("/readyz", readyHandler(log, checks))
	return engine
}

func readyHandler(log *zap.Logger, checks map[string]Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		status := "ready"
		deps := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				deps[name] = "error"
				code = http.StatusServiceUnavailable
				status = "unready"
				continue
			}
			deps[name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":       status,
			"time":         time.Now().Format(time.RFC3339),
			"dependencies": deps,
		})
	}
}
