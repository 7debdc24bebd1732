package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"traka/internal/apperrors"
	"traka/internal/utils"
	"traka/pkg/logger"
)

// CORSMiddleware configures CORS headers. An allowed origin of "*" opens
// the endpoint to any origin.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				c.Header("Access-Control-Allow-Origin", allowed)
				break
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware adds a request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware logs one line per request with method, path, status and
// latency.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString("request_id"),
		}).Info("Request handled")
	}
}

// WindowCounter counts hits per key inside a fixed window. Satisfied by
// cache.RedisCache.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitMiddleware caps requests per key inside a fixed window. Used on
// the public code-request endpoints to slow down OTP farming. Counting runs
// through Redis; when Redis is unreachable the request passes, availability
// over strictness.
func RateLimitMiddleware(store WindowCounter, log *logger.Logger, limit int64, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		count, err := store.IncrementWindow(c.Request.Context(), "ratelimit:"+key, window)
		if err != nil {
			log.WithError(err).Warn("Rate limit check failed, letting request through")
			c.Next()
			return
		}
		if count > limit {
			utils.ErrorResponse(c, http.StatusTooManyRequests, string(apperrors.CodeFailedPrecondition),
				"Terlalu banyak permintaan. Coba lagi nanti.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClientIPKey keys the rate limit by caller address.
func ClientIPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + ":" + c.ClientIP()
	}
}

// EmailBodyKey keys the rate limit by the email field of the JSON body, so
// one address cannot be farmed from many IPs. The body is restored for the
// handler's own binding. Requests without a parsable email pass through to
// the handler, which rejects them anyway.
func EmailBodyKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return ""
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var req struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.Email == "" {
			return ""
		}
		return prefix + ":" + utils.NormalizeEmail(req.Email)
	}
}
