package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/okonenko/pharos/internal/config"
	"github.com/okonenko/pharos/pkg/cache"
	"github.com/okonenko/pharos/pkg/logger"
)

type RateLimiter struct {
	cache  *cache.Cache
	config *config.RateLimitConfig
}

func NewRateLimiter(cache *cache.Cache, config *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		config: config,
	}
}

// LimitByIP rate limits requests by IP address. Limiter failures fail open:
// a broken Redis must not take the report path down with it.
func (rl *RateLimiter) LimitByIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := fmt.Sprintf("ip:%s", c.IP())

		allowed, err := rl.cache.CheckRateLimit(
			c.Context(),
			identifier,
			rl.config.Requests,
			rl.config.Window,
		)

		if err != nil {
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": rl.config.Window.Seconds(),
			})
		}

		return c.Next()
	}
}

// CORS attaches the relay's CORS headers to every response, error responses
// included, and short-circuits preflight before any body handling. The
// allowed origin comes from server configuration, wildcard by default.
func CORS(allowedOrigin string) fiber.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return func(c *fiber.Ctx) error {
		SetCORSHeaders(c, allowedOrigin)

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}

// SetCORSHeaders is shared with the app-level error handler so even
// responses produced outside the middleware chain carry the headers.
func SetCORSHeaders(c *fiber.Ctx, allowedOrigin string) {
	c.Set("Access-Control-Allow-Origin", allowedOrigin)
	c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")
}

func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info("Request handled", map[string]any{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          AnonymizeIP(c.IP()),
		})

		return err
	}
}

func Recover() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered", map[string]any{"panic": fmt.Sprintf("%v", r)})
				_ = c.Status(fiber.StatusInternalServerError).SendString("Internal error")
			}
		}()
		return c.Next()
	}
}

// AnonymizeIP removes the last octet for GDPR compliance. Applied to logged
// addresses only; the formatted notification carries what the geo lookup
// reported, not the request address.
func AnonymizeIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return fmt.Sprintf("%s.%s.%s.0", parts[0], parts[1], parts[2])
	}
	return ip
}
