package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RegisterRateLimit limits signer-registration attempts per account or IP
// using Redis when available. Registration runs bcrypt, so an unthrottled
// endpoint is a cheap way to burn the server's CPU.
func RegisterRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			Account string `json:"account"`
		}
		_ = c.BodyParser(&req)
		account := strings.TrimSpace(req.Account)
		if account == "" {
			account = c.IP()
		}
		key := "subledger:rl:register:" + account
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many registration attempts, try again later")
		}
		return c.Next()
	}
}
