package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimitMiddleware is a fixed-window per-IP limiter backed by Redis so
// the limit holds across replicas. A Redis outage fails open: dropping
// donations because the limiter is down is the worse trade.
func RateLimitMiddleware(client *redis.Client, scope string, limitPerMinute int) fiber.Handler {
	window := time.Minute

	return func(ctx *fiber.Ctx) error {
		if client == nil || limitPerMinute <= 0 {
			return ctx.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, ctx.IP(), time.Now().Unix()/int64(window.Seconds()))
		count, err := rateLimitScript.Run(ctx.Context(), client, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			return ctx.Next()
		}
		if count > limitPerMinute {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many requests, slow down"))
		}
		return ctx.Next()
	}
}
