package api

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// rateLimit applies a per-client token bucket keyed by remote IP. State is
// in-process, so in a multi-instance deployment each instance enforces its
// own budget.
func rateLimit(rps rate.Limit, burst int) fiber.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	return func(c *fiber.Ctx) error {
		mu.Lock()
		lim, ok := limiters[c.IP()]
		if !ok {
			lim = rate.NewLimiter(rps, burst)
			limiters[c.IP()] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}
