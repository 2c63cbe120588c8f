package middleware

import (
	"strings"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	metricsOnce sync.Once
	metricsProm *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the HTTP metrics collector. Collectors live in the default
// registry, so the first service name wins and later calls share it.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		metricsProm = fiberprometheus.New(serviceName)
		metricsProm.SetSkipPaths([]string{"/metrics", "/health", "/health/live", "/health/ready"})
	})
	return metricsProm
}

// MetricsMiddleware records request metrics, leaving WebSocket upgrades alone
// since their hijacked connections never produce a normal response.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket") {
			return c.Next()
		}
		return prom.Middleware(c)
	}
}
