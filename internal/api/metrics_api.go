package api

import (
	"go-pos/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type MetricsApi struct {
	Metrics *metrics.Metrics
}

func NewMetricsApi(m *metrics.Metrics) *MetricsApi {
	return &MetricsApi{Metrics: m}
}

// Setup registers the Prometheus scrape endpoint
func (h *MetricsApi) Setup(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
}
