package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ReactionToggles counts reaction toggles by content type and kind.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_reaction_toggles_total",
		Help: "Total number of reaction toggles by content type and kind",
	}, []string{"content_type", "kind"})

	// CommentsCreated counts created comments by content type.
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_comments_created_total",
		Help: "Total number of comments created by content type",
	}, []string{"content_type"})

	// EventSweepUpdates counts rows changed by the event status sweep.
	EventSweepUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_event_sweep_updates_total",
		Help: "Total number of events flipped by the status sweep",
	}, []string{"direction"})

	// ActiveWebSockets is the gauge of open live-feed connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "townsquare_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketDrops counts live-feed messages dropped on backpressure.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_websocket_drops_total",
		Help: "Total number of WebSocket messages dropped by reason",
	}, []string{"reason"})

	// MailDeliveries counts outbound mail attempts by outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_mail_deliveries_total",
		Help: "Total number of outbound mail attempts by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
