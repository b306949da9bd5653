// Package metrics métricas Prometheus del API y del motor de inventario.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
)

var _ inventory.MovementRecorder = (*Metrics)(nil)

// Metrics colectores registrados en un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec

	movements     *prometheus.CounterVec
	units         *prometheus.CounterVec
	checkouts     prometheus.Counter
	checkoutTotal prometheus.Counter
	rejected      *prometheus.CounterVec
}

// New crea y registra los colectores.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total de peticiones HTTP",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latencia de peticiones HTTP",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_movements_total",
				Help:      "Movimientos de stock confirmados por tipo",
			},
			[]string{"type"},
		),
		units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_units_total",
				Help:      "Unidades movidas por tipo",
			},
			[]string{"type"},
		),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Ventas confirmadas",
		}),
		checkoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_amount_total",
			Help:      "Importe acumulado de ventas",
		}),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_rejections_total",
				Help:      "Operaciones de stock rechazadas por motivo",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCounter,
		m.requestLatency,
		m.movements,
		m.units,
		m.checkouts,
		m.checkoutTotal,
		m.rejected,
	)
	return m
}

// Registry expone el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordMovement implementa inventory.MovementRecorder.
func (m *Metrics) RecordMovement(movType string, quantity int) {
	m.movements.WithLabelValues(movType).Inc()
	m.units.WithLabelValues(movType).Add(float64(quantity))
}

// RecordCheckout implementa inventory.MovementRecorder.
func (m *Metrics) RecordCheckout(_ int, total decimal.Decimal) {
	m.checkouts.Inc()
	m.checkoutTotal.Add(total.InexactFloat64())
}

// RecordRejected implementa inventory.MovementRecorder.
func (m *Metrics) RecordRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// Middleware mide cada petición. La etiqueta route es el patrón registrado, no la URL.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "desconocida"
		}
		m.requestLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		m.requestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}

// Handler expone /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
