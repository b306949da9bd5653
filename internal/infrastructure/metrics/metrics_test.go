package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CuentaPorRuta(t *testing.T) {
	m := New("stockpilot")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/v1/products/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	got := testutil.ToFloat64(m.requestCounter.WithLabelValues("GET", "/api/v1/products/:id", "200"))
	assert.Equal(t, float64(2), got, "una sola serie por patrón de ruta")

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "stockpilot_http_requests_total"), "exposición Prometheus")
}

func TestRecorder(t *testing.T) {
	m := New("stockpilot")
	m.RecordMovement("SALIDA", 3)
	m.RecordMovement("SALIDA", 2)
	m.RecordCheckout(2, decimal.RequireFromString("35.00"))
	m.RecordRejected("stock_insuficiente")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.movements.WithLabelValues("SALIDA")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.units.WithLabelValues("SALIDA")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.checkouts))
	assert.Equal(t, float64(35), testutil.ToFloat64(m.checkoutTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rejected.WithLabelValues("stock_insuficiente")))
}
