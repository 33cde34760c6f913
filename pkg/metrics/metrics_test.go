package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/products/:id", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/products/:id", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordOrderOperation(t *testing.T) {
	before := testutil.ToFloat64(orderOperations.WithLabelValues("pay", "error"))
	RecordOrderOperation("pay", false)
	assert.Equal(t, before+1, testutil.ToFloat64(orderOperations.WithLabelValues("pay", "error")))
}

func TestRecordPaymentCheck(t *testing.T) {
	before := testutil.ToFloat64(paymentChecks.WithLabelValues(PaymentDuplicate))
	RecordPaymentCheck(PaymentDuplicate)
	assert.Equal(t, before+1, testutil.ToFloat64(paymentChecks.WithLabelValues(PaymentDuplicate)))
}
