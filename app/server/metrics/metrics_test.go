package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	GateDecisionsTotal.WithLabelValues("allow").Inc()

	e := echo.New()
	e.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dashboard_gate_decisions_total{decision="allow"}`)
}

func TestAdminActionsTotal(t *testing.T) {
	before := testutil.ToFloat64(AdminActionsTotal.WithLabelValues("ban"))
	AdminActionsTotal.WithLabelValues("ban").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(AdminActionsTotal.WithLabelValues("ban")))
}
