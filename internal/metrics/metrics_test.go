package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.CartMutations.WithLabelValues("add").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CartMutations.WithLabelValues("add")))
	assert.Zero(t, testutil.ToFloat64(b.CartMutations.WithLabelValues("add")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.AdapterFailures.WithLabelValues("mx", "search").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `companyhouse_adapter_failures_total{country="mx",op="search"} 1`)
}
