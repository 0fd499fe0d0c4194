package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/infrastructure/metrics"
)

func TestClassify(t *testing.T) {
	cases := map[string]error{
		metrics.ResultOK:          nil,
		metrics.ResultValidation:  &domain.ValidationError{Field: "name", Message: "requerido"},
		metrics.ResultNotFound:    domain.NewCategoryNotFound("x"),
		metrics.ResultTransaction: &domain.TransactionError{Op: "delete", Err: errors.New("boom")},
		metrics.ResultError:       errors.New("otro"),
	}
	for want, err := range cases {
		assert.Equal(t, want, metrics.Classify(err))
	}
}

func TestTreeMetrics_ObserveMutation(t *testing.T) {
	m := metrics.NewTreeMetrics()

	m.ObserveMutation("create", nil)
	m.ObserveMutation("create", nil)
	m.ObserveMutation("delete", domain.NewCategoryNotFound("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("delete", "not_found")))
}

func TestTreeMetrics_Handler(t *testing.T) {
	m := metrics.NewTreeMetrics()
	m.ObserveCascade(3)
	m.ObserveRelink(2)
	m.ObserveMutation("update_status", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "categorias_tree_mutations_total")
	assert.Contains(t, string(body), "categorias_tree_cascade_affected_count 1")
	assert.Contains(t, string(body), "categorias_tree_relink_affected_sum 2")
}
