package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

const outcomeOK = "ok"

// CatalogMetrics counts catalog writes by entity, operation and outcome.
type CatalogMetrics struct {
	mutations *prometheus.CounterVec
}

func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Catalog create/update/delete operations by outcome.",
	}, []string{"entity", "op", "outcome"})
	reg.MustRegister(mutations)
	return &CatalogMetrics{mutations: mutations}
}

// ObserveMutation increments the counter using the error code as the outcome.
func (c *CatalogMetrics) ObserveMutation(entity, op string, err error) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(entity), normalizeLabel(op), outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeInternal)
}
