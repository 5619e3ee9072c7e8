package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PetMetrics holds the Prometheus metrics for the registry.
type PetMetrics struct {
	created *prometheus.CounterVec
}

// NewPetMetrics initializes and registers the registry metrics on the
// default registry.
func NewPetMetrics() *PetMetrics {
	return newPetMetrics(prometheus.DefaultRegisterer)
}

func newPetMetrics(reg prometheus.Registerer) *PetMetrics {
	return &PetMetrics{
		created: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pet_created",
			Help: "Total number of pets created, by pet type.",
		}, []string{"type"}),
	}
}

// PetCreated increments the creation counter for the given pet type.
func (m *PetMetrics) PetCreated(petType string) {
	m.created.WithLabelValues(petType).Inc()
}
