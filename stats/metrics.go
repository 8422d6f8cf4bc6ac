package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	elementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmxml_elements_total",
			Help: "Total number of parsed OSM elements",
		},
		[]string{"type"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmxml_errors_total",
			Help: "Total number of elements that could not be parsed",
		},
		[]string{"kind"},
	)
)
