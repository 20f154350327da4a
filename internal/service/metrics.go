package service

import "github.com/prometheus/client_golang/prometheus"

var (
	mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "catalog_category_mutations_total", Help: "Count of category mutations by outcome"},
		[]string{"op", "result"},
	)
	descendantsRewritten = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_category_descendants_rewritten",
		Help:    "Descendants rewritten per rename or move",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

func init() { prometheus.MustRegister(mutationsTotal, descendantsRewritten) }

func outcome(err error) string {
	switch se, ok := err.(*Error); {
	case err == nil:
		return "ok"
	case ok && se.Code != CodeInternal && se.Code != CodeConflict:
		return "rejected"
	default:
		return "error"
	}
}
