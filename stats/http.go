package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniscale/osmxml/log"
)

// StartHttpPProf serves pprof (/debug/pprof/) and Prometheus metrics
// (/metrics) on bind.
func StartHttpPProf(bind string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, nil))
	}()
}
