package route

import (
	"net/http"

	"eventhorizon/src-server/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Metrics(muxer *http.ServeMux, as *utils.AppState) {
	muxer.Handle("GET /metrics", promhttp.HandlerFor(as.Registry, promhttp.HandlerOpts{}))
}
