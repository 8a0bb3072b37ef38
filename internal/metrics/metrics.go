package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_uploads_total",
		Help: "Media files uploaded, by kind.",
	}, []string{"kind"})

	UploadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_upload_failures_total",
		Help: "Per-file upload failures.",
	})

	MediaDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_media_deletes_total",
		Help: "Media items deleted.",
	})

	EventDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_event_deletes_total",
		Help: "Events deleted.",
	})
)

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
