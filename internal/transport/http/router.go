// Package httptransport aggregates the domain routers behind one mux.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"baryo/internal/transport/http/shared"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter mounts the domain handlers under the API prefix and exposes the
// operational endpoints without auth.
func NewRouter(handlers ...Registrar) http.Handler {
	root := chi.NewRouter()

	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	api := chi.NewRouter()
	for _, handler := range handlers {
		handler.Register(api)
	}
	root.Mount("/api/v1", api)

	return root
}
