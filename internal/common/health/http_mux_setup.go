package health

import (
	"github.com/gorilla/mux"
)

// SetupHttpMux registers the health check handler on GET /healthz.
func SetupHttpMux(router *mux.Router, checker Checker) {
	handler := NewHealthCheckHttpHandler(checker)
	router.Handle("/healthz", handler).Methods("GET")
}
