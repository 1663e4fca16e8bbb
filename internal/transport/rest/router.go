package rest

import (
	"net/http"

	"github.com/heartmarshall/kodict/internal/transport/middleware"
)

// NewRouter registers the API and health routes and wraps them with mw.
func NewRouter(dict *DictionaryHandler, health *HealthHandler, mw middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /lookup/{word}", dict.Lookup)
	mux.HandleFunc("GET /prefix/{prefix}", dict.Prefix)
	mux.HandleFunc("GET /random", dict.Random)

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	return mw(mux)
}
