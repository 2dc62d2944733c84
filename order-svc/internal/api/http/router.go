package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouteRegistrar adds extra routes next to the API, such as the websocket channels.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

func NewRouter(handler *Handler, extra ...RouteRegistrar) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger)
	handler.RegisterRoutes(r)
	for _, registrar := range extra {
		registrar.RegisterRoutes(r)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature", "X-Request-ID"},
		AllowCredentials: false,
	})
	return c.Handler(r)
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
