package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/derrickshema/recipe-manager/config"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	OrderSvcURL string
	FrontendDir string
}

// apiPrefixes are the resource groups served by the order service.
var apiPrefixes = []string{
	"/api/auth/",
	"/api/restaurants",
	"/api/orders",
	"/api/payments/",
	"/api/invitations/",
	"/api/admin/",
}

type Gateway struct {
	config Config
	client HTTPClient
	ws     *httputil.ReverseProxy
}

func NewGateway(config Config, client HTTPClient) (*Gateway, error) {
	target, err := url.Parse(config.OrderSvcURL)
	if err != nil {
		return nil, err
	}
	if config.FrontendDir == "" {
		config.FrontendDir = "./frontend"
	}
	return &Gateway{
		config: config,
		client: client,
		ws:     httputil.NewSingleHostReverseProxy(target),
	}, nil
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ProxyRequest forwards the request unchanged and streams the response back.
func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	target := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	slog.DebugContext(r.Context(), "[api-gateway] proxy", "method", r.Method, "path", r.URL.Path, "target", target)

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		slog.ErrorContext(r.Context(), "[api-gateway] failed to create request", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for k, v := range r.Header {
		req.Header[k] = v
	}
	req.Header.Set("X-Request-ID", config.RequestIDFrom(r.Context()))
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.Header.Set("X-Forwarded-For", host)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		slog.ErrorContext(r.Context(), "[api-gateway] upstream unavailable", "target", targetURL, "error", err)
		writeDetail(w, http.StatusBadGateway, "order service unavailable")
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.WarnContext(r.Context(), "[api-gateway] failed to copy response", "error", err)
	}
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	for _, prefix := range apiPrefixes {
		if strings.HasPrefix(path, prefix) {
			g.ProxyRequest(w, r, g.config.OrderSvcURL)
			return
		}
	}

	if strings.HasPrefix(path, "/api/") {
		slog.InfoContext(r.Context(), "[api-gateway] unmatched API route", "path", path)
		writeDetail(w, http.StatusNotFound, "API route not found")
		return
	}

	http.ServeFile(w, r, g.config.FrontendDir+"/index.html")
}

// LiveUpdates hands websocket upgrades to the order service.
func (g *Gateway) LiveUpdates(w http.ResponseWriter, r *http.Request) {
	slog.DebugContext(r.Context(), "[api-gateway] websocket", "path", r.URL.Path)
	g.ws.ServeHTTP(w, r)
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID)
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/ws/").HandlerFunc(g.LiveUpdates)
	r.PathPrefix("/api/").HandlerFunc(g.RouteHandler)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(g.config.FrontendDir))))
	r.PathPrefix("/").HandlerFunc(g.RouteHandler)
	return r
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(config.WithRequestID(r.Context(), id)))
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
