package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/derrickshema/recipe-manager/api-gateway/internal/gateway"
	"github.com/derrickshema/recipe-manager/config"

	"github.com/rs/cors"
)

func newHandler(orderSvcURL, frontendDir string, client gateway.HTTPClient) (http.Handler, error) {
	gw, err := gateway.NewGateway(gateway.Config{
		OrderSvcURL: orderSvcURL,
		FrontendDir: frontendDir,
	}, client)
	if err != nil {
		return nil, err
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature", "X-Request-ID"},
		AllowCredentials: false,
	})
	return c.Handler(gw.SetupRoutes()), nil
}

func main() {
	config.InitLogger("api-gateway", config.GetEnv("LOG_LEVEL", "info"))

	handler, err := newHandler(
		config.GetEnv("ORDER_SVC_URL", "http://localhost:8081"),
		config.GetEnv("FRONTEND_DIR", "./frontend"),
		&http.Client{Timeout: 30 * time.Second},
	)
	if err != nil {
		log.Fatal("Invalid ORDER_SVC_URL:", err)
	}

	addr := ":" + config.GetEnv("GATEWAY_PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("[api-gateway] shutdown failed", "error", err)
		}
	}()

	slog.Info("[api-gateway] API Gateway starting", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	slog.Info("[api-gateway] API Gateway stopped")
}
