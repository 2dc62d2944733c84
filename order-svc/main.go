package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/derrickshema/recipe-manager/config"
	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	httpapi "github.com/derrickshema/recipe-manager/order-svc/internal/api/http"
	"github.com/derrickshema/recipe-manager/order-svc/internal/notify"
	"github.com/derrickshema/recipe-manager/order-svc/internal/payment"
	"github.com/derrickshema/recipe-manager/order-svc/internal/service"
	"github.com/derrickshema/recipe-manager/order-svc/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v79"
	"golang.org/x/sync/errgroup"
)

const (
	paymentEventTTL = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// app is the wired order service without its network listeners.
type app struct {
	handler  http.Handler
	registry *notify.Registry
	events   *service.Dispatcher
}

func newApp(
	db *sql.DB,
	rdb *redis.Client,
	events storage.MessageWriter,
	mail storage.AMQPChannel,
	stripeBackends *stripe.Backends,
	settings config.Settings,
) (*app, error) {
	repo := storage.NewPostgresRepository(db)
	tx := storage.NewTxManager(db)
	evaluator := access.NewEvaluator(repo)

	mailer, err := storage.NewMailPublisher(mail, settings.FrontendURL)
	if err != nil {
		return nil, err
	}

	dispatcher := service.NewDispatcher(storage.NewKafkaPublisher(events))
	sessions := storage.NewRedisSessionStore(rdb, settings.AccessTokenTTL)

	users := service.NewUserService(repo, repo, repo, repo, tx, sessions, service.BcryptHasher{}, evaluator)
	restaurants := service.NewRestaurantService(repo, repo, tx, evaluator)
	recipes := service.NewRecipeService(repo, repo, evaluator)
	memberships := service.NewMembershipService(repo, repo, repo, storage.NewRedisInvitationStore(rdb), mailer, evaluator)
	orders := service.NewOrderService(repo, repo, repo, tx, evaluator, dispatcher,
		service.PickupQRGenerator{FrontendURL: settings.FrontendURL})
	payments := service.NewPaymentService(repo, tx,
		payment.NewStripeGateway(settings.StripeSecretKey, stripeBackends),
		payment.NewWebhookVerifier(settings.StripeWebhookSecret),
		storage.NewRedisEventMarker(rdb, paymentEventTTL),
		dispatcher, settings.FrontendURL)

	registry := notify.NewRegistry()
	handler := httpapi.NewHandler(users, restaurants, recipes, memberships, orders, payments)
	live := notify.NewHandler(registry, users, evaluator)

	return &app{
		handler:  httpapi.NewRouter(handler, live),
		registry: registry,
		events:   dispatcher,
	}, nil
}

func main() {
	settings := config.Load()
	config.InitLogger("order-svc", settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres(settings)
	defer db.Close()

	if err := storage.NewPostgresRepository(db).EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	rdb := config.MustInitRedis(settings)
	defer rdb.Close()

	amqpConn, amqpCh := config.MustDialRabbitMQ(settings)
	defer amqpConn.Close()

	writer := config.NewKafkaWriter(settings, settings.OrderEventsTopic)
	defer writer.Close()

	// every instance reads every event so its own websocket clients get them
	reader := config.NewKafkaReader(settings, settings.OrderEventsTopic, "order-svc-"+settings.InstanceID)
	defer reader.Close()

	a, err := newApp(db, rdb, writer, amqpCh, nil, settings)
	if err != nil {
		log.Fatal("Failed to build order service:", err)
	}

	server := httpapi.NewServer(":"+settings.Port, a.handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.registry.Run(gctx)
		return nil
	})
	g.Go(func() error {
		notify.NewConsumer(reader, a.registry).Start(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("[order-svc] order service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("[order-svc] order service stopped with error", "error", err)
	}
	a.events.Wait()
	slog.Info("[order-svc] order service stopped")
}
