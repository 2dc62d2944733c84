package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

const notifyTimeout = 5 * time.Second

// Dispatcher sends order events in the background after the triggering
// transaction has committed. Failures are logged and dropped.
type Dispatcher struct {
	notifier Notifier
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier) *Dispatcher {
	return &Dispatcher{notifier: notifier}
}

func (d *Dispatcher) Send(subscriber, eventType string, order *domain.Order) {
	if d == nil || d.notifier == nil || order == nil {
		return
	}

	snapshot := *order
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, subscriber, eventType, &snapshot); err != nil {
			slog.Warn("[order-svc] notification dropped",
				"subscriber", subscriber, "event", eventType, "order_id", snapshot.ID, "error", err)
		}
	}()
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
