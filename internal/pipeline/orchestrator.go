// Package pipeline sequences the webhook stages: fetch credentials and
// order, derive candidate events, filter against the dedup ledger,
// deliver the remainder in one batch, record the delivery.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ecomplus/app-google-analytics/internal/auth"
	"github.com/ecomplus/app-google-analytics/internal/events"
	"github.com/ecomplus/app-google-analytics/internal/storeapi"
	"github.com/ecomplus/app-google-analytics/internal/validation"
)

// AuthProvider resolves Store API credentials per store.
type AuthProvider interface {
	Get(ctx context.Context, storeID string) (*auth.Credentials, error)
}

// StoreAPIClient fetches order snapshots and app configuration.
type StoreAPIClient interface {
	FindOrderByID(ctx context.Context, storeID, orderID string, creds *auth.Credentials) (*storeapi.Order, error)
	GetAppConfig(ctx context.Context, storeID string, creds *auth.Credentials) (*storeapi.AppConfig, error)
}

// Ledger is the dedup ledger: the sole authority on what has been sent.
type Ledger interface {
	GetSent(ctx context.Context, orderID string) (map[string]struct{}, error)
	AppendSent(ctx context.Context, orderID, storeID string, names []string) error
}

// Deliverer sends one batched request to the measurement endpoint.
type Deliverer interface {
	Send(ctx context.Context, measurementID, apiSecret, clientID string, evs []events.Event) error
}

// ReconcilePublisher queues ledger appends that failed after delivery.
type ReconcilePublisher interface {
	SendReconcileMessage(ctx context.Context, messageBody string, attributes map[string]string) error
}

// Orchestrator wires the stages together. Reconcile is optional.
type Orchestrator struct {
	Auth      AuthProvider
	StoreAPI  StoreAPIClient
	Ledger    Ledger
	Delivery  Deliverer
	Reconcile ReconcilePublisher
	Logger    *slog.Logger
	nowFunc   func() time.Time
}

// NewOrchestrator returns an Orchestrator with defaults filled in.
func NewOrchestrator(authProvider AuthProvider, storeAPI StoreAPIClient, ledger Ledger, delivery Deliverer, reconcile ReconcilePublisher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Auth:      authProvider,
		StoreAPI:  storeAPI,
		Ledger:    ledger,
		Delivery:  delivery,
		Reconcile: reconcile,
		Logger:    logger,
		nowFunc:   time.Now,
	}
}

// Process runs one trigger through the pipeline. The trigger must
// already be bound and validated; storeID and the order id are non-empty.
//
// The sent set only grows: names are appended after, and only after, a
// delivery containing them succeeded. A failed append keeps the Success
// outcome (the events reached the endpoint) and is queued for
// reconciliation; at worst the next retry delivers a duplicate.
func (o *Orchestrator) Process(ctx context.Context, storeID string, trig *validation.OrderTrigger) Result {
	orderID := trig.OrderID()
	log := o.Logger.With("store_id", storeID, "order_id", orderID)

	creds, err := o.Auth.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, auth.ErrNoAuth) {
			return Result{Outcome: OutcomeUnauthenticated}
		}
		return failure(fmt.Errorf("get auth: %w", err))
	}

	order, err := o.StoreAPI.FindOrderByID(ctx, storeID, orderID, creds)
	if err != nil {
		return failure(err)
	}
	cfg, err := o.StoreAPI.GetAppConfig(ctx, storeID, creds)
	if err != nil {
		return failure(err)
	}

	if cfg.Ignores(trig.Resource) {
		log.Info("trigger ignored by app configuration", "resource", trig.Resource)
		return Result{Outcome: OutcomeSkipByConfig}
	}

	candidates := events.Derive(order, cfg, orderID)
	if len(candidates) == 0 {
		log.Info("no enabled event for order", "status", order.Status)
		return Result{Outcome: OutcomeDisabled}
	}

	sent, err := o.Ledger.GetSent(ctx, orderID)
	if err != nil {
		return failure(fmt.Errorf("read ledger: %w", err))
	}
	toSend := make([]events.Event, 0, len(candidates))
	for _, ev := range candidates {
		if _, done := sent[ev.Name]; !done {
			toSend = append(toSend, ev)
		}
	}
	if len(toSend) == 0 {
		log.Info("all candidate events already delivered")
		return Result{Outcome: OutcomeAlreadySent}
	}

	clientID := events.ClientID(order, o.nowFunc)
	if err := o.Delivery.Send(ctx, cfg.MeasurementID, cfg.APISecret, clientID, toSend); err != nil {
		return failure(err)
	}

	names := make([]string, 0, len(toSend))
	for _, ev := range toSend {
		names = append(names, ev.Name)
	}
	log.Info("events delivered", "events", names)

	if err := o.Ledger.AppendSent(ctx, orderID, storeID, names); err != nil {
		// delivery already succeeded; keep Success and hand the append
		// to the reconciliation queue
		log.Error("ledger append failed after delivery", "error", err)
		o.queueReconcile(ctx, log, orderID, storeID, names)
	}

	return Result{Outcome: OutcomeSuccess, Delivered: names}
}

func (o *Orchestrator) queueReconcile(ctx context.Context, log *slog.Logger, orderID, storeID string, names []string) {
	if o.Reconcile == nil {
		return
	}
	correlationID := uuid.NewString()
	body, err := json.Marshal(map[string]interface{}{
		"order_id":       orderID,
		"store_id":       storeID,
		"event_names":    names,
		"correlation_id": correlationID,
	})
	if err != nil {
		log.Error("marshal reconcile message", "error", err)
		return
	}
	attrs := map[string]string{
		"order_id":       orderID,
		"store_id":       storeID,
		"correlation_id": correlationID,
	}
	if err := o.Reconcile.SendReconcileMessage(ctx, string(body), attrs); err != nil {
		log.Error("queue reconcile message", "error", err, "correlation_id", correlationID)
	}
}
