package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/smithy-go"

	"github.com/ecomplus/app-google-analytics/internal/aws"
	"github.com/ecomplus/app-google-analytics/internal/ledger"
)

// Processor retries dedup-ledger appends queued by the API after a
// delivery succeeded but the original append failed. AppendSent is an
// ADD-merge, so replaying a message is harmless.
type Processor struct {
	ledgerStore *ledger.Store
	logger      *slog.Logger
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(dynamo aws.DynamoDBAPI, ledgerTable string, ledgerTTL time.Duration, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		ledgerStore: ledger.NewStore(dynamo, ledgerTable, ledgerTTL),
		logger:      logger,
	}
}

// Handle receives an SQS batch event and processes each message.
// A returned error makes the Lambda runtime redrive the batch; messages
// that keep failing end up in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	p.logger.Info("received reconcile batch", "messages", len(ev.Records))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("worker error", "message_id", rec.MessageId, "error", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg ReconcileMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		// malformed body will never succeed; swallow instead of redriving
		p.logger.Error("dropping malformed reconcile message", "body", rec.Body, "error", err)
		return nil
	}
	if msg.OrderID == "" || len(msg.EventNames) == 0 {
		p.logger.Error("dropping incomplete reconcile message", "body", rec.Body)
		return nil
	}

	log := p.logger.With("order_id", msg.OrderID, "store_id", msg.StoreID, "correlation_id", msg.CorrelationID)

	if err := p.ledgerStore.AppendSent(ctx, msg.OrderID, msg.StoreID, msg.EventNames); err != nil {
		// client-side validation errors won't heal on retry; drop them
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultClient {
			log.Error("dropping non-retryable append", "code", apiErr.ErrorCode(), "error", err)
			return nil
		}
		return fmt.Errorf("append sent for order %s: %w", msg.OrderID, err)
	}

	log.Info("ledger reconciled", "events", msg.EventNames)
	return nil
}
