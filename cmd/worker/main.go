package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/ecomplus/app-google-analytics/internal/aws"
)

func ledgerTTL() time.Duration {
	v := os.Getenv("LEDGER_TTL_HOURS")
	if v == "" {
		return 0
	}
	hours, err := strconv.Atoi(v)
	if err != nil || hours < 0 {
		log.Fatalf("invalid LEDGER_TTL_HOURS: %q", v)
	}
	return time.Duration(hours) * time.Hour
}

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	p := NewProcessor(clients.DynamoDB, os.Getenv("LEDGER_TABLE"), ledgerTTL(), logger)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1","store_id":"51","event_names":["purchase_paid"]}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{
					Body: testBody,
				},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
