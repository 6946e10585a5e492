package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/ecomplus/app-google-analytics/internal/aws"
	"github.com/ecomplus/app-google-analytics/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterWebhookRoutes(r, cfg)

	return r
}

// ledgerTTL reads LEDGER_TTL_HOURS; 0 keeps records forever.
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

	cfg := handlers.HandlerConfig{
		DynamoDBClient:     clients.DynamoDB,
		SQSClient:          clients.SQS,
		CloudWatchClient:   clients.CloudWatch,
		LedgerTable:        os.Getenv("LEDGER_TABLE"),
		AuthTable:          os.Getenv("AUTH_TABLE"),
		ReconcileQueueURL:  os.Getenv("RECONCILE_QUEUE_URL"),
		StoreAPIBaseURL:    os.Getenv("STORE_API_BASE_URL"),
		MeasurementBaseURL: os.Getenv("GA_BASE_URL"),
		MetricsNamespace:   os.Getenv("METRICS_NAMESPACE"),
		LedgerTTL:          ledgerTTL(),
		Logger:             logger,
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
