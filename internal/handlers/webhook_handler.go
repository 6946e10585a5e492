package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecomplus/app-google-analytics/internal/auth"
	internalaws "github.com/ecomplus/app-google-analytics/internal/aws"
	"github.com/ecomplus/app-google-analytics/internal/ledger"
	"github.com/ecomplus/app-google-analytics/internal/measurement"
	"github.com/ecomplus/app-google-analytics/internal/pipeline"
	"github.com/ecomplus/app-google-analytics/internal/storeapi"
	"github.com/ecomplus/app-google-analytics/internal/validation"
)

// Echo tokens returned to the trigger sender, kept stable for the Store
// API webhook contract.
const (
	echoSuccess  = "SUCCESS"
	echoSkip     = "SKIP"
	echoAPIError = "STORE_API_ERR"
)

// triggerResourceOrders is the only resource this webhook handles.
const triggerResourceOrders = "orders"

// HandlerConfig groups dependencies for the webhook routes.
type HandlerConfig struct {
	DynamoDBClient     internalaws.DynamoDBAPI
	SQSClient          internalaws.SQSAPI
	CloudWatchClient   internalaws.CloudWatchAPI
	LedgerTable        string
	AuthTable          string
	ReconcileQueueURL  string
	StoreAPIBaseURL    string
	MeasurementBaseURL string
	MetricsNamespace   string
	HTTPClient         storeapi.HTTPDoer // shared by both outbound clients; nil uses defaults
	LedgerTTL          time.Duration
	Logger             *slog.Logger
}

// RegisterWebhookRoutes registers the trigger webhook and the app-install
// callback.
func RegisterWebhookRoutes(r *gin.Engine, cfg HandlerConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v := validation.New()
	authStore := auth.NewStore(cfg.DynamoDBClient, cfg.AuthTable)
	ledgerStore := ledger.NewStore(cfg.DynamoDBClient, cfg.LedgerTable, cfg.LedgerTTL)
	storeAPI := storeapi.NewClient(cfg.StoreAPIBaseURL, cfg.HTTPClient)
	deliverer := measurement.NewClient(cfg.MeasurementBaseURL, cfg.HTTPClient)
	metrics := internalaws.NewMetricsPublisher(cfg.CloudWatchClient, cfg.MetricsNamespace)

	var reconcile pipeline.ReconcilePublisher
	if cfg.SQSClient != nil && cfg.ReconcileQueueURL != "" {
		reconcile = internalaws.NewPublisher(cfg.SQSClient, cfg.ReconcileQueueURL)
	}

	orch := pipeline.NewOrchestrator(authStore, storeAPI, ledgerStore, deliverer, reconcile, logger)

	r.POST("/ecom/webhook", func(c *gin.Context) {
		ctx := c.Request.Context()

		storeID := c.GetHeader("X-Store-ID")
		if storeID == "" {
			c.String(http.StatusPreconditionFailed, "missing X-Store-ID header")
			return
		}

		var trig validation.OrderTrigger
		if err := validation.BindAndValidate(c, &trig, v, http.StatusPreconditionFailed); err != nil {
			// BindAndValidate already wrote a 412
			return
		}
		if trig.Resource != triggerResourceOrders {
			c.Status(http.StatusPreconditionFailed)
			return
		}

		res := orch.Process(ctx, storeID, &trig)

		// best-effort counter per outcome
		if err := metrics.RecordOutcome(ctx, res.Outcome.String()); err != nil {
			logger.Warn("record outcome metric", "error", err)
		}

		switch res.Outcome {
		case pipeline.OutcomeSuccess:
			c.String(http.StatusOK, echoSuccess)
		case pipeline.OutcomeSkipByConfig, pipeline.OutcomeAlreadySent:
			c.String(http.StatusOK, echoSkip)
		case pipeline.OutcomeDisabled:
			c.String(http.StatusBadRequest, echoSkip)
		case pipeline.OutcomeUnauthenticated:
			msg := fmt.Sprintf("Webhook for %s unhandled with no authentication found", storeID)
			logger.Error(msg, "store_id", storeID, "resource", trig.Resource, "order_id", trig.OrderID())
			c.String(http.StatusPreconditionFailed, msg)
		default:
			logger.Error("webhook pipeline failed", "store_id", storeID, "order_id", trig.OrderID(), "error", res.Err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   echoAPIError,
				"message": res.Err.Error(),
			})
		}
	})

	r.POST("/ecom/auth-callback", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.AuthCallbackRequest
		if err := validation.BindAndValidate(c, &req, v, http.StatusBadRequest); err != nil {
			return
		}

		creds := auth.Credentials{
			StoreID:          req.StoreID,
			AuthenticationID: req.AuthenticationID,
			APIKey:           req.APIKey,
			ApplicationID:    req.ApplicationID,
		}
		if err := authStore.Put(ctx, creds); err != nil {
			logger.Error("store credentials", "store_id", req.StoreID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "credentials_save_failed"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
