package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsPublisher records per-outcome webhook counters in CloudWatch.
// Publication is best-effort; callers are expected to log and ignore errors.
type MetricsPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetricsPublisher returns a publisher bound to a metric namespace.
func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CloudWatch: cw,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// RecordOutcome increments the WebhookRequests counter for one outcome
// (e.g. "success", "skip_by_config", "downstream_failure").
func (m *MetricsPublisher) RecordOutcome(ctx context.Context, outcome string) error {
	if m == nil || m.CloudWatch == nil || m.Namespace == "" {
		return nil
	}
	now := m.nowFunc()
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("WebhookRequests"),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      awsFloat64(1),
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Outcome"), Value: &outcome},
				},
			},
		},
	}
	if _, err := m.CloudWatch.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// awsFloat64 helper
func awsFloat64(f float64) *float64 { return &f }
