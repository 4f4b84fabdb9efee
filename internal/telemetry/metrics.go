package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the meter name for poll cycle metrics
	SyncMetricsMeterName = "github.com/stacklok/listonic-sync/sync"

	// RemoteMetricsMeterName is the meter name for Listonic API call metrics
	RemoteMetricsMeterName = "github.com/stacklok/listonic-sync/remote"
)

// Outcome labels recorded for remote calls
const (
	OutcomeSuccess   = "success"
	OutcomeAuth      = "auth_error"
	OutcomeTransient = "transient_error"
	OutcomeRequest   = "request_error"
)

// SyncMetrics holds the instruments describing poll cycles and the cached data
type SyncMetrics struct {
	syncDuration metric.Float64Histogram
	listsTotal   metric.Int64Gauge
	itemsTotal   metric.Int64Gauge
}

// NewSyncMetrics creates the poll cycle instruments.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"listonic_sync_poll_duration_seconds",
		metric.WithDescription("Duration of poll cycles in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	listsTotal, err := meter.Int64Gauge(
		"listonic_sync_lists_total",
		metric.WithDescription("Number of shopping lists cached per account"),
		metric.WithUnit("{list}"),
	)
	if err != nil {
		return nil, err
	}

	itemsTotal, err := meter.Int64Gauge(
		"listonic_sync_items_total",
		metric.WithDescription("Number of items cached per account"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration: syncDuration,
		listsTotal:   listsTotal,
		itemsTotal:   itemsTotal,
	}, nil
}

// RecordSyncDuration records the duration of a poll cycle for an account
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, account string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("account", account),
		attribute.Bool("success", success),
	))
}

// RecordCounts records the number of cached lists and items for an account
func (m *SyncMetrics) RecordCounts(ctx context.Context, account string, lists, items int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("account", account))
	m.listsTotal.Record(ctx, int64(lists), attrs)
	m.itemsTotal.Record(ctx, int64(items), attrs)
}

// RemoteMetrics counts calls to the Listonic API
type RemoteMetrics struct {
	requestsTotal metric.Int64Counter
	retriesTotal  metric.Int64Counter
}

// NewRemoteMetrics creates the remote call instruments.
// If provider is nil, it returns nil (no-op metrics).
func NewRemoteMetrics(provider metric.MeterProvider) (*RemoteMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(RemoteMetricsMeterName)

	requestsTotal, err := meter.Int64Counter(
		"listonic_sync_remote_requests_total",
		metric.WithDescription("Listonic API operations by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	retriesTotal, err := meter.Int64Counter(
		"listonic_sync_remote_auth_retries_total",
		metric.WithDescription("Requests retried after a 401 and a forced token refresh"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &RemoteMetrics{
		requestsTotal: requestsTotal,
		retriesTotal:  retriesTotal,
	}, nil
}

// RecordRequest counts one remote operation
func (m *RemoteMetrics) RecordRequest(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}

	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordAuthRetry counts one retry after a forced token refresh
func (m *RemoteMetrics) RecordAuthRetry(ctx context.Context, operation string) {
	if m == nil {
		return
	}

	m.retriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
