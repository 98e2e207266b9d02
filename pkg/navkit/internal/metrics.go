package internal

import (
	"log/slog"

	"github.com/hashicorp/go-metrics"
)

var (
	MetricBridgeTaskSubmitted      = []string{"navkit", "bridge", "task", "submitted", "count"}
	MetricBridgeTaskSucceeded      = []string{"navkit", "bridge", "task", "succeeded", "count"}
	MetricBridgeTaskFailed         = []string{"navkit", "bridge", "task", "failed", "count"}
	MetricBridgeTaskUnhandled      = []string{"navkit", "bridge", "task", "unhandled", "error", "count"}
	MetricBridgeTaskRejected       = []string{"navkit", "bridge", "task", "rejected", "count"}
	MetricBridgeCacheHit           = []string{"navkit", "bridge", "cache", "hit", "count"}
	MetricBridgeCacheMiss          = []string{"navkit", "bridge", "cache", "miss", "count"}
	MetricBridgeCacheEvict         = []string{"navkit", "bridge", "cache", "evict", "count"}
	MetricBridgeDeliveryDropped    = []string{"navkit", "bridge", "delivery", "dropped", "count"}
	MetricBridgeInflight           = []string{"navkit", "bridge", "task", "inflight"}
	MetricRouterNavigation         = []string{"navkit", "router", "navigation", "count"}
	MetricRouterViewCreated        = []string{"navkit", "router", "view", "created", "count"}
	MetricRouterViewDestroyed      = []string{"navkit", "router", "view", "destroyed", "count"}
	MetricRouterNavigationRejected = []string{"navkit", "router", "navigation", "rejected", "count"}
)

type TelemetryLabel string

var (
	LabelError     TelemetryLabel = "error"
	LabelCacheKey  TelemetryLabel = "cache_key"
	LabelRoute     TelemetryLabel = "route"
	LabelFromRoute TelemetryLabel = "from_route"
	LabelOp        TelemetryLabel = "op"
)

func (lab TelemetryLabel) M(val string) metrics.Label {
	return metrics.Label{Name: string(lab), Value: val}
}

func (lab TelemetryLabel) L(val any) slog.Attr {
	return slog.Attr{
		Key:   string(lab),
		Value: slog.AnyValue(val),
	}
}
