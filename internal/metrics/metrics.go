// Package metrics exposes the ledger's business counters on the OpenTelemetry
// meter. All methods are nil-safe so callers can run without metrics wired.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

// Metrics holds the ledger's instruments
type Metrics struct {
	purchases      *telemetry.Counter
	purchaseErrors *telemetry.Counter
	resales        *telemetry.Counter
	feesCollected  *telemetry.Counter
	settleLatency  *telemetry.Histogram
}

// New creates the ledger instruments on the global meter
func New() (*Metrics, error) {
	purchases, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger.purchases",
		Description: "Settled primary purchases",
	})
	if err != nil {
		return nil, err
	}
	purchaseErrors, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger.purchase_errors",
		Description: "Failed purchase attempts",
	})
	if err != nil {
		return nil, err
	}
	resales, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger.resales",
		Description: "Settled marketplace sales",
	})
	if err != nil {
		return nil, err
	}
	feesCollected, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger.fees_collected",
		Description: "Platform fees collected in minor units",
	})
	if err != nil {
		return nil, err
	}
	settleLatency, err := telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "ledger.settlement_latency",
		Description: "Settlement round-trip time",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	return &Metrics{
		purchases:      purchases,
		purchaseErrors: purchaseErrors,
		resales:        resales,
		feesCollected:  feesCollected,
		settleLatency:  settleLatency,
	}, nil
}

// RecordPurchase counts a settled primary purchase and its fee
func (m *Metrics) RecordPurchase(ctx context.Context, tier string, fee int64) {
	if m == nil {
		return
	}
	m.purchases.Inc(ctx, attribute.String("tier", tier))
	m.feesCollected.Add(ctx, fee)
}

// RecordPurchaseError counts a failed purchase attempt
func (m *Metrics) RecordPurchaseError(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.purchaseErrors.Inc(ctx, attribute.String("reason", reason))
}

// RecordResale counts a settled marketplace sale and its fee
func (m *Metrics) RecordResale(ctx context.Context, fee int64) {
	if m == nil {
		return
	}
	m.resales.Inc(ctx)
	m.feesCollected.Add(ctx, fee)
}

// RecordSettlementLatency records a settlement round-trip
func (m *Metrics) RecordSettlementLatency(ctx context.Context, seconds float64, provider string) {
	if m == nil {
		return
	}
	m.settleLatency.Record(ctx, seconds, attribute.String("provider", provider))
}
