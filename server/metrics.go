package server

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/blockberries/themis/server"

// Phase and outcome labels of the invocation counter.
const (
	phasePrepare = "prepare"
	phaseExecute = "execute"

	outcomeOK      = "ok"
	outcomeAborted = "aborted"
)

// metrics records invocation counts through the global meter provider.
// Without an installed provider the instruments are no-ops.
type metrics struct {
	invocations metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter(meterName)

	invocations, err := meter.Int64Counter(
		"themis.invocations",
		metric.WithDescription("Script phases run, by script, phase and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create themis.invocations counter: %w", err)
	}
	return &metrics{invocations: invocations}, nil
}

func (m *metrics) record(ctx context.Context, script, phase, outcome string) {
	m.invocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("script", script),
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}
