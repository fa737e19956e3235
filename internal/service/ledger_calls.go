package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"
	"escrow-settlement/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// observeLedger wraps one processor call with a span, a latency histogram and a counter.
func observeLedger(ctx context.Context, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := tracing.StartSpan(ctx, "ledger."+op, attrs...)
	start := time.Now()
	err := fn(ctx)
	metrics.LedgerCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.LedgerCallsTotal.WithLabelValues(op, result).Inc()
	tracing.End(span, err)
	return err
}

// Processor statuses that mean the money is moving.
func refundAccepted(status string) bool {
	switch status {
	case "succeeded", "pending":
		return true
	}
	return false
}

func payoutAccepted(status string) bool {
	switch status {
	case "paid", "pending", "in_transit":
		return true
	}
	return false
}

// rejectedStatus is the error for a refund or payout that came back in a state
// other than accepted. Failed and canceled are final; anything else is unknown.
func rejectedStatus(kind, id, status string) error {
	switch status {
	case "failed", "canceled":
		return fmt.Errorf("%w: %s %s ended with status %q", ports.ErrLedgerDeclined, kind, id, status)
	}
	return fmt.Errorf("%s %s ended with status %q", kind, id, status)
}

// declined reports whether err is a definite processor rejection.
func declined(err error) bool {
	return errors.Is(err, ports.ErrLedgerDeclined)
}
