package terminal

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	sales      metric.Int64Counter
	saleTotal  metric.Float64Histogram
	held       metric.Int64UpDownCounter
	scanMisses metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var (
		m   metrics
		err error
	)
	if m.sales, err = meter.Int64Counter("pos.sales",
		metric.WithDescription("Completed sales by payment method"),
	); err != nil {
		return nil, errors.Wrap(err, "pos.sales")
	}
	if m.saleTotal, err = meter.Float64Histogram("pos.sale.total",
		metric.WithDescription("Sale totals"),
	); err != nil {
		return nil, errors.Wrap(err, "pos.sale.total")
	}
	if m.held, err = meter.Int64UpDownCounter("pos.held",
		metric.WithDescription("Tickets currently on hold"),
	); err != nil {
		return nil, errors.Wrap(err, "pos.held")
	}
	if m.scanMisses, err = meter.Int64Counter("pos.scan.misses",
		metric.WithDescription("Scanned codes not found in the catalog"),
	); err != nil {
		return nil, errors.Wrap(err, "pos.scan.misses")
	}
	return &m, nil
}
