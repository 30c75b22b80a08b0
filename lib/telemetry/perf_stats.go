package telemetry

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("journal-backend/perf_stats")

// InstrumentPerfStats registers process gauges that are read whenever the
// meter provider collects. Unregister the result to stop reporting them.
func InstrumentPerfStats() (metric.Registration, error) {
	cpuGauge, err := meter.Float64ObservableGauge("cpu_usage", metric.WithUnit("%"))
	if err != nil {
		return nil, err
	}
	memoryGauge, err := meter.Int64ObservableGauge("allocated_mb", metric.WithUnit("MBy"))
	if err != nil {
		return nil, err
	}
	goroutineGauge, err := meter.Int64ObservableGauge("goroutine_count")
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		o.ObserveInt64(memoryGauge, int64(memStats.Alloc/1_000_000))
		o.ObserveInt64(goroutineGauge, int64(runtime.NumGoroutine()))

		// usage since the previous collection
		usage, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil || len(usage) == 0 {
			slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
			return nil
		}
		o.ObserveFloat64(cpuGauge, usage[0])
		return nil
	}, cpuGauge, memoryGauge, goroutineGauge)
}
