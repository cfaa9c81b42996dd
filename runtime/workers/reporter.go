package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"chat-relay/contract"
	"chat-relay/observability"

	"github.com/shirou/gopsutil/process"
)

// StatsReporter periodically logs registry, room and process metrics so an
// operator tailing the logs can see the relay breathing.
type StatsReporter struct {
	registry contract.IConnectionRegistry
	rooms    contract.IRoomManager
	metrics  *observability.Metrics
	interval time.Duration
	log      *slog.Logger
}

func NewStatsReporter(
	registry contract.IConnectionRegistry,
	rooms contract.IRoomManager,
	metrics *observability.Metrics,
	interval time.Duration,
	log *slog.Logger,
) *StatsReporter {
	return &StatsReporter{
		registry: registry,
		rooms:    rooms,
		metrics:  metrics,
		interval: interval,
		log:      log,
	}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	proc, _ := process.NewProcess(int32(os.Getpid()))

	for {
		select {
		case <-ctx.Done():
			w.report(proc)
			return nil
		case <-ticker.C:
			w.report(proc)
		}
	}
}

func (w *StatsReporter) report(proc *process.Process) {
	counters := w.metrics.Snapshot()
	attrs := []any{
		"identities", w.registry.Identities(),
		"connections", w.registry.Connections(),
		"rooms", w.rooms.Rooms(),
		"routed", counters.MessagesRouted,
		"parked", counters.MessagesParked,
		"goroutines", runtime.NumGoroutine(),
	}
	if proc != nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			attrs = append(attrs, "rssMb", mem.RSS/1024/1024)
		}
	}
	w.log.Info("relay stats", attrs...)
}
