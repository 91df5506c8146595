package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"team-hub/observability"
)

// HeartbeatWorker periodically logs process health (CPU, RAM, status)
// together with the gateway's live counters.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting gateway heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.Snapshot()
			w.log.Info("Gateway heartbeat",
				"pid", os.Getpid(),
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"active_connections", stats.ActiveConnections,
				"frames_received", stats.FramesReceived,
				"events_delivered", stats.EventsDelivered,
				"events_dropped", stats.EventsDropped,
				"errors", stats.ErrorCount)
		}
	}
}

// getSelfStats retrieves technical metrics (memory, CPU, and OS status) for
// the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
