package observability

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// MonitoringStats is a point-in-time snapshot of the gateway's counters.
type MonitoringStats struct {
	ActiveConnections int64  `json:"active_connections"`
	ConnectionsOpened uint64 `json:"connections_opened"`
	ConnectionsClosed uint64 `json:"connections_closed"`
	FramesReceived    uint64 `json:"frames_received"`
	EventsDelivered   uint64 `json:"events_delivered"`
	EventsDropped     uint64 `json:"events_dropped"`
	ErrorCount        uint64 `json:"error_count"`
	AllocMemMb        uint64 `json:"alloc_mem_mb"`
	NumGC             uint32 `json:"num_gc"`
	At                string `json:"at"`
}

// MonitoringManager aggregates real-time telemetry for the messaging
// subsystem. All counters are atomic; Snapshot is safe from any goroutine.
type MonitoringManager struct {
	log *slog.Logger

	connectionsOpened uint64
	connectionsClosed uint64
	framesReceived    uint64
	eventsDelivered   uint64
	eventsDropped     uint64
	errorCount        uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrConnectionsOpened() {
	atomic.AddUint64(&mm.connectionsOpened, 1)
}

func (mm *MonitoringManager) IncrConnectionsClosed() {
	atomic.AddUint64(&mm.connectionsClosed, 1)
}

func (mm *MonitoringManager) IncrFramesReceived() {
	atomic.AddUint64(&mm.framesReceived, 1)
}

func (mm *MonitoringManager) IncrEventsDelivered() {
	atomic.AddUint64(&mm.eventsDelivered, 1)
}

func (mm *MonitoringManager) IncrEventsDropped() {
	atomic.AddUint64(&mm.eventsDropped, 1)
}

func (mm *MonitoringManager) IncrErrorCount() {
	atomic.AddUint64(&mm.errorCount, 1)
}

// Snapshot captures the counters together with process memory stats.
func (mm *MonitoringManager) Snapshot() MonitoringStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	opened := atomic.LoadUint64(&mm.connectionsOpened)
	closed := atomic.LoadUint64(&mm.connectionsClosed)

	return MonitoringStats{
		ActiveConnections: int64(opened) - int64(closed),
		ConnectionsOpened: opened,
		ConnectionsClosed: closed,
		FramesReceived:    atomic.LoadUint64(&mm.framesReceived),
		EventsDelivered:   atomic.LoadUint64(&mm.eventsDelivered),
		EventsDropped:     atomic.LoadUint64(&mm.eventsDropped),
		ErrorCount:        atomic.LoadUint64(&mm.errorCount),
		AllocMemMb:        memStats.Alloc / 1024 / 1024,
		NumGC:             memStats.NumGC,
		At:                time.Now().UTC().Format(time.RFC3339),
	}
}
