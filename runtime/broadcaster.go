package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"team-hub/domain/event"
	"team-hub/observability"
)

// Broadcaster fans an event out to every current subscriber of a channel.
//
// Delivery is best-effort: a sink that fails to accept the event is skipped
// silently, since cleanup of dead connections is the disconnect handler's
// responsibility, not the broadcaster's. Delivery order follows the
// enumeration order of the subscriber set for a single call; no ordering is
// guaranteed across channels.
type Broadcaster struct {
	log        *slog.Logger
	registry   *Registry
	monitoring *observability.MonitoringManager
}

func NewBroadcaster(log *slog.Logger, registry *Registry, monitoring *observability.MonitoringManager) *Broadcaster {
	return &Broadcaster{log: log, registry: registry, monitoring: monitoring}
}

// BroadcastToChannel delivers e to every subscriber of the channel whose
// connection is currently registered. excludeID suppresses the echo of a
// presence event back to the acting identity; pass "" to deliver to everyone,
// sender included.
func (b *Broadcaster) BroadcastToChannel(ctx context.Context, channelID string, e event.ServerEvent, excludeID string) {
	sinks := b.registry.SinksForChannel(channelID, excludeID)
	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			b.monitoring.IncrEventsDropped()
			b.log.Debug(fmt.Sprintf("Dropped %s event for channel %s", e.EventType(), channelID), "error", err)
			continue
		}
		b.monitoring.IncrEventsDelivered()
	}
}

// SendTo delivers an event to a single identity's registered connection.
// Unknown identities are skipped silently.
func (b *Broadcaster) SendTo(ctx context.Context, identityID string, e event.ServerEvent) {
	sink, ok := b.registry.Lookup(identityID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, e); err != nil {
		b.monitoring.IncrEventsDropped()
		b.log.Debug(fmt.Sprintf("Dropped %s event for identity %s", e.EventType(), identityID), "error", err)
		return
	}
	b.monitoring.IncrEventsDelivered()
}
