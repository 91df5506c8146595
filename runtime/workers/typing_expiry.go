package workers

import (
	"context"
	"log/slog"
	"time"

	"team-hub/domain"
	"team-hub/runtime"
)

// ExpireFunc broadcasts a synthesized user_stopped_typing for a state the
// sweep found past its deadline.
type ExpireFunc func(ctx context.Context, state domain.TypingState)

// TypingExpiryWorker bounds the worst-case lifetime of a stale "is typing"
// indicator. Clients normally clear their own state with stop_typing; this
// sweep covers the ones that never do.
type TypingExpiryWorker struct {
	log      *slog.Logger
	tracker  *runtime.TypingTracker
	interval time.Duration
	expire   ExpireFunc
}

func NewTypingExpiryWorker(log *slog.Logger, tracker *runtime.TypingTracker,
	interval time.Duration, expire ExpireFunc) *TypingExpiryWorker {
	return &TypingExpiryWorker{log: log, tracker: tracker, interval: interval, expire: expire}
}

func (w *TypingExpiryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping typing expiry sweep")
			return nil
		case <-ticker.C:
			for _, state := range w.tracker.Expired(time.Now()) {
				w.log.Debug("Typing state expired",
					"channel_id", state.ChannelID,
					"identity_id", state.IdentityID)
				w.expire(ctx, state)
			}
		}
	}
}
