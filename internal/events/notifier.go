package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the default notifier.
var Module = fx.Module("events",
	fx.Provide(NewLogNotifier),
)

// Notifier routes an event either to a specific user or to every member of
// a role group. Implementations must not block the caller on delivery.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, event string, payload map[string]any)
	NotifyRole(ctx context.Context, role, event string, payload map[string]any)
}

// LogNotifier is the in-process sink: it stamps each event with a delivery
// id and writes it to the structured log. Real push delivery hangs off the
// same interface.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) Notifier {
	return &LogNotifier{log: log.Named("events.notifier")}
}

func (n *LogNotifier) NotifyUser(ctx context.Context, userID, event string, payload map[string]any) {
	n.log.Info("notify user",
		zap.String("delivery_id", uuid.NewString()),
		zap.String("user_id", userID),
		zap.String("event", event),
		zap.Any("payload", payload),
	)
}

func (n *LogNotifier) NotifyRole(ctx context.Context, role, event string, payload map[string]any) {
	n.log.Info("notify role",
		zap.String("delivery_id", uuid.NewString()),
		zap.String("role", role),
		zap.String("event", event),
		zap.Any("payload", payload),
	)
}
