package collab

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// StartAutosave schedules SaveDirty on a cron expression such as "@every 30s".
// The returned scheduler must be stopped by the caller.
func StartAutosave(ctx context.Context, h *Hub, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := h.SaveDirty(ctx); n > 0 {
			slog.Info("autosave", "saved", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("autosave schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
