package session

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule is how often housekeeping runs.
const DefaultSweepSchedule = "@every 5m"

// NewSweeper schedules tasks on a cron spec. The returned scheduler is not
// started; callers Start it and Stop it on shutdown.
func NewSweeper(spec string, tasks ...func()) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultSweepSchedule
	}
	c := cron.New()
	for i, task := range tasks {
		if _, err := c.AddFunc(spec, task); err != nil {
			return nil, fmt.Errorf("scheduling sweep task %d: %w", i+1, err)
		}
	}
	return c, nil
}
