package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TriggerSchedule marks jobs published by the cron schedule.
const TriggerSchedule = "schedule"

// NewSchedule returns a stopped cron scheduler that publishes a weekday
// report job on every tick of spec. Scheduled jobs cover the window ending
// at the latest operation.
func NewSchedule(spec string, publisher Publisher, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		job := &WeekdayReportJob{Trigger: TriggerSchedule}
		if err := publisher.PublishWeekdayReport(ctx, job); err != nil {
			log.Error().Err(err).Msg("Failed to publish scheduled weekday report")
			return
		}
		log.Info().Str("job_id", job.JobID).Msg("Scheduled weekday report published")
	})
	if err != nil {
		return nil, fmt.Errorf("NewSchedule: parsing %q: %w", spec, err)
	}
	return c, nil
}
