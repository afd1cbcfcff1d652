package reports

import (
	"context"
	"fmt"

	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/dvloznov/spending-reports/internal/jobs"
	"github.com/dvloznov/spending-reports/internal/logger"
)

// NewWeekdayJobHandler returns a queue handler that loads the table from
// source, computes the weekday report and saves it. The saved location is
// recorded on the job.
func NewWeekdayJobHandler(svc *Service, source domain.TableSource) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		j, ok := job.(*jobs.WeekdayReportJob)
		if !ok {
			return fmt.Errorf("weekday job handler: unexpected job type %s", job.GetType())
		}

		log := logger.FromContext(ctx).With().Str("job_id", j.JobID).Logger()
		log.Info().Str("end_date", j.EndDate).Msg("Processing weekday report job")

		table, err := source.LoadTable(ctx)
		if err != nil {
			return fmt.Errorf("weekday job handler: loading table: %w", err)
		}

		report, err := svc.WeekdaySpendingOn(ctx, table, j.EndDate)
		if err != nil {
			return fmt.Errorf("weekday job handler: %w", err)
		}

		location, err := svc.SaveWeekdayReport(ctx, report, j.ReportName)
		if err != nil {
			return fmt.Errorf("weekday job handler: %w", err)
		}
		j.ReportLocation = location
		return nil
	}
}
