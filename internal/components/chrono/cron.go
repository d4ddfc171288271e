package chrono

import (
	"fmt"
	"iserv-client/internal/components/telemetry"
	"time"

	"github.com/robfig/cron/v3"
)

const report_scheduler = "chrono.scheduler"

// Scheduler runs jobs on cron expressions.
type Scheduler interface {
	Add(expr string, job func()) error
	Stop()
}

type CronScheduler struct {
	runner *cron.Cron
}

// NewCronScheduler starts a scheduler whose expressions are evaluated in
// `location`. Jobs never overlap with a previous run of themselves.
func NewCronScheduler(location *time.Location, tel telemetry.API) CronScheduler {
	log := scheduleLog{tel: tel}
	runner := cron.New(
		cron.WithLogger(log),
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(log)),
	)
	runner.Start()
	return CronScheduler{runner: runner}
}

func (s CronScheduler) Add(expr string, job func()) error {
	_, err := s.runner.AddFunc(expr, job)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", expr, err)
	}
	return nil
}

// Stop waits for running jobs.
func (s CronScheduler) Stop() {
	<-s.runner.Stop().Done()
}

// scheduleLog forwards robfig/cron's logr-style output to telemetry.
type scheduleLog struct {
	tel telemetry.API
}

func pairs(keysAndValues []any) []any {
	out := make([]any, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	return out
}

func (l scheduleLog) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug("scheduler "+msg, pairs(keysAndValues)...)
}

func (l scheduleLog) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(report_scheduler, append([]any{fmt.Errorf("%s: %w", msg, err)}, pairs(keysAndValues)...)...)
}
