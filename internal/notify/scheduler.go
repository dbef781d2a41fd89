package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/groundwork/internal/report"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	Spec      string // 5-field cron expression
	Location  *time.Location
	Source    report.Source
	ProjectID int64
	Options   report.Options
	Notifiers []Notifier
	SkipQuiet bool // do not send digests with nothing at risk
}

// Scheduler builds and sends digests on a cron schedule.
type Scheduler struct {
	opts  SchedulerOpts
	sched cron.Schedule
}

// NewScheduler validates opts and returns a Scheduler.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("notify: source is required")
	}
	if len(opts.Notifiers) == 0 {
		return nil, fmt.Errorf("notify: at least one notifier is required")
	}
	sched, err := cronParser.Parse(opts.Spec)
	if err != nil {
		return nil, fmt.Errorf("notify: parse schedule %q: %w", opts.Spec, err)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Scheduler{opts: opts, sched: sched}, nil
}

// Next returns the first fire time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.sched.Next(t.In(s.opts.Location))
}

// Run fires digests until ctx is cancelled. Failed runs are logged and do not
// stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithParser(cronParser), cron.WithLocation(s.opts.Location))
	c.Schedule(s.sched, cron.FuncJob(func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("notify: digest for project %d: %v", s.opts.ProjectID, err)
		}
	}))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// RunOnce builds the current digest and sends it to every notifier. Errors
// from individual notifiers are joined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	p, err := report.Build(ctx, s.opts.Source, s.opts.ProjectID, s.opts.Options)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	d := BuildDigest(p)
	if s.opts.SkipQuiet && d.Quiet() {
		return nil
	}
	return Broadcast(ctx, Format(d), s.opts.Notifiers)
}

// Broadcast sends msg to every notifier and joins their errors.
func Broadcast(ctx context.Context, msg Message, notifiers []Notifier) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify: %s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
