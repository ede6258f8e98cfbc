// Package schedule runs housekeeping jobs on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

type Job struct {
	Name string
	Run  func()
}

// Cron fires its jobs every time Expr ticks in Location.
type Cron struct {
	Expr     string
	Location *time.Location
	Jobs     []Job
	Log      *slog.Logger

	now func() time.Time
}

func New(expr string, loc *time.Location, log *slog.Logger, jobs ...Job) (*Cron, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("invalid cron expression %q", expr)
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cron{Expr: expr, Location: loc, Jobs: jobs, Log: log, now: time.Now}, nil
}

// Next returns the first tick strictly after t.
func (c *Cron) Next(t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(c.Expr, t.In(c.Location).Truncate(time.Second), false)
}

// Run blocks until ctx is cancelled.
func (c *Cron) Run(ctx context.Context) {
	for {
		now := c.now()
		next, err := c.Next(now)
		if err != nil {
			c.Log.Error("cron: cannot compute next tick", "expr", c.Expr, "error", err)
			return
		}
		c.Log.Debug("cron: next run", "at", next)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		c.RunJobs()
	}
}

// RunJobs runs every job once; a panicking job does not stop the others.
func (c *Cron) RunJobs() {
	for _, j := range c.Jobs {
		c.runJob(j)
	}
}

func (c *Cron) runJob(j Job) {
	defer func() {
		if r := recover(); r != nil {
			c.Log.Error("cron: job panicked", "job", j.Name, "panic", r)
		}
	}()
	start := c.now()
	j.Run()
	c.Log.Info("cron: job done", "job", j.Name, "took", c.now().Sub(start))
}
