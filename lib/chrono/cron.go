// Package chrono owns the periodic trigger that drives fetch cycles.
// The hosting process decides the schedule and the lifecycle; the
// pipeline itself never schedules anything.
package chrono

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Trigger is the interface the hosting process uses to run work on a
// schedule.
type Trigger interface {
	Schedule(spec string, callback func()) error
	Start()
	Stop() context.Context
}

// CronTrigger implements Trigger using `github.com/robfig/cron/v3`.
type CronTrigger struct {
	cron *cron.Cron
}

func NewCronTrigger() CronTrigger {
	return CronTrigger{
		cron: cron.New(cron.WithLogger(cronLogger{})),
	}
}

func (c CronTrigger) Schedule(spec string, callback func()) error {
	_, err := c.cron.AddFunc(spec, callback)
	return err
}

func (c CronTrigger) Start() {
	c.cron.Start()
}

// Stop halts scheduling; the returned context completes once any
// running job has finished.
func (c CronTrigger) Stop() context.Context {
	return c.cron.Stop()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{"err", err}, keysAndValues...)
	slog.Error("cron: "+msg, args...)
}
