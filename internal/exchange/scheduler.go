package exchange

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshTimeout = 30 * time.Second

// Scheduler keeps a RateTable fresh on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	table  *RateTable
	logger *zap.Logger
}

func NewScheduler(table *RateTable, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		table:  table,
		logger: logger,
	}
}

// Start registers the refresh job with schedule ("@every 10m", "*/5 * * * *")
// and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return err
	}
	s.logger.Info("Starting exchange rate scheduler", zap.String("schedule", schedule))
	s.cron.Start()
	return nil
}

// Stop waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.logger.Debug("Running: exchange rate refresh")
	if err := s.table.Refresh(ctx); err != nil {
		s.logger.Error("exchange rate refresh failed", zap.Error(err))
	}
}
