package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/config"
)

// Scheduler drives the dispatch service on a fixed interval.
type Scheduler struct {
	config   *config.SchedulerConfig
	logger   *zap.Logger
	dispatch *DispatchService
	ticker   *time.Ticker
	stopCh   chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, dispatch *DispatchService) *Scheduler {
	return &Scheduler{
		config:   cfg,
		logger:   logger,
		dispatch: dispatch,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.DispatchInterval)
	if err != nil {
		s.logger.Error("Invalid dispatch interval", zap.String("interval", s.config.DispatchInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("dispatch_interval", s.config.DispatchInterval))

	s.ticker = time.NewTicker(interval)

	// Run first dispatch immediately
	go func() {
		s.logger.Info("Running initial dispatch")
		if err := s.runDispatch(ctx); err != nil {
			s.logger.Error("Initial dispatch failed", zap.Error(err))
		}
	}()

	// Start periodic dispatch
	go func() {
		for {
			select {
			case <-s.ticker.C:
				if err := s.runDispatch(ctx); err != nil {
					s.logger.Error("Scheduled dispatch failed", zap.Error(err))
				}
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runDispatch(ctx context.Context) error {
	start := time.Now()
	err := s.dispatch.DispatchDue(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Dispatch failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return err
	}

	s.logger.Debug("Dispatch completed",
		zap.Duration("duration", duration))
	return nil
}
