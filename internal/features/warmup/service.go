package warmup

import (
	"context"
	"fmt"
	"time"

	"go-obra/internal/config"
	"go-obra/internal/features/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// warmTimeout bounds one warming pass
const warmTimeout = 2 * time.Minute

// WarmupService pre-populates the cache for the default filter window
// on a schedule, so the first dashboard load of the day hits warm data.
type WarmupService struct {
	ReportService report.ReportService
	Log           *zap.Logger

	schedule    string
	defaultDays int
	scheduler   *cron.Cron
}

func NewWarmupService(lc fx.Lifecycle, reportService report.ReportService, cfg *config.Config, log *zap.Logger) *WarmupService {
	s := &WarmupService{
		ReportService: reportService,
		Log:           log,
		schedule:      cfg.WarmupSchedule,
		defaultDays:   cfg.DefaultDays,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
	return s
}

// Start registers the warming job and launches the scheduler.
// A bad schedule expression is a startup error, not a silent no-op.
func (s *WarmupService) Start() error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.schedule, s.warm); err != nil {
		return fmt.Errorf("invalid warmup schedule %q: %w", s.schedule, err)
	}
	s.scheduler.Start()
	s.Log.Info("cache warmup scheduled", zap.String("schedule", s.schedule))

	// one pass right away so restarts do not serve cold caches
	go s.warm()
	return nil
}

func (s *WarmupService) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *WarmupService) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	filters := report.FilterValues{Period: fmt.Sprintf("%d", s.defaultDays)}
	start := time.Now()

	if _, err := s.ReportService.FetchReports(ctx, filters, nil, false); err != nil {
		s.Log.Warn("cache warmup page fetch failed", zap.Error(err))
		return
	}
	if _, err := s.ReportService.FetchAll(ctx, filters); err != nil {
		s.Log.Warn("cache warmup full scan failed", zap.Error(err))
		return
	}

	s.Log.Info("cache warmup completed",
		zap.Int("days", s.defaultDays),
		zap.Duration("took", time.Since(start)))
}
