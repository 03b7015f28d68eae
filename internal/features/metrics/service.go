package metrics

import (
	"context"

	"go-obra/internal/features/report"
)

type MetricsService interface {
	// MetricsFor computes the KPI snapshot over the FULL filtered set
	// (an unpaged scan), so the numbers do not shrink to one page.
	MetricsFor(ctx context.Context, filters report.FilterValues) (KPIMetrics, error)
}

type MetricsServiceImpl struct {
	ReportService report.ReportService
}

func NewMetricsService(reportService report.ReportService) MetricsService {
	return &MetricsServiceImpl{ReportService: reportService}
}

func (s *MetricsServiceImpl) MetricsFor(ctx context.Context, filters report.FilterValues) (KPIMetrics, error) {
	reports, err := s.ReportService.FetchAll(ctx, filters)
	if err != nil {
		return KPIMetrics{}, err
	}
	return Compute(reports), nil
}
