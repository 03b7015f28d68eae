package analytics

import (
	"context"
	"time"

	"go-obra/internal/features/report"
)

// Dashboard bundles every analytical view computed over one filtered set
type Dashboard struct {
	Trend             []TrendPoint           `json:"trend"`
	Forecast          []ForecastPoint        `json:"forecast,omitempty"`
	ForecastError     string                 `json:"forecastError,omitempty"`
	Correlations      []Correlation          `json:"correlations"`
	Productividad     []CategoryProductivity `json:"productividad"`
	Categorias        []CategorySummary      `json:"categorias"`
	TopTrabajadores   []WorkerSummary        `json:"topTrabajadores"`
	Actividades       []ActivityRollup       `json:"actividades"`
	Subcontratistas   []ContractorStats      `json:"subcontratistas"`
	HorasPorCategoria []CategoryHours        `json:"horasPorCategoria"`
}

const (
	defaultForecastDays = 14
	defaultTopWorkers   = 10
)

type AnalyticsService interface {
	// DashboardFor computes every analytical view over the full
	// filtered set in one pass through the cache.
	DashboardFor(ctx context.Context, filters report.FilterValues, bucket Bucket, metric TrendMetric) (*Dashboard, error)
	// ReportsFor resolves the full filtered set for the per-dataset
	// endpoints, which run single transforms over it
	ReportsFor(ctx context.Context, filters report.FilterValues) ([]report.ReportDetail, error)
	// ForecastFor projects the selected trend metric
	ForecastFor(ctx context.Context, filters report.FilterValues, bucket Bucket, metric TrendMetric) ([]ForecastPoint, error)
}

type AnalyticsServiceImpl struct {
	ReportService report.ReportService
}

func NewAnalyticsService(reportService report.ReportService) AnalyticsService {
	return &AnalyticsServiceImpl{ReportService: reportService}
}

func (s *AnalyticsServiceImpl) ReportsFor(ctx context.Context, filters report.FilterValues) ([]report.ReportDetail, error) {
	return s.ReportService.FetchAll(ctx, filters)
}

func (s *AnalyticsServiceImpl) ForecastFor(ctx context.Context, filters report.FilterValues, bucket Bucket, metric TrendMetric) ([]ForecastPoint, error) {
	reports, err := s.ReportService.FetchAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	trend := TrendSeries(reports, bucket)
	values := make([]float64, 0, len(trend))
	for _, p := range trend {
		values = append(values, p.Value(metric))
	}
	return Forecast(values, lastReportDate(reports), defaultForecastDays)
}

// lastReportDate is the newest parseable report day, today when none
func lastReportDate(reports []report.ReportDetail) time.Time {
	if len(reports) > 0 {
		if t, err := time.Parse("2006-01-02", reports[0].Fecha); err == nil {
			return t
		}
	}
	return time.Now()
}

func (s *AnalyticsServiceImpl) DashboardFor(ctx context.Context, filters report.FilterValues, bucket Bucket, metric TrendMetric) (*Dashboard, error) {
	reports, err := s.ReportService.FetchAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	trend := TrendSeries(reports, bucket)
	dash := &Dashboard{
		Trend:             trend,
		Correlations:      Correlations(reports),
		Productividad:     ProductivityByCategory(reports),
		Categorias:        CategorySummaries(reports),
		TopTrabajadores:   TopWorkers(reports, defaultTopWorkers),
		Actividades:       ActivityRollups(reports),
		Subcontratistas:   ContractorRanking(reports),
		HorasPorCategoria: HoursDistribution(reports),
	}

	values := make([]float64, 0, len(trend))
	for _, p := range trend {
		values = append(values, p.Value(metric))
	}
	// reports come back date-descending, the newest is first
	forecast, err := Forecast(values, lastReportDate(reports), defaultForecastDays)
	if err != nil {
		dash.ForecastError = err.Error()
	} else {
		dash.Forecast = forecast
	}
	return dash, nil
}
