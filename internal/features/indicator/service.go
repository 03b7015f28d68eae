package indicator

import (
	"context"
	"fmt"

	"go-obra/internal/features/metrics"
	"go-obra/internal/features/report"

	"github.com/d5/tengo/v2"
)

// ErrBadExpression marks evaluation failures caused by the expression
// itself, as opposed to data access problems
type ErrBadExpression struct {
	Expr   string
	Reason error
}

func (e *ErrBadExpression) Error() string {
	return fmt.Sprintf("expresión inválida %q: %v", e.Expr, e.Reason)
}

func (e *ErrBadExpression) Unwrap() error { return e.Reason }

type IndicatorService interface {
	Create(ctx context.Context, ind *Indicator) error
	Get(ctx context.Context, id string) (*Indicator, error)
	List(ctx context.Context) ([]Indicator, error)
	Update(ctx context.Context, ind *Indicator) error
	Delete(ctx context.Context, id string) error

	// EvaluateAll computes every saved indicator against the KPI
	// snapshot of the given filter window
	EvaluateAll(ctx context.Context, filters report.FilterValues) ([]Evaluation, error)
	// EvaluateByID computes one saved indicator
	EvaluateByID(ctx context.Context, id string, filters report.FilterValues) (*Evaluation, error)
	// Evaluate runs one expression against the snapshot without saving it
	Evaluate(ctx context.Context, expr string, filters report.FilterValues) (float64, error)
}

type IndicatorServiceImpl struct {
	Repo           IndicatorRepository
	MetricsService metrics.MetricsService
}

func NewIndicatorService(repo IndicatorRepository, metricsService metrics.MetricsService) IndicatorService {
	return &IndicatorServiceImpl{
		Repo:           repo,
		MetricsService: metricsService,
	}
}

// sampleSnapshot validates new expressions without tripping on
// division by zero
var sampleSnapshot = metrics.KPIMetrics{
	TotalReportes:          1,
	TotalActividades:       1,
	TotalTrabajadores:      1,
	AvancePromedio:         1,
	CostoTotal:             1,
	CostoManoObra:          1,
	CostoPromedioPorUnidad: 1,
	IndiceEficiencia:       1,
}

func (s *IndicatorServiceImpl) Create(ctx context.Context, ind *Indicator) error {
	if _, err := evalExpression(ctx, ind.Expresion, sampleSnapshot); err != nil {
		return err
	}
	return s.Repo.Create(ctx, ind)
}

func (s *IndicatorServiceImpl) Get(ctx context.Context, id string) (*Indicator, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *IndicatorServiceImpl) List(ctx context.Context) ([]Indicator, error) {
	return s.Repo.List(ctx)
}

func (s *IndicatorServiceImpl) Update(ctx context.Context, ind *Indicator) error {
	if _, err := evalExpression(ctx, ind.Expresion, sampleSnapshot); err != nil {
		return err
	}
	return s.Repo.Update(ctx, ind)
}

func (s *IndicatorServiceImpl) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *IndicatorServiceImpl) EvaluateAll(ctx context.Context, filters report.FilterValues) ([]Evaluation, error) {
	snapshot, err := s.MetricsService.MetricsFor(ctx, filters)
	if err != nil {
		return nil, err
	}
	inds, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Evaluation, 0, len(inds))
	for _, ind := range inds {
		value, err := evalExpression(ctx, ind.Expresion, snapshot)
		if err != nil {
			// A saved expression that no longer evaluates reads as zero
			// rather than breaking the whole panel
			value = 0
		}
		out = append(out, Evaluation{Indicator: ind, Valor: value})
	}
	return out, nil
}

func (s *IndicatorServiceImpl) EvaluateByID(ctx context.Context, id string, filters report.FilterValues) (*Evaluation, error) {
	ind, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ind == nil {
		return nil, nil
	}
	value, err := s.Evaluate(ctx, ind.Expresion, filters)
	if err != nil {
		return nil, err
	}
	return &Evaluation{Indicator: *ind, Valor: value}, nil
}

func (s *IndicatorServiceImpl) Evaluate(ctx context.Context, expr string, filters report.FilterValues) (float64, error) {
	snapshot, err := s.MetricsService.MetricsFor(ctx, filters)
	if err != nil {
		return 0, err
	}
	return evalExpression(ctx, expr, snapshot)
}

// evalExpression runs one arithmetic expression with the KPI snapshot
// bound as named variables
func evalExpression(ctx context.Context, expr string, m metrics.KPIMetrics) (float64, error) {
	script := tengo.NewScript([]byte(fmt.Sprintf("__res__ := (%s)", expr)))

	script.Add("totalReportes", int64(m.TotalReportes))
	script.Add("totalActividades", int64(m.TotalActividades))
	script.Add("totalTrabajadores", int64(m.TotalTrabajadores))
	script.Add("avancePromedio", m.AvancePromedio)
	script.Add("costoTotal", m.CostoTotal)
	script.Add("costoManoObra", m.CostoManoObra)
	script.Add("costoPromedioPorUnidad", m.CostoPromedioPorUnidad)
	script.Add("indiceEficiencia", m.IndiceEficiencia)

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return 0, &ErrBadExpression{Expr: expr, Reason: err}
	}
	return compiled.Get("__res__").Float(), nil
}
