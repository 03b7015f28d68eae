package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"go-obra/internal/features/report"
)

// minPointsForForecast is the smallest series the regression accepts
const minPointsForForecast = 5

var ErrInsufficientData = errors.New("se necesitan al menos 5 puntos para proyectar")

var spanishMonths = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

func parseDay(fecha string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func bucketKey(t time.Time, bucket Bucket) (sortKey, label string) {
	switch bucket {
	case BucketWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), fmt.Sprintf("Sem %d (%d)", week, year)
	case BucketMonth:
		return t.Format("2006-01"), fmt.Sprintf("%s %d", spanishMonths[t.Month()-1], t.Year())
	default:
		return t.Format("2006-01-02"), t.Format("2006-01-02")
	}
}

// TrendSeries groups reports into calendar buckets and folds progress,
// executed quantity and labor cost into one chronological series.
func TrendSeries(reports []report.ReportDetail, bucket Bucket) []TrendPoint {
	type acc struct {
		label     string
		avanceSum float64
		avanceN   int
		metradoE  float64
		costo     float64
	}
	groups := make(map[string]*acc)

	for _, r := range reports {
		day, ok := parseDay(r.Fecha)
		if !ok {
			continue
		}
		sortKey, label := bucketKey(day, bucket)
		g := groups[sortKey]
		if g == nil {
			g = &acc{label: label}
			groups[sortKey] = g
		}
		for _, a := range r.Actividades {
			if a.MetradoP.Value() > 0 {
				g.avanceSum += a.MetradoE.Value() / a.MetradoP.Value() * 100
				g.avanceN++
			}
			g.metradoE += a.MetradoE.Value()
		}
		g.costo += r.EstimatedCost()
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		p := TrendPoint{Label: g.label, MetradoE: g.metradoE, Costo: g.costo}
		if g.avanceN > 0 {
			p.Avance = g.avanceSum / float64(g.avanceN)
		}
		points = append(points, p)
	}
	return points
}

// Regress fits y = slope*x + intercept over x = 0..n-1 by least squares
func Regress(values []float64) (slope, intercept float64, err error) {
	n := float64(len(values))
	if len(values) < 2 {
		return 0, 0, errors.New("serie demasiado corta para regresión")
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, 0, errors.New("regresión degenerada")
	}
	slope = (n*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, nil
}

// Forecast projects the series horizonDays past lastDate using the fitted
// line. Projections never go below zero.
func Forecast(values []float64, lastDate time.Time, horizonDays int) ([]ForecastPoint, error) {
	if len(values) < minPointsForForecast {
		return nil, ErrInsufficientData
	}
	slope, intercept, err := Regress(values)
	if err != nil {
		return nil, err
	}
	n := float64(len(values))
	points := make([]ForecastPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		v := slope*(n-1+float64(i)) + intercept
		if v < 0 {
			v = 0
		}
		points = append(points, ForecastPoint{
			Fecha: lastDate.AddDate(0, 0, i).Format("2006-01-02"),
			Valor: v,
		})
	}
	return points, nil
}

// minReportsForCorrelation is the smallest set the correlation panel accepts
const minReportsForCorrelation = 5

// Correlations computes Pearson coefficients between the per-report
// distinct workforce size, total hours, mean progress and labor cost,
// ordered by absolute strength. Sets below five reports yield nothing.
func Correlations(reports []report.ReportDetail) []Correlation {
	if len(reports) < minReportsForCorrelation {
		return nil
	}
	type variable struct {
		name   string
		values []float64
	}
	vars := []variable{
		{name: "trabajadores"},
		{name: "horas"},
		{name: "avance"},
		{name: "costo"},
	}
	for _, r := range reports {
		names := make(map[string]struct{})
		var hours float64
		for _, w := range r.ManoObra {
			if w.Trabajador != "" {
				names[w.Trabajador] = struct{}{}
			}
			hours += w.TotalHours()
		}
		vars[0].values = append(vars[0].values, float64(len(names)))
		vars[1].values = append(vars[1].values, hours)
		vars[2].values = append(vars[2].values, r.AverageProgress())
		vars[3].values = append(vars[3].values, r.EstimatedCost())
	}

	var out []Correlation
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			r, err := stats.Pearson(vars[i].values, vars[j].values)
			if err != nil || math.IsNaN(r) {
				r = 0
			}
			out = append(out, Correlation{Var1: vars[i].name, Var2: vars[j].name, Correlation: r})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Correlation) > math.Abs(out[b].Correlation)
	})
	return out
}

// crewHoursPerActivity sums the whole crew's hours per activity index.
// Horas[i] pairs positionally with Actividades[i].
func crewHoursPerActivity(r report.ReportDetail) []float64 {
	totals := make([]float64, len(r.Actividades))
	for i := range r.Actividades {
		for _, w := range r.ManoObra {
			totals[i] += w.HoursOn(i)
		}
	}
	return totals
}

// allocateByHours splits each activity's executed quantity across the
// crew in proportion to the hours each worker logged on that activity.
// Activities with no executed quantity or no crew hours contribute
// nothing.
func allocateByHours(reports []report.ReportDetail, visit func(categoria string, hours, allocated float64)) {
	for _, r := range reports {
		crewHours := crewHoursPerActivity(r)
		for _, w := range r.ManoObra {
			if w.Categoria == "" {
				continue
			}
			var allocated float64
			for i, a := range r.Actividades {
				metradoE := a.MetradoE.Value()
				h := w.HoursOn(i)
				if metradoE <= 0 || h <= 0 || crewHours[i] <= 0 {
					continue
				}
				allocated += metradoE * h / crewHours[i]
			}
			visit(w.Categoria, w.TotalHours(), allocated)
		}
	}
}

// ProductivityByCategory reports allocated units per worked hour
func ProductivityByCategory(reports []report.ReportDetail) []CategoryProductivity {
	type acc struct{ hours, metrado float64 }
	groups := make(map[string]*acc)
	allocateByHours(reports, func(cat string, hours, allocated float64) {
		g := groups[cat]
		if g == nil {
			g = &acc{}
			groups[cat] = g
		}
		g.hours += hours
		g.metrado += allocated
	})

	out := make([]CategoryProductivity, 0, len(groups))
	for cat, g := range groups {
		p := CategoryProductivity{Categoria: cat, HorasTotales: g.hours, MetradoTotal: g.metrado}
		if g.hours > 0 {
			p.Productividad = g.metrado / g.hours
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Productividad > out[j].Productividad })
	return out
}

// CategorySummaries rolls the workforce up by category, most expensive first
func CategorySummaries(reports []report.ReportDetail) []CategorySummary {
	type acc struct {
		workers map[string]struct{}
		hours   float64
		cost    float64
	}
	groups := make(map[string]*acc)
	for _, r := range reports {
		for _, w := range r.ManoObra {
			if w.Categoria == "" {
				continue
			}
			g := groups[w.Categoria]
			if g == nil {
				g = &acc{workers: make(map[string]struct{})}
				groups[w.Categoria] = g
			}
			if w.Trabajador != "" {
				g.workers[w.Trabajador] = struct{}{}
			}
			g.hours += w.TotalHours()
			g.cost += w.Cost()
		}
	}

	out := make([]CategorySummary, 0, len(groups))
	for cat, g := range groups {
		s := CategorySummary{
			Categoria:    cat,
			Trabajadores: len(g.workers),
			HorasTotales: g.hours,
			Costo:        g.cost,
		}
		if len(g.workers) > 0 {
			s.PromedioHoras = g.hours / float64(len(g.workers))
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Costo > out[j].Costo })
	return out
}

// TopWorkers ranks individual workers by accumulated hours. Executed
// quantity is attributed per activity in proportion to the worker's
// share of that activity's crew hours, and the main activity is the
// one holding most of the worker's own hours.
func TopWorkers(reports []report.ReportDetail, limit int) []WorkerSummary {
	type acc struct {
		categoria  string
		hours      float64
		cost       float64
		metrado    float64
		reportIDs  map[string]struct{}
		activities map[string]float64
	}
	groups := make(map[string]*acc)

	for _, r := range reports {
		crewHours := crewHoursPerActivity(r)
		for _, w := range r.ManoObra {
			if w.Trabajador == "" {
				continue
			}
			g := groups[w.Trabajador]
			if g == nil {
				g = &acc{reportIDs: make(map[string]struct{}), activities: make(map[string]float64)}
				groups[w.Trabajador] = g
			}
			if g.categoria == "" {
				g.categoria = w.Categoria
			}
			g.hours += w.TotalHours()
			g.cost += w.Cost()
			g.reportIDs[r.ID] = struct{}{}
			for i, a := range r.Actividades {
				if a.Proceso == "" {
					continue
				}
				h := w.HoursOn(i)
				if h <= 0 {
					continue
				}
				g.activities[a.Proceso] += h
				if metradoE := a.MetradoE.Value(); metradoE > 0 && crewHours[i] > 0 {
					g.metrado += metradoE * h / crewHours[i]
				}
			}
		}
	}

	out := make([]WorkerSummary, 0, len(groups))
	for name, g := range groups {
		s := WorkerSummary{
			Nombre:          name,
			Categoria:       g.categoria,
			HorasTotales:    g.hours,
			Reportes:        len(g.reportIDs),
			MetradoAsociado: g.metrado,
			Costo:           g.cost,
		}
		if g.hours > 0 {
			s.Productividad = g.metrado / g.hours
		}
		var best float64
		for act, h := range g.activities {
			if h > best || (h == best && act < s.ActividadPrincipal) {
				best = h
				s.ActividadPrincipal = act
			}
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].HorasTotales > out[j].HorasTotales })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ActivityRollups sums quantities and allocated cost per activity name.
// Cost is split across a report's activities by executed share.
func ActivityRollups(reports []report.ReportDetail) []ActivityRollup {
	type acc struct {
		unidad   string
		metradoP float64
		metradoE float64
		cost     float64
		reports  map[string]struct{}
	}
	groups := make(map[string]*acc)

	for _, r := range reports {
		var metradoE float64
		for _, a := range r.Actividades {
			metradoE += a.MetradoE.Value()
		}
		cost := r.EstimatedCost()
		for _, a := range r.Actividades {
			if a.Proceso == "" {
				continue
			}
			g := groups[a.Proceso]
			if g == nil {
				g = &acc{reports: make(map[string]struct{})}
				groups[a.Proceso] = g
			}
			if g.unidad == "" {
				g.unidad = a.Und
			}
			g.metradoP += a.MetradoP.Value()
			g.metradoE += a.MetradoE.Value()
			if metradoE > 0 {
				g.cost += cost * a.MetradoE.Value() / metradoE
			}
			g.reports[r.ID] = struct{}{}
		}
	}

	out := make([]ActivityRollup, 0, len(groups))
	for name, g := range groups {
		a := ActivityRollup{
			Nombre:   name,
			Unidad:   g.unidad,
			MetradoP: g.metradoP,
			MetradoE: g.metradoE,
			Costo:    g.cost,
			Reportes: len(g.reports),
		}
		if g.metradoP > 0 {
			a.Avance = g.metradoE / g.metradoP * 100
		}
		if g.metradoE > 0 {
			a.CostoPorUnidad = g.cost / g.metradoE
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MetradoE > out[j].MetradoE })
	return out
}

// ContractorRanking orders contractors by mean report progress
func ContractorRanking(reports []report.ReportDetail) []ContractorStats {
	type acc struct {
		avanceSum float64
		reports   int
		cost      float64
	}
	groups := make(map[string]*acc)
	for _, r := range reports {
		name := r.SubcontratistaBloque
		if name == "" {
			name = "Sin especificar"
		}
		g := groups[name]
		if g == nil {
			g = &acc{}
			groups[name] = g
		}
		g.avanceSum += r.AverageProgress()
		g.reports++
		g.cost += r.EstimatedCost()
	}

	out := make([]ContractorStats, 0, len(groups))
	for name, g := range groups {
		out = append(out, ContractorStats{
			Nombre:   name,
			Avance:   g.avanceSum / float64(g.reports),
			Reportes: g.reports,
			Costo:    g.cost,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Avance > out[j].Avance })
	return out
}

// HoursDistribution sums crew hours per category, largest first
func HoursDistribution(reports []report.ReportDetail) []CategoryHours {
	groups := make(map[string]float64)
	for _, r := range reports {
		for _, w := range r.ManoObra {
			cat := w.Categoria
			if cat == "" {
				cat = "Sin categoría"
			}
			groups[cat] += w.TotalHours()
		}
	}
	out := make([]CategoryHours, 0, len(groups))
	for cat, h := range groups {
		out = append(out, CategoryHours{Categoria: cat, Horas: h})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Horas > out[j].Horas })
	return out
}
