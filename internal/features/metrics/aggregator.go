package metrics

import (
	"go-obra/internal/features/report"
)

// unboundedCostFloor: below this cost-per-unit the efficiency index
// grows without bound and is flagged rather than suppressed.
const unboundedCostFloor = 0.01

// Compute folds a report list into the KPI snapshot. It is pure and
// recomputes from scratch on every call; empty input yields the
// all-zero snapshot, never nil and never an error.
func Compute(reports []report.ReportDetail) KPIMetrics {
	if len(reports) == 0 {
		return KPIMetrics{}
	}

	var m KPIMetrics
	m.TotalReportes = len(reports)

	uniqueActivities := make(map[string]struct{})
	uniqueWorkers := make(map[string]struct{})

	var sumAvance float64
	var countAvance int
	var totalMetradoE float64

	for _, rep := range reports {
		for _, act := range rep.Actividades {
			if act.Proceso != "" {
				uniqueActivities[act.Proceso] = struct{}{}
			}

			metradoP := float64(act.MetradoP)
			metradoE := float64(act.MetradoE)
			if metradoP > 0 {
				sumAvance += (metradoE / metradoP) * 100
				countAvance++
			}
			totalMetradoE += metradoE
		}

		for _, w := range rep.ManoObra {
			if w.Trabajador != "" {
				uniqueWorkers[w.Trabajador] = struct{}{}
			}
			if w.Categoria == "" {
				continue
			}
			m.CostoManoObra += w.TotalHours() * report.RateFor(w.Categoria)
		}
	}

	m.TotalActividades = len(uniqueActivities)
	m.TotalTrabajadores = len(uniqueWorkers)

	if countAvance > 0 {
		m.AvancePromedio = sumAvance / float64(countAvance)
	}

	// No other cost component exists yet
	m.CostoTotal = m.CostoManoObra

	if totalMetradoE > 0 {
		m.CostoPromedioPorUnidad = m.CostoTotal / totalMetradoE
	}

	if m.AvancePromedio > 0 {
		if m.CostoPromedioPorUnidad > 0 {
			m.IndiceEficiencia = (m.AvancePromedio / m.CostoPromedioPorUnidad) * 10
			m.IndiceNoAcotado = m.CostoPromedioPorUnidad < unboundedCostFloor
		} else {
			// Zero cost per unit would put the index at infinity,
			// which no JSON consumer can represent.
			m.IndiceNoAcotado = true
		}
	}

	return m
}
