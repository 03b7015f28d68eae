package analytics

import (
	"math"
	"testing"
	"time"

	"go-obra/internal/features/report"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func day(fecha string, avanceP, avanceE float64, crew ...report.Worker) report.ReportDetail {
	return report.ReportDetail{
		Report: report.Report{ID: "r-" + fecha, Fecha: fecha},
		Actividades: []report.Activity{
			{Proceso: "Vaciado", Und: "m3", MetradoP: report.FlexFloat(avanceP), MetradoE: report.FlexFloat(avanceE)},
		},
		ManoObra: crew,
	}
}

func TestTrendSeriesDailyBucketsAreChronological(t *testing.T) {
	reports := []report.ReportDetail{
		day("2026-03-03", 100, 30),
		day("2026-03-01", 100, 10),
		day("2026-03-02", 100, 20),
		day("2026-03-01", 100, 30), // same day, folded into one bucket
	}

	points := TrendSeries(reports, BucketDay)
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	labels := []string{points[0].Label, points[1].Label, points[2].Label}
	want := []string{"2026-03-01", "2026-03-02", "2026-03-03"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels = %v, want %v", labels, want)
			break
		}
	}

	// 2026-03-01 holds two rows at 10% and 30%
	if !almostEqual(points[0].Avance, 20) {
		t.Errorf("first bucket avance = %v, want 20", points[0].Avance)
	}
	if !almostEqual(points[0].MetradoE, 40) {
		t.Errorf("first bucket metradoE = %v, want 40", points[0].MetradoE)
	}
}

func TestTrendSeriesWeekBucketing(t *testing.T) {
	// 2026-03-02 is a Monday; the 1st falls into the previous ISO week
	reports := []report.ReportDetail{
		day("2026-03-01", 100, 10),
		day("2026-03-02", 100, 20),
		day("2026-03-04", 100, 30),
	}

	points := TrendSeries(reports, BucketWeek)
	if len(points) != 2 {
		t.Fatalf("got %d buckets, want 2", len(points))
	}
	if !almostEqual(points[1].Avance, 25) {
		t.Errorf("second week avance = %v, want 25", points[1].Avance)
	}
}

func TestTrendSeriesMonthBucketing(t *testing.T) {
	reports := []report.ReportDetail{
		day("2026-01-15", 100, 10),
		day("2026-02-10", 100, 20),
		day("2026-01-20", 100, 30),
	}

	points := TrendSeries(reports, BucketMonth)
	if len(points) != 2 {
		t.Fatalf("got %d buckets, want 2", len(points))
	}
	if points[0].Label != "ene 2026" {
		t.Errorf("label = %q, want %q", points[0].Label, "ene 2026")
	}
	if points[1].Label != "feb 2026" {
		t.Errorf("label = %q, want %q", points[1].Label, "feb 2026")
	}
}

func TestTrendSeriesSkipsUnparseableDates(t *testing.T) {
	reports := []report.ReportDetail{
		day("not-a-date", 100, 10),
		day("2026-03-01", 100, 20),
	}
	if points := TrendSeries(reports, BucketDay); len(points) != 1 {
		t.Errorf("got %d points, want 1", len(points))
	}
}

func TestRegressRecoversLine(t *testing.T) {
	// y = 2x + 3
	values := []float64{3, 5, 7, 9, 11}

	slope, intercept, err := Regress(values)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(slope, 2) {
		t.Errorf("slope = %v, want 2", slope)
	}
	if !almostEqual(intercept, 3) {
		t.Errorf("intercept = %v, want 3", intercept)
	}
}

func TestForecastProjectsLine(t *testing.T) {
	values := []float64{3, 5, 7, 9, 11} // y = 2x + 3, last index 4
	last := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	points, err := Forecast(values, last, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points", len(points))
	}
	if points[0].Fecha != "2026-03-11" {
		t.Errorf("first fecha = %s", points[0].Fecha)
	}
	// x = 5 -> 13
	if !almostEqual(points[0].Valor, 13) {
		t.Errorf("first value = %v, want 13", points[0].Valor)
	}
	if !almostEqual(points[4].Valor, 21) {
		t.Errorf("fifth value = %v, want 21", points[4].Valor)
	}
}

func TestForecastClampsNegativeProjections(t *testing.T) {
	values := []float64{10, 8, 6, 4, 2} // hits zero at x = 5

	points, err := Forecast(values, time.Now(), 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.Valor < 0 {
			t.Errorf("projection %v went negative", p.Valor)
		}
	}
}

func TestForecastRejectsShortSeries(t *testing.T) {
	if _, err := Forecast([]float64{1, 2, 3, 4}, time.Now(), 5); err != ErrInsufficientData {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestCorrelationsSortedByStrength(t *testing.T) {
	crew := func(hours float64) report.Worker {
		return report.Worker{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{report.FlexFloat(hours)}}
	}
	reports := []report.ReportDetail{
		day("2026-03-01", 100, 10, crew(2)),
		day("2026-03-02", 100, 20, crew(4)),
		day("2026-03-03", 100, 30, crew(6)),
		day("2026-03-04", 100, 40, crew(8)),
		day("2026-03-05", 100, 50, crew(10)),
	}

	out := Correlations(reports)
	if len(out) != 6 {
		t.Fatalf("got %d pairs, want 6 from 4 variables", len(out))
	}
	for i := 1; i < len(out); i++ {
		if math.Abs(out[i].Correlation) > math.Abs(out[i-1].Correlation)+1e-9 {
			t.Errorf("pairs not sorted by |r|: %v before %v", out[i-1], out[i])
		}
	}
	// hours and progress move in lockstep here
	for _, c := range out {
		if c.Var1 == "horas" && c.Var2 == "avance" && !almostEqual(c.Correlation, 1) {
			t.Errorf("horas/avance r = %v, want 1", c.Correlation)
		}
	}
}

func TestCorrelationsDegenerateSeriesReadsZero(t *testing.T) {
	// constant workforce: no variance, Pearson is undefined
	crew := func() report.Worker {
		return report.Worker{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{4}}
	}
	reports := []report.ReportDetail{
		day("2026-03-01", 100, 10, crew()),
		day("2026-03-02", 100, 20, crew()),
		day("2026-03-03", 100, 30, crew()),
		day("2026-03-04", 100, 40, crew()),
		day("2026-03-05", 100, 50, crew()),
	}

	for _, c := range Correlations(reports) {
		if math.IsNaN(c.Correlation) {
			t.Errorf("%s/%s produced NaN", c.Var1, c.Var2)
		}
		if c.Var1 == "trabajadores" && c.Correlation != 0 {
			t.Errorf("constant series %s/%s r = %v, want 0", c.Var1, c.Var2, c.Correlation)
		}
	}
}

func TestCorrelationsRequireFiveReports(t *testing.T) {
	reports := []report.ReportDetail{
		day("2026-03-01", 100, 10),
		day("2026-03-02", 100, 20),
		day("2026-03-03", 100, 30),
		day("2026-03-04", 100, 40),
	}
	if out := Correlations(reports); out != nil {
		t.Errorf("got %d pairs from 4 reports, want none", len(out))
	}
}

func TestCorrelationsCountDistinctWorkers(t *testing.T) {
	// every report carries two crew entries; only the distinct names vary,
	// in lockstep with progress
	crew := func(names ...string) []report.Worker {
		out := make([]report.Worker, 0, len(names))
		for _, n := range names {
			out = append(out, report.Worker{Trabajador: n, Categoria: "OPERARIO", Horas: []report.FlexFloat{4}})
		}
		return out
	}
	reports := []report.ReportDetail{
		day("2026-03-01", 100, 10, crew("Juan", "Juan")...),
		day("2026-03-02", 100, 10, crew("Juan", "Juan")...),
		day("2026-03-03", 100, 20, crew("Juan", "María")...),
		day("2026-03-04", 100, 20, crew("Juan", "María")...),
		day("2026-03-05", 100, 20, crew("Juan", "María")...),
	}

	for _, c := range Correlations(reports) {
		if c.Var1 == "trabajadores" && c.Var2 == "avance" && !almostEqual(c.Correlation, 1) {
			t.Errorf("trabajadores/avance r = %v, want 1 from distinct names", c.Correlation)
		}
	}
}

func TestProductivityAllocationSumsToExecuted(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{
				{Proceso: "Vaciado", MetradoP: 100, MetradoE: 60},
			},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{6}},
				{Trabajador: "María", Categoria: "PEON", Horas: []report.FlexFloat{3}},
			},
		},
	}

	out := ProductivityByCategory(reports)
	if len(out) != 2 {
		t.Fatalf("got %d categories", len(out))
	}
	var total float64
	for _, p := range out {
		total += p.MetradoTotal
	}
	if !almostEqual(total, 60) {
		t.Errorf("allocated metrado sums to %v, want the executed 60", total)
	}
	// OPERARIO worked 2/3 of the hours
	for _, p := range out {
		if p.Categoria == "OPERARIO" && !almostEqual(p.MetradoTotal, 40) {
			t.Errorf("OPERARIO allocation = %v, want 40", p.MetradoTotal)
		}
	}
}

func TestProductivityAllocationFollowsActivityHours(t *testing.T) {
	// hours pair positionally with activities: the OPERARIO only worked
	// the activity with executed quantity, the PEON only the one without
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{
				{Proceso: "Vaciado", MetradoP: 120, MetradoE: 100},
				{Proceso: "Limpieza", MetradoP: 10, MetradoE: 0},
			},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{8, 0}},
				{Trabajador: "María", Categoria: "PEON", Horas: []report.FlexFloat{0, 8}},
			},
		},
	}

	out := ProductivityByCategory(reports)
	if len(out) != 2 {
		t.Fatalf("got %d categories", len(out))
	}
	for _, p := range out {
		switch p.Categoria {
		case "OPERARIO":
			if !almostEqual(p.MetradoTotal, 100) {
				t.Errorf("OPERARIO allocation = %v, want the full 100", p.MetradoTotal)
			}
		case "PEON":
			if !almostEqual(p.MetradoTotal, 0) {
				t.Errorf("PEON allocation = %v, want 0 from an activity without executed quantity", p.MetradoTotal)
			}
			if !almostEqual(p.HorasTotales, 8) {
				t.Errorf("PEON hours = %v, want 8", p.HorasTotales)
			}
		}
	}
}

func TestProductivitySharedActivitySplitsByItsOwnHours(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{
				{Proceso: "Vaciado", MetradoP: 100, MetradoE: 90},
				{Proceso: "Acero", MetradoP: 50, MetradoE: 30},
			},
			ManoObra: []report.Worker{
				// Juan: 6h on Vaciado, 2h on Acero; María: 3h on Vaciado, 4h on Acero
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{6, 2}},
				{Trabajador: "María", Categoria: "PEON", Horas: []report.FlexFloat{3, 4}},
			},
		},
	}

	out := ProductivityByCategory(reports)
	for _, p := range out {
		switch p.Categoria {
		case "OPERARIO":
			// 90*6/9 + 30*2/6
			if !almostEqual(p.MetradoTotal, 70) {
				t.Errorf("OPERARIO allocation = %v, want 70", p.MetradoTotal)
			}
		case "PEON":
			// 90*3/9 + 30*4/6
			if !almostEqual(p.MetradoTotal, 50) {
				t.Errorf("PEON allocation = %v, want 50", p.MetradoTotal)
			}
		}
	}
}

func TestProductivitySkipsReportsWithoutHours(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report:      report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{{Proceso: "Vaciado", MetradoP: 10, MetradoE: 5}},
		},
	}
	if out := ProductivityByCategory(reports); len(out) != 0 {
		t.Errorf("got %d categories from a crewless report, want 0", len(out))
	}
}

func TestCategorySummariesSortedByCost(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{8}},
				{Trabajador: "María", Categoria: "PEON", Horas: []report.FlexFloat{2}},
				{Trabajador: "Rosa", Categoria: "PEON", Horas: []report.FlexFloat{2}},
			},
		},
	}

	out := CategorySummaries(reports)
	if len(out) != 2 {
		t.Fatalf("got %d categories", len(out))
	}
	if out[0].Categoria != "OPERARIO" {
		t.Errorf("most expensive first: got %s", out[0].Categoria)
	}
	for _, s := range out {
		if s.Categoria == "PEON" {
			if s.Trabajadores != 2 {
				t.Errorf("PEON workers = %d", s.Trabajadores)
			}
			if !almostEqual(s.PromedioHoras, 2) {
				t.Errorf("PEON mean hours = %v", s.PromedioHoras)
			}
		}
	}
}

func TestTopWorkersRankedByHoursAndLimited(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report:      report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{{Proceso: "Vaciado", MetradoP: 100, MetradoE: 50}},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{8}},
				{Trabajador: "María", Categoria: "PEON", Horas: []report.FlexFloat{4}},
				{Trabajador: "Rosa", Categoria: "PEON", Horas: []report.FlexFloat{2}},
			},
		},
		{
			Report:      report.Report{ID: "r2", Fecha: "2026-03-02"},
			Actividades: []report.Activity{{Proceso: "Acero", MetradoP: 10, MetradoE: 10}},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{6}},
			},
		},
	}

	out := TopWorkers(reports, 2)
	if len(out) != 2 {
		t.Fatalf("got %d workers, want the limit of 2", len(out))
	}
	if out[0].Nombre != "Juan" || !almostEqual(out[0].HorasTotales, 14) {
		t.Errorf("top = %+v", out[0])
	}
	if out[0].Reportes != 2 {
		t.Errorf("Juan's reports = %d, want 2", out[0].Reportes)
	}
	if out[0].ActividadPrincipal != "Vaciado" {
		t.Errorf("main activity = %q, Vaciado holds 8 of his 14 hours", out[0].ActividadPrincipal)
	}
}

func TestTopWorkersMainActivityFollowsOwnHours(t *testing.T) {
	// Vaciado holds the larger executed quantity, but Juan spent most of
	// his hours on Acero
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{
				{Proceso: "Vaciado", MetradoP: 120, MetradoE: 100},
				{Proceso: "Acero", MetradoP: 20, MetradoE: 10},
			},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{2, 8}},
			},
		},
	}

	out := TopWorkers(reports, 0)
	if len(out) != 1 {
		t.Fatalf("got %d workers", len(out))
	}
	if out[0].ActividadPrincipal != "Acero" {
		t.Errorf("main activity = %q, Acero holds 8 of his 10 hours", out[0].ActividadPrincipal)
	}
	// sole worker on both activities: 100 + 10
	if !almostEqual(out[0].MetradoAsociado, 110) {
		t.Errorf("metrado = %v, want 110", out[0].MetradoAsociado)
	}
}

func TestActivityRollupsSortedByExecuted(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			Actividades: []report.Activity{
				{Proceso: "Vaciado", Und: "m3", MetradoP: 100, MetradoE: 60},
				{Proceso: "Acero", Und: "kg", MetradoP: 50, MetradoE: 40},
			},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "PEON", Horas: []report.FlexFloat{5, 5}},
			},
		},
		{
			Report: report.Report{ID: "r2", Fecha: "2026-03-02"},
			Actividades: []report.Activity{
				{Proceso: "Acero", Und: "kg", MetradoP: 50, MetradoE: 50},
			},
		},
	}

	out := ActivityRollups(reports)
	if len(out) != 2 {
		t.Fatalf("got %d activities", len(out))
	}
	if out[0].Nombre != "Acero" {
		t.Errorf("largest executed first: got %s", out[0].Nombre)
	}
	if !almostEqual(out[0].MetradoE, 90) || !almostEqual(out[0].MetradoP, 100) {
		t.Errorf("Acero rollup = %+v", out[0])
	}
	if out[0].Reportes != 2 {
		t.Errorf("Acero reports = %d", out[0].Reportes)
	}
	if !almostEqual(out[0].Avance, 90) {
		t.Errorf("Acero avance = %v, want 90", out[0].Avance)
	}

	// r1's crew cost splits 60:40 across its two activities
	r1Cost := 10 * 16.38
	for _, a := range out {
		switch a.Nombre {
		case "Vaciado":
			if !almostEqual(a.Costo, r1Cost*0.6) {
				t.Errorf("Vaciado cost = %v, want %v", a.Costo, r1Cost*0.6)
			}
		case "Acero":
			if !almostEqual(a.Costo, r1Cost*0.4) {
				t.Errorf("Acero cost = %v, want %v", a.Costo, r1Cost*0.4)
			}
		}
	}
}

func TestContractorRankingNamesTheUnspecified(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report:      report.Report{ID: "r1", Fecha: "2026-03-01", SubcontratistaBloque: "Andina"},
			Actividades: []report.Activity{{Proceso: "Vaciado", MetradoP: 100, MetradoE: 80}},
		},
		{
			Report:      report.Report{ID: "r2", Fecha: "2026-03-02"},
			Actividades: []report.Activity{{Proceso: "Vaciado", MetradoP: 100, MetradoE: 20}},
		},
	}

	out := ContractorRanking(reports)
	if len(out) != 2 {
		t.Fatalf("got %d contractors", len(out))
	}
	if out[0].Nombre != "Andina" || !almostEqual(out[0].Avance, 80) {
		t.Errorf("top = %+v", out[0])
	}
	if out[1].Nombre != "Sin especificar" {
		t.Errorf("unnamed contractor labeled %q", out[1].Nombre)
	}
}

func TestHoursDistribution(t *testing.T) {
	reports := []report.ReportDetail{
		{
			Report: report.Report{ID: "r1", Fecha: "2026-03-01"},
			ManoObra: []report.Worker{
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []report.FlexFloat{8}},
				{Trabajador: "María", Categoria: "", Horas: []report.FlexFloat{3}},
			},
		},
	}

	out := HoursDistribution(reports)
	if len(out) != 2 {
		t.Fatalf("got %d categories", len(out))
	}
	if out[0].Categoria != "OPERARIO" || !almostEqual(out[0].Horas, 8) {
		t.Errorf("top = %+v", out[0])
	}
	if out[1].Categoria != "Sin categoría" {
		t.Errorf("empty category labeled %q", out[1].Categoria)
	}
}
