package analytics

// Bucket selects the calendar grouping of the trend series
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// TrendPoint is one chronological bucket of the trend series.
// All three metrics are carried; the consuming chart picks one.
type TrendPoint struct {
	Label    string  `json:"label"`
	Avance   float64 `json:"avance"`
	MetradoE float64 `json:"metradoE"`
	Costo    float64 `json:"costo"`
}

// TrendMetric selects which TrendPoint value feeds the forecast
type TrendMetric string

const (
	MetricAvance  TrendMetric = "avance"
	MetricMetrado TrendMetric = "metrado"
	MetricCosto   TrendMetric = "costo"
)

// Value extracts the selected metric from a trend point
func (p TrendPoint) Value(metric TrendMetric) float64 {
	switch metric {
	case MetricMetrado:
		return p.MetradoE
	case MetricCosto:
		return p.Costo
	default:
		return p.Avance
	}
}

// ForecastPoint is one projected value beyond the observed series
type ForecastPoint struct {
	Fecha string  `json:"fecha"`
	Valor float64 `json:"valor"`
}

// Correlation is the Pearson coefficient for one variable pair
type Correlation struct {
	Var1        string  `json:"var1"`
	Var2        string  `json:"var2"`
	Correlation float64 `json:"correlation"`
}

// CategoryProductivity relates allocated executed quantity to hours
type CategoryProductivity struct {
	Categoria     string  `json:"categoria"`
	HorasTotales  float64 `json:"horasTotales"`
	MetradoTotal  float64 `json:"metradoTotal"`
	Productividad float64 `json:"productividad"` // units per hour
}

// CategorySummary is the per-category workforce rollup
type CategorySummary struct {
	Categoria     string  `json:"categoria"`
	Trabajadores  int     `json:"trabajadores"`
	HorasTotales  float64 `json:"horasTotales"`
	PromedioHoras float64 `json:"promedioHorasPorTrabajador"`
	Costo         float64 `json:"costo"`
}

// WorkerSummary is the per-worker rollup for the workforce table
type WorkerSummary struct {
	Nombre             string  `json:"nombre"`
	Categoria          string  `json:"categoria"`
	HorasTotales       float64 `json:"horasTotales"`
	Reportes           int     `json:"reportes"`
	ActividadPrincipal string  `json:"actividadPrincipal"`
	MetradoAsociado    float64 `json:"metradoAsociado"`
	Productividad      float64 `json:"productividad"`
	Costo              float64 `json:"costo"`
}

// ActivityRollup sums planned/executed quantities and cost per activity name
type ActivityRollup struct {
	Nombre         string  `json:"nombre"`
	Unidad         string  `json:"unidad"`
	MetradoP       float64 `json:"metradoP"`
	MetradoE       float64 `json:"metradoE"`
	Avance         float64 `json:"avance"`
	Costo          float64 `json:"costo"`
	CostoPorUnidad float64 `json:"costoPorUnidad"`
	Reportes       int     `json:"reportes"`
}

// ContractorStats ranks contractors by mean progress
type ContractorStats struct {
	Nombre   string  `json:"nombre"`
	Avance   float64 `json:"avance"`
	Reportes int     `json:"reportes"`
	Costo    float64 `json:"costo"`
}

// CategoryHours is the hours distribution for the doughnut chart
type CategoryHours struct {
	Categoria string  `json:"categoria"`
	Horas     float64 `json:"horas"`
}
