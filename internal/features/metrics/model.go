package metrics

// KPIMetrics is the scalar snapshot over one filtered report set.
// Field names match the dashboard payload the web client consumes.
type KPIMetrics struct {
	TotalReportes     int     `json:"totalReportes"`
	TotalActividades  int     `json:"totalActividades"`
	TotalTrabajadores int     `json:"totalTrabajadores"`
	AvancePromedio    float64 `json:"avancePromedio"`
	CostoTotal        float64 `json:"costoTotal"`
	CostoManoObra     float64 `json:"costoManoObra"`
	CostoPromedioPorUnidad float64 `json:"costoPromedioPorUnidad"`
	IndiceEficiencia  float64 `json:"indiceEficiencia"`
	// IndiceNoAcotado marks an efficiency index computed against a
	// near-zero cost per unit; the value is kept as computed but
	// consumers should render it as undefined.
	IndiceNoAcotado bool `json:"indiceNoAcotado"`
}
