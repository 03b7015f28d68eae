package report

import (
	"fmt"
	"math"
	"time"

	"go-obra/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Worker categories with a known hourly rate (soles per hour).
// Anything else falls back to fallbackRate.
const (
	CategoryOperario = "OPERARIO"
	CategoryOficial  = "OFICIAL"
	CategoryPeon     = "PEON"
)

var categoryRates = map[string]float64{
	CategoryOperario: 23.00,
	CategoryOficial:  18.09,
	CategoryPeon:     16.38,
}

const fallbackRate = 18.00

// RateFor returns the hourly rate for a worker category
func RateFor(category string) float64 {
	if rate, ok := categoryRates[category]; ok {
		return rate
	}
	return fallbackRate
}

// FlexFloat decodes numeric fields that field-collected documents store
// as doubles, ints or strings. Malformed or missing values decode to 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Double:
		if v, _, ok := bsoncore.ReadDouble(data); ok {
			*f = FlexFloat(v)
			return nil
		}
	case bsontype.Int32:
		if v, _, ok := bsoncore.ReadInt32(data); ok {
			*f = FlexFloat(v)
			return nil
		}
	case bsontype.Int64:
		if v, _, ok := bsoncore.ReadInt64(data); ok {
			*f = FlexFloat(v)
			return nil
		}
	case bsontype.String:
		if v, _, ok := bsoncore.ReadString(data); ok {
			*f = FlexFloat(utils.ParseFloat(v))
			return nil
		}
	}
	*f = 0
	return nil
}

// Value is the plain float64 form
func (f FlexFloat) Value() float64 { return float64(f) }

// Report is one field submission, read-only from this system's perspective
type Report struct {
	ID                   string `bson:"_id" json:"id"`
	Fecha                string `bson:"fecha" json:"fecha"` // ISO day, lexicographically ordered
	ElaboradoPor         string `bson:"elaboradoPor" json:"elaboradoPor"`
	SubcontratistaBloque string `bson:"subcontratistaBloque" json:"subcontratistaBloque"`
	RevisadoPor          string `bson:"revisadoPor,omitempty" json:"revisadoPor,omitempty"`
	Timestamp            string `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	UsuarioEmail         string `bson:"usuarioEmail,omitempty" json:"usuarioEmail,omitempty"`
	UsuarioUID           string `bson:"usuarioUID,omitempty" json:"usuarioUID,omitempty"`
}

// Activity is one planned-vs-executed work line within a report
type Activity struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	Proceso     string    `bson:"proceso" json:"proceso"`
	Und         string    `bson:"und,omitempty" json:"und,omitempty"`
	MetradoP    FlexFloat `bson:"metradoP" json:"metradoP"`
	MetradoE    FlexFloat `bson:"metradoE" json:"metradoE"`
	Precio      FlexFloat `bson:"precio,omitempty" json:"precio,omitempty"`
	Ubicacion   string    `bson:"ubicacion,omitempty" json:"ubicacion,omitempty"`
	Comentarios string    `bson:"comentarios,omitempty" json:"comentarios,omitempty"`
	Causas      string    `bson:"causas,omitempty" json:"causas,omitempty"`
}

// Worker is one worker's time allocation within a report.
// Horas[i] is positionally aligned with the report's Actividades[i];
// a missing index reads as zero hours.
type Worker struct {
	ID             string      `bson:"_id,omitempty" json:"id,omitempty"`
	DNI            string      `bson:"dni,omitempty" json:"dni,omitempty"`
	Trabajador     string      `bson:"trabajador" json:"trabajador"`
	Categoria      string      `bson:"categoria" json:"categoria"`
	Especificacion string      `bson:"especificacion,omitempty" json:"especificacion,omitempty"`
	Horas          []FlexFloat `bson:"horas" json:"horas"`
	Observacion    string      `bson:"observacion,omitempty" json:"observacion,omitempty"`
}

// HoursOn returns this worker's hours on activity index i, zero when absent
func (w Worker) HoursOn(i int) float64 {
	if i < 0 || i >= len(w.Horas) {
		return 0
	}
	return float64(w.Horas[i])
}

// TotalHours sums the worker's per-activity hour values
func (w Worker) TotalHours() float64 {
	var total float64
	for _, h := range w.Horas {
		total += float64(h)
	}
	return total
}

// Cost is the worker's labor cost at the category rate
func (w Worker) Cost() float64 {
	return w.TotalHours() * RateFor(w.Categoria)
}

// ReportDetail is a report with both child collections fully materialized
type ReportDetail struct {
	Report      `bson:",inline"`
	Actividades []Activity `json:"actividades"`
	ManoObra    []Worker   `json:"manoObra"`
}

// AverageProgress is the mean executed/planned percentage over rows
// with planned > 0. Rows without a plan are excluded from numerator
// and denominator alike.
func (r ReportDetail) AverageProgress() float64 {
	var sum float64
	var count int
	for _, act := range r.Actividades {
		if float64(act.MetradoP) > 0 {
			sum += float64(act.MetradoE) / float64(act.MetradoP) * 100
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// EstimatedCost is the report's labor cost across all crew entries
func (r ReportDetail) EstimatedCost() float64 {
	var total float64
	for _, w := range r.ManoObra {
		if w.Categoria == "" {
			continue
		}
		total += w.Cost()
	}
	return total
}

// Predefined period selectors for FilterValues
const (
	PeriodCustom  = "custom"
	PeriodAllTime = "0" // sentinel: start pinned far in the past
)

// allTimeEpoch pins the start date of the "all time" period
var allTimeEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const dayFormat = "2006-01-02"

const defaultPageSize = 10

// FilterValues is the query intent: a date window, optional exact-match
// filters and pagination.
type FilterValues struct {
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Period         string    `json:"period"`
	Subcontratista string    `json:"subcontratista"`
	ElaboradoPor   string    `json:"elaboradoPor"`
	Categoria      string    `json:"categoria"`
	Page           int       `json:"page"`
	PageSize       int       `json:"pageSize"`
}

// Normalize derives the date window from a predefined period and fixes
// up pagination. A period other than "custom" overrides the dates:
// start = now - N days, end = now, except the all-time sentinel which
// pins start to the epoch.
func (f *FilterValues) Normalize(now time.Time) {
	switch f.Period {
	case PeriodCustom, "":
		if f.Period == "" {
			f.Period = PeriodCustom
		}
	case PeriodAllTime:
		f.StartDate = allTimeEpoch
		f.EndDate = now
	default:
		days := int(utils.ParseFloat(f.Period))
		f.StartDate = now.AddDate(0, 0, -days)
		f.EndDate = now
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
}

// StartDay and EndDay render the window bounds as ISO day strings,
// safe for lexicographic range comparison in the store.
func (f FilterValues) StartDay() string { return f.StartDate.Format(dayFormat) }
func (f FilterValues) EndDay() string   { return f.EndDate.Format(dayFormat) }

// CacheKey identifies one (filters, page, pageSize) tuple. Every filter
// field participates so distinct combinations never collide.
func (f FilterValues) CacheKey() string {
	return fmt.Sprintf("reports_%s_%s_%s_%s_%s_p%d_s%d",
		f.StartDay(), f.EndDay(), f.Subcontratista, f.ElaboradoPor, f.Categoria, f.Page, f.PageSize)
}

// CountCacheKey identifies the count query: same window and equality
// constraints, category excluded (it is filtered client-side).
func (f FilterValues) CountCacheKey() string {
	return fmt.Sprintf("reports_count_%s_%s_%s_%s",
		f.StartDay(), f.EndDay(), f.Subcontratista, f.ElaboradoPor)
}

// AllCacheKey identifies the unpaged scan used by metrics and export
func (f FilterValues) AllCacheKey() string {
	return fmt.Sprintf("reports_all_%s_%s_%s_%s_%s",
		f.StartDay(), f.EndDay(), f.Subcontratista, f.ElaboradoPor, f.Categoria)
}

// PageCursor addresses one document within the date-descending ordering
type PageCursor struct {
	Fecha string `json:"fecha"`
	ID    string `json:"id"`
}

// PaginationInfo is derived per query, never persisted
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPaginationInfo computes the page arithmetic for a result set
func NewPaginationInfo(totalItems int64, page, pageSize int) PaginationInfo {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	return PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// FilterOptions are the facet sets accumulated during a scan, for
// populating filter selectors
type FilterOptions struct {
	Subcontratistas []string `json:"subcontratistas"`
	Elaboradores    []string `json:"elaboradores"`
	Categorias      []string `json:"categorias"`
}

// QueryResult is one page of fully materialized reports plus the
// derived facet sets and pagination state
type QueryResult struct {
	Reports       []ReportDetail `json:"reports"`
	FirstCursor   *PageCursor    `json:"firstCursor,omitempty"`
	LastCursor    *PageCursor    `json:"lastCursor,omitempty"`
	FilterOptions FilterOptions  `json:"filterOptions"`
	Pagination    PaginationInfo `json:"pagination"`
}
