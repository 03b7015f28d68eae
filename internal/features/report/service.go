package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"go-obra/internal/cache"
	"go-obra/internal/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ReportService interface {
	// FetchReports resolves one page of reports for the given filters.
	// An optional cursor positions the page relative to an already
	// seen document (forward or backward).
	FetchReports(ctx context.Context, filters FilterValues, cursor *PageCursor, backward bool) (*QueryResult, error)
	// FetchAll resolves the full filtered set, unpaged. Metrics and
	// exports go through this so they reflect every matching report,
	// not just the visible page.
	FetchAll(ctx context.Context, filters FilterValues) ([]ReportDetail, error)
	// Refresh drops the cached entries for the filters and re-fetches
	FetchFresh(ctx context.Context, filters FilterValues) (*QueryResult, error)
	ExportReports(ctx context.Context, filters FilterValues, format string) ([]byte, string, error)
	// CurrentSnapshot returns the most recently applied page result
	CurrentSnapshot() *QueryResult
}

type ReportServiceImpl struct {
	Repo  ReportRepository
	Cache *cache.Store
	Log   *zap.Logger

	listTTL  time.Duration
	countTTL time.Duration

	// generation guards against a slow fetch landing after a newer
	// filter application; stale completions are not published.
	generation atomic.Uint64
	current    atomic.Pointer[QueryResult]
}

func NewReportService(repo ReportRepository, store *cache.Store, cfg *config.Config, log *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Repo:     repo,
		Cache:    store,
		Log:      log,
		listTTL:  cfg.CacheTTL,
		countTTL: cfg.CountCacheTTL,
	}
}

func (s *ReportServiceImpl) FetchReports(ctx context.Context, filters FilterValues, cursor *PageCursor, backward bool) (*QueryResult, error) {
	filters.Normalize(time.Now())
	gen := s.generation.Add(1)

	result, err := cache.GetWithSWR(ctx, s.Cache, filters.CacheKey(), s.listTTL,
		func(ctx context.Context) (*QueryResult, error) {
			return s.fetchPage(ctx, filters, cursor, backward)
		})
	if err != nil {
		return nil, err
	}

	// A newer filter application superseded this fetch: hand the
	// result back but do not publish it as the current snapshot.
	if s.generation.Load() == gen {
		s.current.Store(result)
	}
	return result, nil
}

func (s *ReportServiceImpl) FetchFresh(ctx context.Context, filters FilterValues) (*QueryResult, error) {
	filters.Normalize(time.Now())
	s.Cache.Remove(filters.CacheKey())
	s.Cache.Remove(filters.CountCacheKey())
	s.Cache.Remove(filters.AllCacheKey())
	return s.FetchReports(ctx, filters, nil, false)
}

func (s *ReportServiceImpl) CurrentSnapshot() *QueryResult {
	return s.current.Load()
}

// fetchPage is the real remote scan: page of parent documents, both
// child collections per report, client-side category filtering and
// facet accumulation.
func (s *ReportServiceImpl) fetchPage(ctx context.Context, filters FilterValues, cursor *PageCursor, backward bool) (*QueryResult, error) {
	q := PageQuery{
		Start:          filters.StartDay(),
		End:            filters.EndDay(),
		Subcontratista: filters.Subcontratista,
		ElaboradoPor:   filters.ElaboradoPor,
		Limit:          filters.PageSize,
		After:          cursor,
		Backward:       backward,
	}

	totalItems, err := s.countReports(ctx, filters, q)
	if err != nil {
		return nil, err
	}

	rawPage, err := s.Repo.FindPage(ctx, q)
	if err != nil {
		return nil, err
	}

	details, facets, err := s.loadDetails(ctx, rawPage, filters.Categoria)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Reports:       details,
		FilterOptions: facets,
		Pagination:    NewPaginationInfo(totalItems, filters.Page, filters.PageSize),
	}
	if len(rawPage) > 0 {
		first, last := rawPage[0], rawPage[len(rawPage)-1]
		result.FirstCursor = &PageCursor{Fecha: first.Fecha, ID: first.ID}
		result.LastCursor = &PageCursor{Fecha: last.Fecha, ID: last.ID}
	}
	return result, nil
}

// countReports resolves the total for pagination via a separate counting
// query, cached with a shorter TTL than the page data. The category
// constraint is excluded: it lives on the child collection.
func (s *ReportServiceImpl) countReports(ctx context.Context, filters FilterValues, q PageQuery) (int64, error) {
	return cache.GetWithSWR(ctx, s.Cache, filters.CountCacheKey(), s.countTTL,
		func(ctx context.Context) (int64, error) {
			return s.Repo.Count(ctx, q)
		})
}

// loadDetails materializes child collections for every report, applies
// the category filter against crew hours and accumulates facet sets.
// A report with no crew entry in the requested category is dropped.
func (s *ReportServiceImpl) loadDetails(ctx context.Context, raw []Report, categoria string) ([]ReportDetail, FilterOptions, error) {
	subcontratistas := make(map[string]struct{})
	elaboradores := make(map[string]struct{})
	categorias := make(map[string]struct{})

	details := make([]ReportDetail, 0, len(raw))
	for _, rep := range raw {
		if rep.SubcontratistaBloque != "" {
			subcontratistas[rep.SubcontratistaBloque] = struct{}{}
		}
		if rep.ElaboradoPor != "" {
			elaboradores[rep.ElaboradoPor] = struct{}{}
		}

		activities, err := s.Repo.Activities(ctx, rep.ID)
		if err != nil {
			return nil, FilterOptions{}, err
		}
		crew, err := s.Repo.CrewHours(ctx, rep.ID)
		if err != nil {
			return nil, FilterOptions{}, err
		}

		if categoria != "" {
			matching := crew[:0:0]
			for _, w := range crew {
				if w.Categoria == categoria {
					matching = append(matching, w)
				}
			}
			if len(matching) == 0 {
				continue
			}
			crew = matching
		}

		for _, w := range crew {
			if w.Categoria != "" {
				categorias[w.Categoria] = struct{}{}
			}
		}

		details = append(details, ReportDetail{
			Report:      rep,
			Actividades: activities,
			ManoObra:    crew,
		})
	}

	facets := FilterOptions{
		Subcontratistas: sortedKeys(subcontratistas),
		Elaboradores:    sortedKeys(elaboradores),
		Categorias:      sortedKeys(categorias),
	}
	return details, facets, nil
}

func (s *ReportServiceImpl) FetchAll(ctx context.Context, filters FilterValues) ([]ReportDetail, error) {
	filters.Normalize(time.Now())

	return cache.GetWithSWR(ctx, s.Cache, filters.AllCacheKey(), s.listTTL,
		func(ctx context.Context) ([]ReportDetail, error) {
			q := PageQuery{
				Start:          filters.StartDay(),
				End:            filters.EndDay(),
				Subcontratista: filters.Subcontratista,
				ElaboradoPor:   filters.ElaboradoPor,
			}
			raw, err := s.Repo.FindPage(ctx, q)
			if err != nil {
				return nil, err
			}
			details, _, err := s.loadDetails(ctx, raw, filters.Categoria)
			return details, err
		})
}

var exportColumns = []string{
	"Fecha", "Elaborado por", "Subcontratista/Bloque", "Actividades",
	"Trabajadores", "Avance (%)", "Costo Est. (S/)",
}

func (s *ReportServiceImpl) ExportReports(ctx context.Context, filters FilterValues, format string) ([]byte, string, error) {
	reports, err := s.FetchAll(ctx, filters)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(reports))
	for _, rep := range reports {
		var nActs, nWorkers int
		for _, act := range rep.Actividades {
			if act.Proceso != "" {
				nActs++
			}
		}
		for _, w := range rep.ManoObra {
			if w.Trabajador != "" {
				nWorkers++
			}
		}
		rows = append(rows, []string{
			rep.Fecha,
			rep.ElaboradoPor,
			rep.SubcontratistaBloque,
			strconv.Itoa(nActs),
			strconv.Itoa(nWorkers),
			fmt.Sprintf("%.1f", rep.AverageProgress()),
			fmt.Sprintf("%.2f", rep.EstimatedCost()),
		})
	}

	stamp := time.Now().Format("20060102_150405")
	switch format {
	case "csv":
		data, err := writeCSV(rows)
		return data, fmt.Sprintf("reportes_%s.csv", stamp), err
	case "xlsx":
		data, err := writeExcel(rows)
		return data, fmt.Sprintf("reportes_%s.xlsx", stamp), err
	default:
		return nil, "", fmt.Errorf("unsupported format: %s", format)
	}
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Reportes"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
