package report

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go-obra/internal/cache"
	"go-obra/internal/config"

	"go.uber.org/zap"
)

type fakeRepo struct {
	reports    []Report
	activities map[string][]Activity
	crew       map[string][]Worker

	findCalls  atomic.Int32
	countCalls atomic.Int32
}

func (f *fakeRepo) FindPage(ctx context.Context, q PageQuery) ([]Report, error) {
	f.findCalls.Add(1)
	out := make([]Report, 0, len(f.reports))
	for _, r := range f.reports {
		if r.Fecha < q.Start || r.Fecha > q.End {
			continue
		}
		if q.Subcontratista != "" && r.SubcontratistaBloque != q.Subcontratista {
			continue
		}
		if q.ElaboradoPor != "" && r.ElaboradoPor != q.ElaboradoPor {
			continue
		}
		out = append(out, r)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeRepo) Count(ctx context.Context, q PageQuery) (int64, error) {
	f.countCalls.Add(1)
	page, err := f.FindPage(ctx, PageQuery{Start: q.Start, End: q.End,
		Subcontratista: q.Subcontratista, ElaboradoPor: q.ElaboradoPor})
	if err != nil {
		return 0, err
	}
	f.findCalls.Add(-1) // Count reuses FindPage internally, not a real scan
	return int64(len(page)), nil
}

func (f *fakeRepo) Activities(ctx context.Context, reportID string) ([]Activity, error) {
	return f.activities[reportID], nil
}

func (f *fakeRepo) CrewHours(ctx context.Context, reportID string) ([]Worker, error) {
	return f.crew[reportID], nil
}

func newTestService(t *testing.T, repo ReportRepository) *ReportServiceImpl {
	t.Helper()
	store := cache.OpenStore(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{CacheTTL: time.Hour, CountCacheTTL: 10 * time.Minute}
	return NewReportService(repo, store, cfg, zap.NewNop()).(*ReportServiceImpl)
}

func demoRepo() *fakeRepo {
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	return &fakeRepo{
		reports: []Report{
			{ID: "r1", Fecha: today, ElaboradoPor: "Residente 1", SubcontratistaBloque: "Andina"},
			{ID: "r2", Fecha: yesterday, ElaboradoPor: "Residente 2", SubcontratistaBloque: "Pacífico"},
			{ID: "r3", Fecha: yesterday, ElaboradoPor: "Residente 1", SubcontratistaBloque: "Andina"},
		},
		activities: map[string][]Activity{
			"r1": {{Proceso: "Vaciado", MetradoP: 100, MetradoE: 50}},
			"r2": {{Proceso: "Encofrado", MetradoP: 40, MetradoE: 20}},
			"r3": {{Proceso: "Acero", MetradoP: 10, MetradoE: 10}},
		},
		crew: map[string][]Worker{
			"r1": {
				{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []FlexFloat{4, 4}},
				{Trabajador: "María", Categoria: "PEON", Horas: []FlexFloat{8}},
			},
			"r2": {{Trabajador: "Luis", Categoria: "OFICIAL", Horas: []FlexFloat{6}}},
			"r3": {{Trabajador: "Juan", Categoria: "OPERARIO", Horas: []FlexFloat{2}}},
		},
	}
}

func TestFetchReportsAccumulatesSortedFacets(t *testing.T) {
	svc := newTestService(t, demoRepo())

	result, err := svc.FetchReports(context.Background(), FilterValues{Period: "30"}, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	if got := result.FilterOptions.Subcontratistas; !reflect.DeepEqual(got, []string{"Andina", "Pacífico"}) {
		t.Errorf("Subcontratistas = %v", got)
	}
	if got := result.FilterOptions.Elaboradores; !reflect.DeepEqual(got, []string{"Residente 1", "Residente 2"}) {
		t.Errorf("Elaboradores = %v", got)
	}
	if got := result.FilterOptions.Categorias; !reflect.DeepEqual(got, []string{"OFICIAL", "OPERARIO", "PEON"}) {
		t.Errorf("Categorias = %v", got)
	}
}

func TestFetchReportsCategoryFilterDropsNonMatching(t *testing.T) {
	svc := newTestService(t, demoRepo())

	result, err := svc.FetchReports(context.Background(),
		FilterValues{Period: "30", Categoria: "OPERARIO"}, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Reports) != 2 {
		t.Fatalf("got %d reports, want 2 (r2 has no OPERARIO crew)", len(result.Reports))
	}
	for _, r := range result.Reports {
		for _, w := range r.ManoObra {
			if w.Categoria != "OPERARIO" {
				t.Errorf("crew entry %q leaked through category filter", w.Categoria)
			}
		}
	}
}

func TestFetchReportsPagination(t *testing.T) {
	svc := newTestService(t, demoRepo())

	result, err := svc.FetchReports(context.Background(),
		FilterValues{Period: "30", Page: 1, PageSize: 2}, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	p := result.Pagination
	if p.TotalItems != 3 || p.TotalPages != 2 {
		t.Errorf("pagination = %+v", p)
	}
	if !p.HasNextPage || p.HasPrevPage {
		t.Errorf("page flags = %+v", p)
	}
	if len(result.Reports) != 2 {
		t.Errorf("got %d reports on page", len(result.Reports))
	}
	if result.FirstCursor == nil || result.LastCursor == nil {
		t.Error("cursors missing on non-empty page")
	}
}

func TestFetchReportsSecondCallHitsCache(t *testing.T) {
	repo := demoRepo()
	svc := newTestService(t, repo)
	filters := FilterValues{Period: "30"}

	if _, err := svc.FetchReports(context.Background(), filters, nil, false); err != nil {
		t.Fatal(err)
	}
	calls := repo.findCalls.Load()

	if _, err := svc.FetchReports(context.Background(), filters, nil, false); err != nil {
		t.Fatal(err)
	}
	if repo.findCalls.Load() != calls {
		t.Errorf("second fetch went remote: %d -> %d calls", calls, repo.findCalls.Load())
	}
}

func TestFetchFreshBypassesCache(t *testing.T) {
	repo := demoRepo()
	svc := newTestService(t, repo)
	filters := FilterValues{Period: "30"}

	if _, err := svc.FetchReports(context.Background(), filters, nil, false); err != nil {
		t.Fatal(err)
	}
	calls := repo.findCalls.Load()

	if _, err := svc.FetchFresh(context.Background(), filters); err != nil {
		t.Fatal(err)
	}
	if repo.findCalls.Load() == calls {
		t.Error("refresh did not go remote")
	}
}

func TestFetchReportsPublishesSnapshot(t *testing.T) {
	svc := newTestService(t, demoRepo())

	if svc.CurrentSnapshot() != nil {
		t.Fatal("snapshot should start empty")
	}
	result, err := svc.FetchReports(context.Background(), FilterValues{Period: "30"}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if svc.CurrentSnapshot() != result {
		t.Error("snapshot not published after fetch")
	}
}

func TestFetchAllIgnoresPagination(t *testing.T) {
	svc := newTestService(t, demoRepo())

	all, err := svc.FetchAll(context.Background(), FilterValues{Period: "30", Page: 2, PageSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("got %d reports, want the full set of 3", len(all))
	}
}

func TestExportReportsCSV(t *testing.T) {
	svc := newTestService(t, demoRepo())

	data, filename, err := svc.ExportReports(context.Background(), FilterValues{Period: "30"}, "csv")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filename, "reportes_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("filename = %q", filename)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Fecha,") {
		t.Errorf("header = %q", lines[0])
	}
	// r1: one OPERARIO at 8h plus one PEON at 8h
	if !strings.Contains(lines[1], "315.04") {
		t.Errorf("row = %q, want cost 315.04", lines[1])
	}
}

func TestExportReportsRejectsUnknownFormat(t *testing.T) {
	svc := newTestService(t, demoRepo())

	if _, _, err := svc.ExportReports(context.Background(), FilterValues{Period: "30"}, "pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
