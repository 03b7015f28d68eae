package indicator

import (
	"context"
	"errors"
	"math"
	"testing"

	"go-obra/internal/features/metrics"
)

func TestEvalExpressionArithmetic(t *testing.T) {
	snapshot := metrics.KPIMetrics{
		TotalReportes:  10,
		CostoManoObra:  500,
		AvancePromedio: 50,
	}

	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"constant", "7", 7},
		{"bound variable", "avancePromedio", 50},
		{"cost per report", "costoManoObra / totalReportes", 50},
		{"weighted", "avancePromedio * 2 + 1", 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalExpression(context.Background(), tt.expr, snapshot)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalExpressionRejectsBadSyntax(t *testing.T) {
	for _, expr := range []string{"", "avancePromedio +", "noSuchVariable * 2"} {
		_, err := evalExpression(context.Background(), expr, metrics.KPIMetrics{})
		var bad *ErrBadExpression
		if !errors.As(err, &bad) {
			t.Errorf("expr %q: err = %v, want ErrBadExpression", expr, err)
		}
	}
}

func TestSampleSnapshotToleratesDivision(t *testing.T) {
	// saving an indicator validates against the sample snapshot, which
	// must not reject well-formed ratios
	if _, err := evalExpression(context.Background(), "costoTotal / totalReportes", sampleSnapshot); err != nil {
		t.Errorf("ratio rejected by validation snapshot: %v", err)
	}
}
