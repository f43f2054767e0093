package resonance

import (
	"context"
	"math"
	"testing"

	"github.com/printwizard/backend/internal/models"
)

func newTestStore(t *testing.T) *SampleStore {
	t.Helper()
	store, err := NewSampleStore(t.TempDir(), "test-session")
	if err != nil {
		t.Fatalf("NewSampleStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSampleStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	samples := make([]models.FreqSample, 0, 100)
	for f := 1.0; f <= 100.0; f += 1.0 {
		d := (f - 60.0) / 4.0
		samples = append(samples, models.FreqSample{
			Freq: f,
			PSD:  math.Exp(-d * d),
			PSDX: 0.5,
		})
	}
	if err := store.Insert(samples); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if store.Len() != 100 {
		t.Errorf("Len = %d, want 100", store.Len())
	}

	t.Run("query range", func(t *testing.T) {
		got, err := store.QueryRange(ctx, 10.0, 19.5)
		if err != nil {
			t.Fatalf("QueryRange failed: %v", err)
		}
		if len(got) != 10 {
			t.Fatalf("range size = %d, want 10", len(got))
		}
		if got[0].Freq != 10.0 || got[9].Freq != 19.0 {
			t.Errorf("range bounds = %v..%v", got[0].Freq, got[9].Freq)
		}
		if got[0].PSDX != 0.5 {
			t.Errorf("psd_x = %v", got[0].PSDX)
		}
	})

	t.Run("peak freq", func(t *testing.T) {
		peak, err := store.PeakFreq(ctx)
		if err != nil {
			t.Fatalf("PeakFreq failed: %v", err)
		}
		if peak != 60.0 {
			t.Errorf("peak = %v, want 60", peak)
		}
	})

	t.Run("graph full resolution", func(t *testing.T) {
		points, err := store.Graph(ctx, 200)
		if err != nil {
			t.Fatalf("Graph failed: %v", err)
		}
		if len(points) != 100 {
			t.Errorf("points = %d, want all 100", len(points))
		}
	})

	t.Run("graph downsampled", func(t *testing.T) {
		points, err := store.Graph(ctx, 10)
		if err != nil {
			t.Fatalf("Graph failed: %v", err)
		}
		if len(points) == 0 || len(points) > 10 {
			t.Fatalf("points = %d, want <= 10", len(points))
		}
		for i := 1; i < len(points); i++ {
			if points[i].Freq <= points[i-1].Freq {
				t.Errorf("points not ordered by frequency: %v", points)
			}
		}
	})
}

func TestSampleStoreEmpty(t *testing.T) {
	store := newTestStore(t)

	points, err := store.Graph(context.Background(), 100)
	if err != nil {
		t.Fatalf("Graph failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("points = %v, want none", points)
	}
}
