package resonance

import (
	"math"
	"testing"

	"github.com/printwizard/backend/internal/models"
)

func TestKaiserWindow(t *testing.T) {
	w := kaiserWindow(64, 6.0)
	if len(w) != 64 {
		t.Fatalf("len = %d", len(w))
	}
	// Symmetric, peaking at the center, tapering toward the edges
	for i := 0; i < 32; i++ {
		if math.Abs(w[i]-w[63-i]) > 1e-12 {
			t.Fatalf("window not symmetric at %d: %v vs %v", i, w[i], w[63-i])
		}
	}
	if w[0] > w[31] || w[31] > 1.0+1e-12 {
		t.Errorf("window shape wrong: edge %v center %v", w[0], w[31])
	}
}

func TestBesselI0(t *testing.T) {
	// Reference values from scipy.special.i0
	cases := []struct{ x, want float64 }{
		{0, 1.0},
		{1, 1.2660658777520084},
		{3.75, 9.118927707762172},
		{6, 67.23440697647798},
	}
	for _, tc := range cases {
		got := besselI0(tc.x)
		if math.Abs(got-tc.want)/tc.want > 1e-4 {
			t.Errorf("besselI0(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestPSDSinePeak(t *testing.T) {
	fs := 1000.0
	sineFreq := 125.0
	n := 4096

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2.0 * math.Pi * sineFreq * float64(i) / fs)
	}

	calc := NewPSDCalculator(256)
	freqs, psd := calc.PSD(x, fs)
	if freqs == nil {
		t.Fatal("no PSD computed")
	}
	if len(freqs) != 129 {
		t.Fatalf("bins = %d, want nfft/2+1", len(freqs))
	}

	peakIdx := 0
	for i := range psd {
		if psd[i] > psd[peakIdx] {
			peakIdx = i
		}
	}
	// Frequency resolution is fs/nfft = 3.9 Hz; the peak must land in the
	// bin containing the sine frequency.
	if math.Abs(freqs[peakIdx]-sineFreq) > fs/256.0 {
		t.Errorf("peak at %.1f Hz, want ~%.1f", freqs[peakIdx], sineFreq)
	}

	// Power away from the peak should be orders of magnitude lower
	if psd[10] > psd[peakIdx]/100.0 {
		t.Errorf("spectral leakage too high: %.3g vs peak %.3g", psd[10], psd[peakIdx])
	}
}

func TestPSDTooShort(t *testing.T) {
	calc := NewPSDCalculator(256)
	freqs, psd := calc.PSD(make([]float64, 100), 1000.0)
	if freqs != nil || psd != nil {
		t.Error("expected nil for input shorter than one segment")
	}
}

func TestProcessAccelData(t *testing.T) {
	fs := 3200.0
	n := 8192
	resFreq := 60.0

	data := &models.RawAccelData{
		Times:  make([]float64, n),
		AccelX: make([]float64, n),
		AccelY: make([]float64, n),
		AccelZ: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ti := float64(i) / fs
		data.Times[i] = ti
		data.AccelX[i] = 500.0 * math.Sin(2.0*math.Pi*resFreq*ti)
		data.AccelY[i] = 10.0 * math.Sin(2.0*math.Pi*20.0*ti)
		data.AccelZ[i] = 9810.0 // gravity offset, removed per segment
	}

	cd := ProcessAccelData(data)
	if cd == nil {
		t.Fatal("no calibration data")
	}
	if len(cd.FreqBins) == 0 || len(cd.PsdX) != len(cd.FreqBins) {
		t.Fatalf("bins=%d psdX=%d", len(cd.FreqBins), len(cd.PsdX))
	}

	peak := cd.PeakFreq()
	if math.Abs(peak-resFreq) > 15.0 {
		t.Errorf("peak = %.1f, want ~%.0f", peak, resFreq)
	}
}

func TestProcessAccelDataTooShort(t *testing.T) {
	data := &models.RawAccelData{
		Times:  []float64{0, 0.001},
		AccelX: []float64{1, 2},
		AccelY: []float64{1, 2},
		AccelZ: []float64{1, 2},
	}
	if cd := ProcessAccelData(data); cd != nil {
		t.Error("expected nil for a two-sample capture")
	}
}

func TestEstimateSampleRate(t *testing.T) {
	times := make([]float64, 101)
	for i := range times {
		times[i] = float64(i) * 0.001
	}
	fs := estimateSampleRate(times)
	if math.Abs(fs-1000.0) > 1.0 {
		t.Errorf("fs = %.1f, want 1000", fs)
	}

	if estimateSampleRate([]float64{1}) != 0 {
		t.Error("single sample should yield 0")
	}
}
