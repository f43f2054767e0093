package resonance

import (
	"fmt"
	"math"
	"sort"

	"github.com/printwizard/backend/internal/models"
)

const (
	fitMinFreq       = 5.0
	fitMaxFreq       = 200.0
	fitMaxShaperFreq = 150.0
)

// testDampingRatios are the damping ratios each candidate frequency is
// evaluated at; the worst is unknown for a real printer so several are tried.
var testDampingRatios = []float64{0.075, 0.1, 0.15}

// CalibrationData holds a measured frequency response. PsdSum is always
// populated; the per-axis slices may be nil for combined-only sources.
type CalibrationData struct {
	FreqBins []float64
	PsdSum   []float64
	PsdX     []float64
	PsdY     []float64
	PsdZ     []float64

	normalized bool
}

// NewCalibrationFromSamples builds calibration data from pre-computed
// frequency samples, e.g. a calibration CSV.
func NewCalibrationFromSamples(samples []models.FreqSample) *CalibrationData {
	cd := &CalibrationData{
		FreqBins: make([]float64, len(samples)),
		PsdSum:   make([]float64, len(samples)),
	}
	perAxis := false
	for _, s := range samples {
		if s.PSDX != 0 || s.PSDY != 0 || s.PSDZ != 0 {
			perAxis = true
			break
		}
	}
	if perAxis {
		cd.PsdX = make([]float64, len(samples))
		cd.PsdY = make([]float64, len(samples))
		cd.PsdZ = make([]float64, len(samples))
	}
	for i, s := range samples {
		cd.FreqBins[i] = s.Freq
		cd.PsdSum[i] = s.PSD
		if perAxis {
			cd.PsdX[i] = s.PSDX
			cd.PsdY[i] = s.PSDY
			cd.PsdZ[i] = s.PSDZ
		}
	}
	return cd
}

// normalizeToFrequencies scales the PSD down by frequency and suppresses
// low-frequency noise below twice the fit floor. Idempotent.
func (cd *CalibrationData) normalizeToFrequencies() {
	if cd.normalized {
		return
	}
	cd.normalized = true
	for _, psd := range [][]float64{cd.PsdSum, cd.PsdX, cd.PsdY, cd.PsdZ} {
		if psd == nil {
			continue
		}
		for i := range psd {
			psd[i] /= cd.FreqBins[i] + 0.1
			if cd.FreqBins[i] < 2.0*fitMinFreq {
				r := 2.0 * fitMinFreq / (cd.FreqBins[i] + 0.1)
				psd[i] *= math.Exp(-r*r + 1.0)
			}
		}
	}
}

// psdForAxis selects an axis PSD, falling back to the combined one.
func (cd *CalibrationData) psdForAxis(axis string) []float64 {
	switch axis {
	case "x":
		if cd.PsdX != nil {
			return cd.PsdX
		}
	case "y":
		if cd.PsdY != nil {
			return cd.PsdY
		}
	case "z":
		if cd.PsdZ != nil {
			return cd.PsdZ
		}
	}
	return cd.PsdSum
}

// PeakFreq returns the frequency bin with the highest combined power inside
// the fit band.
func (cd *CalibrationData) PeakFreq() float64 {
	best, bestPsd := 0.0, -1.0
	for i, f := range cd.FreqBins {
		if f < fitMinFreq || f > fitMaxFreq {
			continue
		}
		if cd.PsdSum[i] > bestPsd {
			best, bestPsd = f, cd.PsdSum[i]
		}
	}
	return best
}

// shaperResponse computes |H(f)| of a shaper at one frequency.
func shaperResponse(freq float64, A, T []float64) float64 {
	sumA := 0.0
	for _, a := range A {
		sumA += a
	}
	omega := 2.0 * math.Pi * freq
	re, im := 0.0, 0.0
	for i, a := range A {
		phase := omega * T[i]
		re += (a / sumA) * math.Cos(phase)
		im += (a / sumA) * math.Sin(phase)
	}
	return math.Sqrt(re*re + im*im)
}

// residualVibration estimates the vibration remaining after shaping, as the
// PSD-weighted RMS of the shaper response over the fit band.
func residualVibration(freqBins, psd, A, T []float64) float64 {
	totalVibr, totalPsd := 0.0, 0.0
	for i, freq := range freqBins {
		if freq < fitMinFreq || freq > fitMaxFreq {
			continue
		}
		r := shaperResponse(freq, A, T)
		totalVibr += psd[i] * r * r
		totalPsd += psd[i]
	}
	if totalPsd == 0 {
		return 1.0
	}
	return math.Sqrt(totalVibr / totalPsd)
}

// shaperSmoothing approximates smoothing by the shaper duration.
func shaperSmoothing(T []float64) float64 {
	maxT := 0.0
	for _, t := range T {
		if t > maxT {
			maxT = t
		}
	}
	return maxT
}

// maxAccelForSmoothing projects the highest usable acceleration for a given
// smoothing, assuming a 500 mm/s peak velocity.
func maxAccelForSmoothing(smoothing float64) float64 {
	if smoothing <= 0 {
		return 10000.0
	}
	return 500.0 / smoothing
}

// fitShaper finds the best frequency for one shaper type against a PSD.
// Returns nil when no candidate passes the smoothing constraint.
func fitShaper(def *ShaperDef, freqBins, psd []float64, maxSmoothing float64) *models.ShaperResult {
	var best *models.ShaperResult
	for freq := def.MinFreq; freq <= fitMaxShaperFreq; freq += 1.0 {
		for _, dampingRatio := range testDampingRatios {
			if dampingRatio > def.MaxDampingRatio {
				continue
			}
			A, T := def.Init(freq, dampingRatio)

			smoothing := shaperSmoothing(T)
			if maxSmoothing > 0 && smoothing > maxSmoothing {
				continue
			}

			vibr := residualVibration(freqBins, psd, A, T)
			score := vibr * math.Pow(smoothing+0.1, 0.65)

			if best == nil || score < best.Score {
				best = &models.ShaperResult{
					Type:      def.Name,
					Freq:      freq,
					Vibration: vibr,
					Smoothing: smoothing,
					MaxAccel:  maxAccelForSmoothing(smoothing),
					Score:     score,
				}
			}
		}
	}
	return best
}

// FitShapers evaluates every supported shaper type against the measured
// response and returns a report with candidates ranked best-first.
func FitShapers(cd *CalibrationData, axis string, maxSmoothing float64) (*models.ShaperReport, error) {
	if cd == nil || len(cd.FreqBins) == 0 {
		return nil, fmt.Errorf("no calibration data")
	}
	cd.normalizeToFrequencies()
	psd := cd.psdForAxis(axis)

	results := make([]models.ShaperResult, 0, len(ShaperDefs))
	for i := range ShaperDefs {
		if r := fitShaper(&ShaperDefs[i], cd.FreqBins, psd, maxSmoothing); r != nil {
			results = append(results, *r)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no shaper satisfies max smoothing %.3f", maxSmoothing)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	report := &models.ShaperReport{
		Axis:        axis,
		SampleCount: len(cd.FreqBins),
		PeakFreq:    cd.PeakFreq(),
		Recommended: &results[0],
		Results:     results,
	}
	return report, nil
}
