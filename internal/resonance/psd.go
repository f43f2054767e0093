package resonance

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/printwizard/backend/internal/models"
)

// PSDCalculator computes power spectral density using Welch's method with a
// Kaiser(6.0) window and 50% segment overlap.
type PSDCalculator struct {
	nfft   int
	fft    *fourier.FFT
	window []float64
	scale  float64 // 1 / sum(window^2)
}

// NewPSDCalculator creates a calculator with the given FFT segment length.
func NewPSDCalculator(nfft int) *PSDCalculator {
	window := kaiserWindow(nfft, 6.0)

	var sumSq float64
	for _, w := range window {
		sumSq += w * w
	}

	return &PSDCalculator{
		nfft:   nfft,
		fft:    fourier.NewFFT(nfft),
		window: window,
		scale:  1.0 / sumSq,
	}
}

// kaiserWindow generates a Kaiser window of length n with shape parameter
// beta, matching numpy.kaiser(n, beta).
func kaiserWindow(n int, beta float64) []float64 {
	if n == 1 {
		return []float64{1.0}
	}
	window := make([]float64, n)
	denom := besselI0(beta)
	for i := 0; i < n; i++ {
		x := 2.0*float64(i)/float64(n-1) - 1.0
		window[i] = besselI0(beta*math.Sqrt(1.0-x*x)) / denom
	}
	return window
}

// besselI0 computes the modified Bessel function of the first kind, order 0,
// via the Abramowitz and Stegun polynomial approximation.
func besselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		y := x / 3.75
		y2 := y * y
		return 1.0 + y2*(3.5156229+
			y2*(3.0899424+
				y2*(1.2067492+
					y2*(0.2659732+
						y2*(0.0360768+
							y2*0.0045813)))))
	}
	y := 3.75 / ax
	return (math.Exp(ax) / math.Sqrt(ax)) * (0.39894228 +
		y*(0.01328592+
			y*(0.00225319+
				y*(-0.00157565+
					y*(0.00916281+
						y*(-0.02057706+
							y*(0.02635537+
								y*(-0.01647633+
									y*0.00392377))))))))
}

// PSD computes the one-sided power spectral density of x sampled at fs.
func (pc *PSDCalculator) PSD(x []float64, fs float64) (freqs, psd []float64) {
	overlap := pc.nfft / 2
	step := pc.nfft - overlap

	numBins := pc.nfft/2 + 1
	psdAccum := make([]float64, numBins)
	windowed := make([]float64, pc.nfft)

	numWindows := 0
	for start := 0; start+pc.nfft <= len(x); start += step {
		segment := x[start : start+pc.nfft]

		mean := 0.0
		for _, v := range segment {
			mean += v
		}
		mean /= float64(len(segment))

		for i := 0; i < pc.nfft; i++ {
			windowed[i] = pc.window[i] * (segment[i] - mean)
		}

		coeffs := pc.fft.Coefficients(nil, windowed)
		for i := 0; i < numBins; i++ {
			psdAccum[i] += real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i])
		}
		numWindows++
	}
	if numWindows == 0 {
		return nil, nil
	}

	psd = make([]float64, numBins)
	for i := 0; i < numBins; i++ {
		psd[i] = psdAccum[i] * pc.scale / (fs * float64(numWindows))
		// One-sided spectrum: double everything but DC and Nyquist.
		if i > 0 && i < numBins-1 {
			psd[i] *= 2.0
		}
	}

	freqs = make([]float64, numBins)
	df := fs / float64(pc.nfft)
	for i := 0; i < numBins; i++ {
		freqs[i] = float64(i) * df
	}
	return freqs, psd
}

// ProcessAccelData computes the per-axis frequency response of a raw
// accelerometer dump. Returns nil when the capture is too short for even one
// FFT segment.
func ProcessAccelData(data *models.RawAccelData) *CalibrationData {
	fs := estimateSampleRate(data.Times)
	if fs <= 0 {
		fs = 3200.0 // typical accelerometer rate
	}

	// Segment length for ~10 Hz resolution, rounded to a power of two.
	nfft := nextPowerOf2(int(fs / 10.0))
	if nfft < 64 {
		nfft = 64
	}
	if nfft > 1024 {
		nfft = 1024
	}
	if len(data.Times) < nfft {
		return nil
	}

	calc := NewPSDCalculator(nfft)
	freqs, psdX := calc.PSD(data.AccelX, fs)
	_, psdY := calc.PSD(data.AccelY, fs)
	_, psdZ := calc.PSD(data.AccelZ, fs)
	if freqs == nil {
		return nil
	}

	psdSum := make([]float64, len(psdX))
	for i := range psdSum {
		psdSum[i] = psdX[i] + psdY[i] + psdZ[i]
	}

	return &CalibrationData{
		FreqBins: freqs,
		PsdSum:   psdSum,
		PsdX:     psdX,
		PsdY:     psdY,
		PsdZ:     psdZ,
	}
}

func estimateSampleRate(times []float64) float64 {
	if len(times) < 2 {
		return 0
	}
	totalTime := times[len(times)-1] - times[0]
	if totalTime <= 0 {
		return 0
	}
	return float64(len(times)-1) / totalTime
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
