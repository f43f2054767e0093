// Package resonance turns measured vibration data into an input-shaper
// recommendation: raw accelerometer samples become a power spectral density,
// candidate shapers are fitted against it, and the ranked results are
// assembled into a report.
package resonance

import "math"

const (
	// vibrationReduction is the target vibration reduction factor of the
	// EI shaper family.
	vibrationReduction = 20.0
)

// shaperInitFunc computes the impulse amplitudes A and times T of a shaper
// for a given resonance frequency and damping ratio.
type shaperInitFunc func(freq, dampingRatio float64) (A, T []float64)

// ShaperDef describes one supported input shaper type. MinFreq is the lowest
// frequency the shaper is useful at (chosen so the projected max
// acceleration stays around 1500 mm/s^2).
type ShaperDef struct {
	Name            string
	Init            shaperInitFunc
	MinFreq         float64
	MaxDampingRatio float64
}

// ShaperDefs lists the supported shapers. The fit loop tries them all.
var ShaperDefs = []ShaperDef{
	{Name: "zv", Init: zvShaper, MinFreq: 21, MaxDampingRatio: 0.99},
	{Name: "mzv", Init: mzvShaper, MinFreq: 23, MaxDampingRatio: 0.99},
	{Name: "zvd", Init: zvdShaper, MinFreq: 29, MaxDampingRatio: 0.99},
	{Name: "ei", Init: eiShaper, MinFreq: 29, MaxDampingRatio: 0.4},
	{Name: "2hump_ei", Init: twoHumpEIShaper, MinFreq: 39, MaxDampingRatio: 0.3},
	{Name: "3hump_ei", Init: threeHumpEIShaper, MinFreq: 48, MaxDampingRatio: 0.2},
}

// ShaperByName returns the definition of a shaper type, or nil.
func ShaperByName(name string) *ShaperDef {
	for i := range ShaperDefs {
		if ShaperDefs[i].Name == name {
			return &ShaperDefs[i]
		}
	}
	return nil
}

func zvShaper(freq, dampingRatio float64) ([]float64, []float64) {
	df := math.Sqrt(1.0 - dampingRatio*dampingRatio)
	k := math.Exp(-dampingRatio * math.Pi / df)
	tD := 1.0 / (freq * df)
	return []float64{1.0, k}, []float64{0.0, 0.5 * tD}
}

func zvdShaper(freq, dampingRatio float64) ([]float64, []float64) {
	df := math.Sqrt(1.0 - dampingRatio*dampingRatio)
	k := math.Exp(-dampingRatio * math.Pi / df)
	tD := 1.0 / (freq * df)
	return []float64{1.0, 2.0 * k, k * k}, []float64{0.0, 0.5 * tD, tD}
}

func mzvShaper(freq, dampingRatio float64) ([]float64, []float64) {
	df := math.Sqrt(1.0 - dampingRatio*dampingRatio)
	k := math.Exp(-0.75 * dampingRatio * math.Pi / df)
	tD := 1.0 / (freq * df)

	a1 := 1.0 - 1.0/math.Sqrt(2.0)
	a2 := (math.Sqrt(2.0) - 1.0) * k
	a3 := a1 * k * k

	return []float64{a1, a2, a3}, []float64{0.0, 0.375 * tD, 0.75 * tD}
}

func eiShaper(freq, dampingRatio float64) ([]float64, []float64) {
	vTol := 1.0 / vibrationReduction
	df := math.Sqrt(1.0 - dampingRatio*dampingRatio)
	tD := 1.0 / (freq * df)
	dr := dampingRatio

	a1 := (0.24968 + 0.24961*vTol) + ((0.80008+1.23328*vTol)+
		(0.49599+3.17316*vTol)*dr)*dr
	a3 := (0.25149 + 0.21474*vTol) + ((-0.83249+1.41498*vTol)+
		(0.85181-4.90094*vTol)*dr)*dr
	a2 := 1.0 - a1 - a3

	t2 := 0.4999 + (((0.46159+8.57843*vTol)*vTol)+
		(((4.26169-108.644*vTol)*vTol)+
			((1.75601+336.989*vTol)*vTol)*dr)*dr)*dr

	return []float64{a1, a2, a3}, []float64{0.0, t2 * tD, tD}
}

// expansionShaper evaluates polynomial-in-damping-ratio expansion
// coefficients for the multi-hump EI shapers.
func expansionShaper(freq, dampingRatio float64, t, a [][]float64) ([]float64, []float64) {
	tau := 1.0 / freq
	n := len(a)
	k := len(a[0])

	T := make([]float64, n)
	A := make([]float64, n)
	for i := 0; i < n; i++ {
		u := t[i][k-1]
		v := a[i][k-1]
		for j := 0; j < k-1; j++ {
			u = u*dampingRatio + t[i][k-j-2]
			v = v*dampingRatio + a[i][k-j-2]
		}
		T[i] = u * tau
		A[i] = v
	}
	return A, T
}

func twoHumpEIShaper(freq, dampingRatio float64) ([]float64, []float64) {
	t := [][]float64{
		{0., 0., 0., 0.},
		{0.49890, 0.16270, -0.54262, 6.16180},
		{0.99748, 0.18382, -1.58270, 8.17120},
		{1.49920, -0.09297, -0.28338, 1.85710},
	}
	a := [][]float64{
		{0.16054, 0.76699, 2.26560, -1.22750},
		{0.33911, 0.45081, -2.58080, 1.73650},
		{0.34089, -0.61533, -0.68765, 0.42261},
		{0.15997, -0.60246, 1.00280, -0.93145},
	}
	return expansionShaper(freq, dampingRatio, t, a)
}

func threeHumpEIShaper(freq, dampingRatio float64) ([]float64, []float64) {
	t := [][]float64{
		{0., 0., 0., 0.},
		{0.49974, 0.23834, 0.44559, 12.4720},
		{0.99849, 0.29808, -2.36460, 23.3990},
		{1.49870, 0.10306, -2.01390, 17.0320},
		{1.99960, -0.28231, 0.61536, 5.40450},
	}
	a := [][]float64{
		{0.11275, 0.76632, 3.29160, -1.44380},
		{0.23698, 0.61164, -2.57850, 4.85220},
		{0.30008, -0.19062, -2.14560, 0.13744},
		{0.23775, -0.73297, 0.46885, -2.08650},
		{0.11244, -0.45439, 0.96382, -1.46000},
	}
	return expansionShaper(freq, dampingRatio, t, a)
}
