package models

// FreqSample is one (frequency, power) sample from a resonance calibration
// data set. Per-axis power columns are zero when the source CSV carried only
// a combined power column.
type FreqSample struct {
	Freq float64 `json:"freq"`
	PSD  float64 `json:"psd"`
	PSDX float64 `json:"psd_x,omitempty"`
	PSDY float64 `json:"psd_y,omitempty"`
	PSDZ float64 `json:"psd_z,omitempty"`
}

// RawAccelData holds a raw accelerometer dump, one entry per sample.
type RawAccelData struct {
	Times  []float64
	AccelX []float64
	AccelY []float64
	AccelZ []float64
}

// GraphPoint is a downsampled point for resonance graph rendering.
type GraphPoint struct {
	Freq float64 `json:"freq"`
	PSD  float64 `json:"psd"`
}

// ShaperResult describes how one input-shaper configuration performed
// against a measured resonance profile.
type ShaperResult struct {
	Type      string  `json:"type"`
	Freq      float64 `json:"freq"`
	Vibration float64 `json:"vibration"`
	Smoothing float64 `json:"smoothing"`
	MaxAccel  float64 `json:"max_accel"`
	Score     float64 `json:"score"`
}

// ShaperReport is the JSON artifact of one resonance analysis: the
// recommended shaper, all candidates ranked best-first, and the graph
// points of the measured profile.
type ShaperReport struct {
	Axis        string         `json:"axis,omitempty"`
	SampleCount int            `json:"sampleCount"`
	PeakFreq    float64        `json:"peakFreq"`
	Recommended *ShaperResult  `json:"recommended,omitempty"`
	Results     []ShaperResult `json:"results"`
	Graph       []GraphPoint   `json:"graph,omitempty"`
}
