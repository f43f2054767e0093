package parser

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/printwizard/backend/internal/models"
)

// Calibration CSVs carry a pre-computed frequency response, one row per
// frequency bin. Two header shapes occur in the wild: the per-axis form
// "freq,psd_x,psd_y,psd_z,psd_xyz" and the bare "freq,psd" form.

// CalibrationCSVParser handles frequency-response calibration CSVs.
type CalibrationCSVParser struct{}

func NewCalibrationCSVParser() *CalibrationCSVParser {
	return &CalibrationCSVParser{}
}

func (p *CalibrationCSVParser) Name() string {
	return "calibration_csv"
}

func (p *CalibrationCSVParser) Kind() string {
	return models.FileKindCalibrationCSV
}

func (p *CalibrationCSVParser) CanParse(filePath string) (bool, error) {
	header, err := firstLine(filePath)
	if err != nil {
		return false, err
	}
	h := normalizeHeader(header)
	return h == "freq,psd_x,psd_y,psd_z,psd_xyz" || h == "freq,psd", nil
}

// Parse reads every sample row. Rows that fail to parse are reported, not
// fatal; the surrounding session decides how many errors it tolerates.
func (p *CalibrationCSVParser) Parse(filePath string) ([]models.FreqSample, []*models.ParseError, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var (
		samples   []models.FreqSample
		parseErrs []*models.ParseError
		perAxis   bool
		lineNum   int
	)

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		lineNum++
		perAxis = normalizeHeader(scanner.Text()) != "freq,psd"
	}
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		want := 2
		if perAxis {
			want = 5
		}
		cols, ok := splitFloats(line, want)
		if !ok {
			parseErrs = append(parseErrs, &models.ParseError{
				Line: lineNum, Content: line, Reason: "row does not match calibration CSV format",
			})
			continue
		}

		s := models.FreqSample{Freq: cols[0]}
		if perAxis {
			s.PSDX, s.PSDY, s.PSDZ = cols[1], cols[2], cols[3]
			s.PSD = cols[4]
		} else {
			s.PSD = cols[1]
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, parseErrs, fmt.Errorf("no samples in calibration CSV")
	}
	return samples, parseErrs, nil
}

// AccelCSVParser handles raw accelerometer dumps: "t,accel_x,accel_y,accel_z"
// rows sampled at a few kHz, to be turned into a frequency response by the
// resonance pipeline.
type AccelCSVParser struct{}

func NewAccelCSVParser() *AccelCSVParser {
	return &AccelCSVParser{}
}

func (p *AccelCSVParser) Name() string {
	return "accel_csv"
}

func (p *AccelCSVParser) Kind() string {
	return models.FileKindAccelCSV
}

func (p *AccelCSVParser) CanParse(filePath string) (bool, error) {
	header, err := firstLine(filePath)
	if err != nil {
		return false, err
	}
	h := normalizeHeader(header)
	return h == "t,accel_x,accel_y,accel_z" || h == "time,accel_x,accel_y,accel_z", nil
}

func (p *AccelCSVParser) Parse(filePath string) (*models.RawAccelData, []*models.ParseError, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data := &models.RawAccelData{}
	var parseErrs []*models.ParseError
	lineNum := 0

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		lineNum++ // header
	}
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols, ok := splitFloats(line, 4)
		if !ok {
			parseErrs = append(parseErrs, &models.ParseError{
				Line: lineNum, Content: line, Reason: "row does not match accelerometer CSV format",
			})
			continue
		}
		data.Times = append(data.Times, cols[0])
		data.AccelX = append(data.AccelX, cols[1])
		data.AccelY = append(data.AccelY, cols[2])
		data.AccelZ = append(data.AccelZ, cols[3])
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(data.Times) == 0 {
		return nil, parseErrs, fmt.Errorf("no samples in accelerometer CSV")
	}
	return data, parseErrs, nil
}

// firstLine reads the first non-empty line of a file.
func firstLine(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	return "", scanner.Err()
}
