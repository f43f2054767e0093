// Package parser reads the vendor source files accepted by the wizard:
// board definition .cfg files and resonance test CSVs.
package parser

import (
	"strconv"
	"strings"
)

// Parser sniffs and identifies one source file format.
type Parser interface {
	// Name returns the unique name of the parser.
	Name() string
	// Kind returns the models.FileKind* constant the parser produces.
	Kind() string
	// CanParse returns true if this parser can handle the given file.
	CanParse(filePath string) (bool, error)
}

// Common utilities for parsing

// stripComment removes a trailing # comment from a line.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// splitFloats splits a comma-separated row into float columns. Returns false
// when any column fails to parse.
func splitFloats(line string, want int) ([]float64, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < want {
		return nil, false
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// normalizeHeader lowercases a CSV header row and strips spaces and a
// leading comment marker, so "# Freq, PSD_X" compares as "freq,psd_x".
func normalizeHeader(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "#")
	line = strings.ReplaceAll(line, " ", "")
	return strings.ToLower(line)
}
