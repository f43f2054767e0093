package models

import "time"

// Source file kinds recognized by the parser registry.
const (
	FileKindBoardCfg       = "board_cfg"
	FileKindCalibrationCSV = "calibration_csv"
	FileKindAccelCSV       = "accel_csv"
)

// FileInfo represents metadata about an uploaded source file.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Kind       string    `json:"kind,omitempty"` // set once a parser has claimed the file
	Status     string    `json:"status"`         // "uploaded", "processing", "processed", "error"
}
