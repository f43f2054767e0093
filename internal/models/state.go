package models

import "time"

// BackupInfo describes one saved snapshot of the wizard state store.
type BackupInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	KeyCount  int       `json:"keyCount"`
}
