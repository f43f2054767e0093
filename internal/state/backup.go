package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/printwizard/backend/internal/models"
)

// backupFile is the on-disk shape of one backup: its metadata plus the full
// state snapshot, one JSON file per backup under the backups directory.
type backupFile struct {
	models.BackupInfo
	Values map[string]string `json:"values"`
}

// CreateBackup snapshots the current state under a fresh uuid.
func (s *Store) CreateBackup(name string) (*models.BackupInfo, error) {
	if name == "" {
		name = "backup " + time.Now().Format("2006-01-02 15:04:05")
	}

	s.mu.RLock()
	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	s.mu.RUnlock()

	bf := backupFile{
		BackupInfo: models.BackupInfo{
			ID:        uuid.New().String(),
			Name:      name,
			CreatedAt: time.Now(),
			KeyCount:  len(values),
		},
		Values: values,
	}

	data, err := json.MarshalIndent(&bf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	path := filepath.Join(s.backupsDir, bf.ID+".json")
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing backup: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("finalizing backup: %w", err)
	}

	info := bf.BackupInfo
	return &info, nil
}

// ListBackups returns all backups, newest first.
func (s *Store) ListBackups() ([]*models.BackupInfo, error) {
	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		return nil, fmt.Errorf("reading backups directory: %w", err)
	}

	var backups []*models.BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		bf, err := s.readBackup(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip unreadable files, the rest of the list still works
		}
		info := bf.BackupInfo
		backups = append(backups, &info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// RestoreBackup replaces the current state with the named backup's snapshot.
func (s *Store) RestoreBackup(id string) error {
	bf, err := s.readBackup(id)
	if err != nil {
		return err
	}
	return s.Replace(bf.Values)
}

// DeleteBackup removes a backup file.
func (s *Store) DeleteBackup(id string) error {
	path := filepath.Join(s.backupsDir, id+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("backup not found: %s", id)
		}
		return fmt.Errorf("deleting backup: %w", err)
	}
	return nil
}

func (s *Store) readBackup(id string) (*backupFile, error) {
	path := filepath.Join(s.backupsDir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup not found: %s", id)
		}
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	var bf backupFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing backup %s: %w", id, err)
	}
	return &bf, nil
}
