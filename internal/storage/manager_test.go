package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/printwizard/backend/internal/models"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	content := "aliases:\n    MCU_FAN0=PA8\n"
	info, err := store.Save("board.cfg", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if info.ID == "" {
		t.Fatal("empty file id")
	}
	if info.Name != "board.cfg" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("size = %d", info.Size)
	}

	got, err := store.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("got id %q, want %q", got.ID, info.ID)
	}

	path, err := store.GetFilePath(info.ID)
	if err != nil {
		t.Fatalf("GetFilePath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read stored file: %v", err)
	}
	if !strings.Contains(string(data), "MCU_FAN0") {
		t.Errorf("stored content = %q", data)
	}

	if _, err := store.Get("missing"); err == nil {
		t.Error("Get of unknown id succeeded")
	}
}

func TestListOrder(t *testing.T) {
	store := newTestStore(t)

	first, _ := store.SaveBytes("first.csv", []byte("a"))
	time.Sleep(5 * time.Millisecond)
	second, _ := store.SaveBytes("second.csv", []byte("b"))

	list, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length = %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("list is not newest-first")
	}

	list, _ = store.List(1)
	if len(list) != 1 {
		t.Errorf("limited list length = %d", len(list))
	}
}

func TestMetadataUpdates(t *testing.T) {
	store := newTestStore(t)
	info, _ := store.SaveBytes("upload.bin", []byte("freq,psd\n"))

	if err := store.SetKind(info.ID, models.FileKindCalibrationCSV); err != nil {
		t.Fatalf("SetKind failed: %v", err)
	}
	got, _ := store.Get(info.ID)
	if got.Kind != models.FileKindCalibrationCSV {
		t.Errorf("kind = %q", got.Kind)
	}

	renamed, err := store.Rename(info.ID, "calibration_data_x.csv")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "calibration_data_x.csv" {
		t.Errorf("name = %q", renamed.Name)
	}

	if err := store.SetKind("missing", "x"); err == nil {
		t.Error("SetKind of unknown id succeeded")
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	info, _ := store.SaveBytes("doomed.cfg", []byte("x"))
	path, _ := store.GetFilePath(info.ID)

	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still on disk after delete")
	}
	if err := store.Delete(info.ID); err == nil {
		t.Error("second delete succeeded")
	}
}
