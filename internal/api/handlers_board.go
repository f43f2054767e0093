// handlers_board.go - Board conversion and catalog handlers
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/classify"
	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/parser"
	"github.com/printwizard/backend/internal/storage"
)

// BoardHandlerImpl implements the BoardHandler interface
type BoardHandlerImpl struct {
	store     storage.Store
	boardsDir string
}

// NewBoardHandler creates a new board handler instance
func NewBoardHandler(store storage.Store, boardsDir string) BoardHandler {
	return &BoardHandlerImpl{store: store, boardsDir: boardsDir}
}

type convertBoardRequest struct {
	FileID    string `json:"fileId"`
	Name      string `json:"name"`
	Toolboard bool   `json:"toolboard"`
	Source    string `json:"source"`
	MCUName   string `json:"mcuName"`
}

// HandleConvertBoard converts an uploaded board definition file into a
// normalized board record and stores it in the catalog
func (h *BoardHandlerImpl) HandleConvertBoard(c echo.Context) error {
	var req convertBoardRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	path, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	bf, err := parser.ParseBoardFile(path)
	if err != nil {
		return NewUnprocessableError("file contains no pin alias definitions", err)
	}

	// Request fields override the file and its overlay; the uploaded
	// display name is the fallback board name.
	name := bf.Name
	if name == "" {
		name = parser.BoardNameFromFile(info.Name)
	}
	if req.Name != "" {
		name = req.Name
	}

	opts := classify.Options{
		Toolboard: bf.Toolboard || req.Toolboard,
		Source:    bf.Source,
		MCUName:   bf.MCUName,
	}
	if req.Source != "" {
		opts.Source = req.Source
	}
	if req.MCUName != "" {
		opts.MCUName = req.MCUName
	}

	record := classify.Board(name, bf.Aliases, opts)
	if record.ID == "" {
		return NewUnprocessableError("board name yields an empty identifier", nil)
	}

	if err := writeBoardRecord(h.boardsDir, record); err != nil {
		return NewInternalError("failed to store board record", err)
	}

	return c.JSON(http.StatusCreated, record)
}

// HandleListBoards returns summaries of all converted boards
func (h *BoardHandlerImpl) HandleListBoards(c echo.Context) error {
	records, err := readBoardRecords(h.boardsDir)
	if err != nil {
		return NewInternalError("failed to list boards", err)
	}

	summaries := make([]boardSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, boardSummary{
			ID:           rec.ID,
			Name:         rec.Name,
			Manufacturer: rec.Manufacturer,
			Source:       rec.Source,
			PortCount:    rec.PortCount(),
		})
	}

	return c.JSON(http.StatusOK, summaries)
}

// HandleGetBoard returns a full board record by its id
func (h *BoardHandlerImpl) HandleGetBoard(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, err := readBoardRecord(h.boardsDir, id)
	if err != nil {
		return NewNotFoundError("board", id)
	}

	return c.JSON(http.StatusOK, rec)
}

// HandleDeleteBoard removes a board record from the catalog
func (h *BoardHandlerImpl) HandleDeleteBoard(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	path := boardRecordPath(h.boardsDir, id)
	if path == "" {
		return NewValidationError("id")
	}
	if err := os.Remove(path); err != nil {
		return NewNotFoundError("board", id)
	}

	return c.NoContent(http.StatusNoContent)
}

type boardSummary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Manufacturer models.Manufacturer `json:"manufacturer"`
	Source       string              `json:"source"`
	PortCount    int                 `json:"portCount"`
}

// boardRecordPath resolves a board id to its catalog file. Ids that would
// escape the catalog directory resolve to "".
func boardRecordPath(dir, id string) string {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ""
	}
	return filepath.Join(dir, id+".json")
}

func writeBoardRecord(dir string, rec *models.BoardRecord) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	path := boardRecordPath(dir, rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readBoardRecord(dir, id string) (*models.BoardRecord, error) {
	path := boardRecordPath(dir, id)
	if path == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec models.BoardRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func readBoardRecords(dir string) ([]*models.BoardRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []*models.BoardRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := readBoardRecord(dir, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// Skip unreadable entries instead of failing the listing
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	return records, nil
}
