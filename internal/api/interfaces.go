// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/session"
)

// UploadHandler handles file upload operations
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// BoardHandler handles board conversion and the converted-board catalog
type BoardHandler interface {
	HandleConvertBoard(c echo.Context) error
	HandleListBoards(c echo.Context) error
	HandleGetBoard(c echo.Context) error
	HandleDeleteBoard(c echo.Context) error
}

// ResonanceHandler handles resonance analysis sessions
type ResonanceHandler interface {
	HandleStartAnalysis(c echo.Context) error
	HandleAnalysisStatus(c echo.Context) error
	HandleAnalysisReport(c echo.Context) error
	HandleAnalysisGraph(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
}

// StateHandler handles wizard state and its backups
type StateHandler interface {
	HandleGetState(c echo.Context) error
	HandlePutState(c echo.Context) error
	HandleGetKey(c echo.Context) error
	HandlePutKey(c echo.Context) error
	HandleDeleteKey(c echo.Context) error
	HandleCreateBackup(c echo.Context) error
	HandleListBackups(c echo.Context) error
	HandleRestoreBackup(c echo.Context) error
	HandleDeleteBackup(c echo.Context) error
}

// ConfigHandler handles config rendering and importing
type ConfigHandler interface {
	HandleRenderConfig(c echo.Context) error
	HandleImportConfig(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the session surface the handlers need.
// This allows mocking in tests
type SessionManager interface {
	StartSession(fileID, filePath, fileName string, opts session.Options) (*models.AnalysisSession, error)
	GetSession(id string) (*models.AnalysisSession, bool)
	TouchSession(id string) bool
	GetReport(id string) (*models.ShaperReport, bool)
	GetGraph(ctx context.Context, id string, maxPoints int) ([]models.GraphPoint, bool)
	Snapshot() []*models.AnalysisSession
}
