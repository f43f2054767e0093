// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/session"
	"github.com/printwizard/backend/internal/state"
	"github.com/printwizard/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	SessionMgr *session.Manager
	State      *state.Store
	BoardsDir  string
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Upload    UploadHandler
	Board     BoardHandler
	Resonance ResonanceHandler
	State     StateHandler
	Config    ConfigHandler
	WS        *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.SessionMgr),
		Upload:    NewUploadHandler(deps.Store),
		Board:     NewBoardHandler(deps.Store, deps.BoardsDir),
		Resonance: NewResonanceHandler(deps.Store, deps.SessionMgr),
		State:     NewStateHandler(deps.State),
		Config:    NewConfigHandler(deps.State, deps.BoardsDir),
		WS:        NewWebSocketHandler(deps.SessionMgr),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	// Health check
	e.GET("/api/health", h.Health.HandleHealth)

	// File upload routes
	fileGroup := e.Group("/api/files")
	fileGroup.POST("/upload", h.Upload.HandleUploadFile)
	fileGroup.GET("/recent", h.Upload.HandleGetRecentFiles)
	fileGroup.GET("/:id", h.Upload.HandleGetFile)
	fileGroup.DELETE("/:id", h.Upload.HandleDeleteFile)
	fileGroup.PUT("/:id", h.Upload.HandleRenameFile)

	// Board conversion and catalog
	boardGroup := e.Group("/api/boards")
	boardGroup.POST("/convert", h.Board.HandleConvertBoard)
	boardGroup.GET("", h.Board.HandleListBoards)
	boardGroup.GET("/:id", h.Board.HandleGetBoard)
	boardGroup.DELETE("/:id", h.Board.HandleDeleteBoard)

	// Resonance analysis sessions
	resGroup := e.Group("/api/resonance")
	resGroup.POST("/analyze", h.Resonance.HandleStartAnalysis)
	resGroup.GET("/:sessionId/status", h.Resonance.HandleAnalysisStatus)
	resGroup.GET("/:sessionId/report", h.Resonance.HandleAnalysisReport)
	resGroup.GET("/:sessionId/graph", h.Resonance.HandleAnalysisGraph)
	resGroup.POST("/:sessionId/keepalive", h.Resonance.HandleSessionKeepAlive)

	// Wizard state. Static routes win over the :key param route, so the
	// backups subtree stays reachable.
	stateGroup := e.Group("/api/state")
	stateGroup.GET("", h.State.HandleGetState)
	stateGroup.PUT("", h.State.HandlePutState)
	stateGroup.GET("/backups", h.State.HandleListBackups)
	stateGroup.POST("/backups", h.State.HandleCreateBackup)
	stateGroup.POST("/backups/:id/restore", h.State.HandleRestoreBackup)
	stateGroup.DELETE("/backups/:id", h.State.HandleDeleteBackup)
	stateGroup.GET("/:key", h.State.HandleGetKey)
	stateGroup.PUT("/:key", h.State.HandlePutKey)
	stateGroup.DELETE("/:key", h.State.HandleDeleteKey)

	// Config rendering
	configGroup := e.Group("/api/config")
	configGroup.POST("/render", h.Config.HandleRenderConfig)
	configGroup.POST("/import", h.Config.HandleImportConfig)

	// Session status push
	e.GET("/api/ws/sessions", h.WS.HandleWebSocket)
}
