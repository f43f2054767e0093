// handlers_resonance.go - Resonance analysis session handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/session"
	"github.com/printwizard/backend/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
)

// ResonanceHandlerImpl implements the ResonanceHandler interface
type ResonanceHandlerImpl struct {
	store      storage.Store
	sessionMgr SessionManager
}

// NewResonanceHandler creates a new resonance handler instance
func NewResonanceHandler(store storage.Store, sessionMgr SessionManager) ResonanceHandler {
	return &ResonanceHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
	}
}

type startAnalysisRequest struct {
	FileID       string  `json:"fileId"`
	Axis         string  `json:"axis"`
	MaxSmoothing float64 `json:"maxSmoothing"`
	Toolboard    bool    `json:"toolboard"`
	Source       string  `json:"source"`
	MCUName      string  `json:"mcuName"`
}

// HandleStartAnalysis starts a background analysis session for an uploaded
// file and returns 202 with the pending session
func (h *ResonanceHandlerImpl) HandleStartAnalysis(c echo.Context) error {
	var req startAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}
	if req.MaxSmoothing < 0 {
		return NewBadRequestError("maxSmoothing must not be negative", nil)
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	path, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	sess, err := h.sessionMgr.StartSession(req.FileID, path, info.Name, session.Options{
		Toolboard:    req.Toolboard,
		Source:       req.Source,
		MCUName:      req.MCUName,
		Axis:         req.Axis,
		MaxSmoothing: req.MaxSmoothing,
	})
	if err != nil {
		return NewConflictError(err.Error())
	}

	return c.JSON(http.StatusAccepted, sess)
}

// HandleAnalysisStatus returns the current status of an analysis session
func (h *ResonanceHandlerImpl) HandleAnalysisStatus(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	// Polling counts as activity; keeps the session out of cleanup
	h.sessionMgr.TouchSession(id)

	return c.JSON(http.StatusOK, sess)
}

// HandleAnalysisReport returns the shaper fit report of a completed session
func (h *ResonanceHandlerImpl) HandleAnalysisReport(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	if sess.Status != models.SessionStatusComplete {
		return NewConflictError("session is not complete: " + string(sess.Status))
	}

	report, ok := h.sessionMgr.GetReport(id)
	if !ok {
		return NewNotFoundError("report", id)
	}

	return c.JSON(http.StatusOK, report)
}

// HandleAnalysisGraph returns the downsampled PSD graph of a session.
// Supports ?maxPoints=N and ?format=msgpack for the plotting frontend.
func (h *ResonanceHandlerImpl) HandleAnalysisGraph(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	maxPoints := 0
	if s := c.QueryParam("maxPoints"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return NewBadRequestError("maxPoints must be a positive integer", err)
		}
		maxPoints = n
	}

	points, ok := h.sessionMgr.GetGraph(c.Request().Context(), id, maxPoints)
	if !ok {
		return NewNotFoundError("graph", id)
	}

	if c.QueryParam("format") == "msgpack" {
		data, err := msgpack.Marshal(points)
		if err != nil {
			return NewInternalError("failed to encode graph", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}

	return c.JSON(http.StatusOK, points)
}

// HandleSessionKeepAlive refreshes a session's last-access time
func (h *ResonanceHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if !h.sessionMgr.TouchSession(id) {
		return NewNotFoundError("session", id)
	}

	return c.NoContent(http.StatusNoContent)
}
