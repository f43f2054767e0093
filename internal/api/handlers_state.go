// handlers_state.go - Wizard state and backup handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/state"
)

// StateHandlerImpl implements the StateHandler interface
type StateHandlerImpl struct {
	state *state.Store
}

// NewStateHandler creates a new state handler instance
func NewStateHandler(st *state.Store) StateHandler {
	return &StateHandlerImpl{state: st}
}

// HandleGetState returns the full wizard state, optionally filtered by
// ?prefix=
func (h *StateHandlerImpl) HandleGetState(c echo.Context) error {
	values := h.state.Snapshot()

	if prefix := c.QueryParam("prefix"); prefix != "" {
		filtered := make(map[string]string)
		for _, k := range h.state.Keys(prefix) {
			filtered[k] = values[k]
		}
		values = filtered
	}

	return c.JSON(http.StatusOK, values)
}

// HandlePutState merges a batch of key/value pairs into the wizard state
func (h *StateHandlerImpl) HandlePutState(c echo.Context) error {
	var values map[string]string
	if err := c.Bind(&values); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if len(values) == 0 {
		return NewBadRequestError("empty state update", nil)
	}

	if err := h.state.SetMany(values); err != nil {
		return NewInternalError("failed to persist state", err)
	}

	return c.JSON(http.StatusOK, map[string]int{"updated": len(values)})
}

// HandleGetKey returns a single state value
func (h *StateHandlerImpl) HandleGetKey(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return NewValidationError("key")
	}

	value, ok := h.state.Get(key)
	if !ok {
		return NewNotFoundError("state key", key)
	}

	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": value})
}

type putKeyRequest struct {
	Value string `json:"value"`
}

// HandlePutKey sets a single state value
func (h *StateHandlerImpl) HandlePutKey(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return NewValidationError("key")
	}

	var req putKeyRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := h.state.Set(key, req.Value); err != nil {
		return NewInternalError("failed to persist state", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// HandleDeleteKey removes a single key, or a whole subtree with ?prefix=true
func (h *StateHandlerImpl) HandleDeleteKey(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return NewValidationError("key")
	}

	if c.QueryParam("prefix") == "true" {
		removed, err := h.state.DeletePrefix(key)
		if err != nil {
			return NewInternalError("failed to persist state", err)
		}
		return c.JSON(http.StatusOK, map[string]int{"removed": removed})
	}

	if _, ok := h.state.Get(key); !ok {
		return NewNotFoundError("state key", key)
	}
	if err := h.state.Delete(key); err != nil {
		return NewInternalError("failed to persist state", err)
	}

	return c.NoContent(http.StatusNoContent)
}

type createBackupRequest struct {
	Name string `json:"name"`
}

// HandleCreateBackup snapshots the current state into a named backup
func (h *StateHandlerImpl) HandleCreateBackup(c echo.Context) error {
	var req createBackupRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	info, err := h.state.CreateBackup(req.Name)
	if err != nil {
		return NewInternalError("failed to create backup", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleListBackups returns all backups, newest first
func (h *StateHandlerImpl) HandleListBackups(c echo.Context) error {
	backups, err := h.state.ListBackups()
	if err != nil {
		return NewInternalError("failed to list backups", err)
	}

	return c.JSON(http.StatusOK, backups)
}

// HandleRestoreBackup replaces the current state with a backup's contents
func (h *StateHandlerImpl) HandleRestoreBackup(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.state.RestoreBackup(id); err != nil {
		return NewNotFoundError("backup", id)
	}

	return c.JSON(http.StatusOK, map[string]int{"keys": h.state.Len()})
}

// HandleDeleteBackup removes a backup
func (h *StateHandlerImpl) HandleDeleteBackup(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.state.DeleteBackup(id); err != nil {
		return NewNotFoundError("backup", id)
	}

	return c.NoContent(http.StatusNoContent)
}
