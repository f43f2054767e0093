// handlers_config.go - Config rendering and import handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/generate"
	"github.com/printwizard/backend/internal/state"
)

// ConfigHandlerImpl implements the ConfigHandler interface
type ConfigHandlerImpl struct {
	state     *state.Store
	boardsDir string
}

// NewConfigHandler creates a new config handler instance
func NewConfigHandler(st *state.Store, boardsDir string) ConfigHandler {
	return &ConfigHandlerImpl{state: st, boardsDir: boardsDir}
}

type renderConfigRequest struct {
	BoardID  string `json:"boardId"`
	Template string `json:"template"`
}

// HandleRenderConfig renders a config template against a converted board
// record and the wizard state
func (h *ConfigHandlerImpl) HandleRenderConfig(c echo.Context) error {
	var req renderConfigRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.BoardID == "" {
		return NewValidationError("boardId")
	}
	if req.Template == "" {
		return NewValidationError("template")
	}

	board, err := readBoardRecord(h.boardsDir, req.BoardID)
	if err != nil {
		return NewNotFoundError("board", req.BoardID)
	}

	rendered, err := generate.NewRenderer(board, h.state).Render(req.Template)
	if err != nil {
		return NewUnprocessableError("template rendering failed", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"rendered": rendered})
}

type importConfigRequest struct {
	Text string `json:"text"`
}

// HandleImportConfig parses an existing printer config and merges its
// settings into the wizard state
func (h *ConfigHandlerImpl) HandleImportConfig(c echo.Context) error {
	var req importConfigRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Text == "" {
		return NewValidationError("text")
	}

	result, err := generate.Import(req.Text, h.state)
	if err != nil {
		return NewUnprocessableError("config import failed", err)
	}

	return c.JSON(http.StatusOK, result)
}
