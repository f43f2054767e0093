package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
)

const octopusCfg = `[board_pins]
aliases:
    MCU_MOTOR0_STEP=PF13, MCU_MOTOR0_DIR=PF12, MCU_MOTOR0_ENABLE=PF14,
    MCU_FAN0=PA8, MCU_BED=PA7, MCU_TB=PF3, MCU_X_MIN=PC1
`

func TestConvertBoard(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStorage(t.TempDir())
	boardsDir := t.TempDir()
	h := NewBoardHandler(store, boardsDir)

	info, err := store.SaveBytes("btt_octopus_v1.1.cfg", []byte(octopusCfg))
	assert.NoError(t, err)

	// 1. Convert with defaults; the board name comes from the file name
	body := `{"fileId":"` + info.ID + `","source":"klipper"}`
	req := httptest.NewRequest(http.MethodPost, "/api/boards/convert", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.HandleConvertBoard(c)) {
		assert.Equal(t, http.StatusCreated, rec.Code)

		var record models.BoardRecord
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		assert.Equal(t, "btt-octopus-v1-1", record.ID)
		assert.Equal(t, "btt octopus v1.1", record.Name)
		assert.Equal(t, models.ManufacturerBigTreeTech, record.Manufacturer)
		assert.Equal(t, "klipper", record.Source)
		assert.Contains(t, record.MotorPorts, "MOTOR_0")
	}

	// 2. A request name overrides the file name
	body = `{"fileId":"` + info.ID + `","name":"Custom Board"}`
	req = httptest.NewRequest(http.MethodPost, "/api/boards/convert", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if assert.NoError(t, h.HandleConvertBoard(c)) {
		assert.Contains(t, rec.Body.String(), `"custom-board"`)
	}

	// 3. Unknown file id
	req = httptest.NewRequest(http.MethodPost, "/api/boards/convert", strings.NewReader(`{"fileId":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err = h.HandleConvertBoard(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}

	// 4. A file without an alias block is unprocessable
	junk, _ := store.SaveBytes("junk.cfg", []byte("no aliases here\n"))
	req = httptest.NewRequest(http.MethodPost, "/api/boards/convert", strings.NewReader(`{"fileId":"`+junk.ID+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err = h.HandleConvertBoard(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusUnprocessableEntity, err.(*APIError).Status)
	}

	// 5. A name that slugs to nothing is unprocessable
	body = `{"fileId":"` + info.ID + `","name":"___"}`
	req = httptest.NewRequest(http.MethodPost, "/api/boards/convert", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err = h.HandleConvertBoard(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusUnprocessableEntity, err.(*APIError).Status)
	}
}

func TestBoardCatalog(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStorage(t.TempDir())
	boardsDir := t.TempDir()
	h := NewBoardHandler(store, boardsDir)

	info, _ := store.SaveBytes("btt_octopus_v1.1.cfg", []byte(octopusCfg))
	req := httptest.NewRequest(http.MethodPost, "/api/boards/convert", strings.NewReader(`{"fileId":"`+info.ID+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	assert.NoError(t, h.HandleConvertBoard(e.NewContext(req, rec)))

	// 1. List shows the converted board summary
	req = httptest.NewRequest(http.MethodGet, "/api/boards", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.HandleListBoards(c)) {
		var summaries []boardSummary
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
		assert.Len(t, summaries, 1)
		assert.Equal(t, "btt-octopus-v1-1", summaries[0].ID)
		assert.Equal(t, 5, summaries[0].PortCount)
	}

	// 2. Get returns the full record
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("btt-octopus-v1-1")
	if assert.NoError(t, h.HandleGetBoard(c)) {
		assert.Contains(t, rec.Body.String(), `"motor_ports"`)
	}

	// 3. Ids cannot escape the catalog directory
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("../../etc/passwd")
	err := h.HandleGetBoard(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}

	// 4. Delete empties the catalog
	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("btt-octopus-v1-1")
	if assert.NoError(t, h.HandleDeleteBoard(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/boards", nil)
	rec = httptest.NewRecorder()
	if assert.NoError(t, h.HandleListBoards(e.NewContext(req, rec))) {
		assert.Equal(t, "[]\n", rec.Body.String())
	}
}
