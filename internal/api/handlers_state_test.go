package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/state"
	"github.com/stretchr/testify/assert"
)

func newStateHandler(t *testing.T) StateHandler {
	t.Helper()
	st, err := state.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create state store: %v", err)
	}
	return NewStateHandler(st)
}

func TestStateHandlers(t *testing.T) {
	e := echo.New()
	h := newStateHandler(t)

	// 1. Batch update
	body := `{"printer.kinematics":"corexy","stepper.x.port":"MOTOR_0","stepper.y.port":"MOTOR_1"}`
	req := httptest.NewRequest(http.MethodPut, "/api/state", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.HandlePutState(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"updated":3`)
	}

	// 2. Empty batch is rejected
	req = httptest.NewRequest(http.MethodPut, "/api/state", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err := h.HandlePutState(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusBadRequest, err.(*APIError).Status)
	}

	// 3. Full state, then filtered by prefix
	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if assert.NoError(t, h.HandleGetState(c)) {
		var values map[string]string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &values))
		assert.Len(t, values, 3)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/state?prefix=stepper", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if assert.NoError(t, h.HandleGetState(c)) {
		var values map[string]string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &values))
		assert.Len(t, values, 2)
		assert.Equal(t, "MOTOR_0", values["stepper.x.port"])
	}

	// 4. Single-key get, put, delete
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("key")
	c.SetParamValues("printer.kinematics")
	if assert.NoError(t, h.HandleGetKey(c)) {
		assert.Contains(t, rec.Body.String(), `"corexy"`)
	}

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"value":"cartesian"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("key")
	c.SetParamValues("printer.kinematics")
	if assert.NoError(t, h.HandlePutKey(c)) {
		assert.Contains(t, rec.Body.String(), `"cartesian"`)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("key")
	c.SetParamValues("printer.kinematics")
	if assert.NoError(t, h.HandleDeleteKey(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	err = h.HandleGetKey(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}

	// 5. Prefix delete removes the stepper subtree
	req = httptest.NewRequest(http.MethodDelete, "/?prefix=true", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("key")
	c.SetParamValues("stepper")
	if assert.NoError(t, h.HandleDeleteKey(c)) {
		assert.Contains(t, rec.Body.String(), `"removed":2`)
	}
}

func TestBackupHandlers(t *testing.T) {
	e := echo.New()
	h := newStateHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/api/state", strings.NewReader(`{"printer.kinematics":"corexy"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	assert.NoError(t, h.HandlePutState(e.NewContext(req, rec)))

	// 1. Create a named backup
	req = httptest.NewRequest(http.MethodPost, "/api/state/backups", strings.NewReader(`{"name":"before-tuning"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var backup models.BackupInfo
	if assert.NoError(t, h.HandleCreateBackup(c)) {
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &backup))
		assert.Equal(t, "before-tuning", backup.Name)
		assert.Equal(t, 1, backup.KeyCount)
	}

	// 2. Mutate the state, then restore
	req = httptest.NewRequest(http.MethodPut, "/api/state", strings.NewReader(`{"printer.kinematics":"delta","extra":"1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	assert.NoError(t, h.HandlePutState(e.NewContext(req, rec)))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(backup.ID)
	if assert.NoError(t, h.HandleRestoreBackup(c)) {
		assert.Contains(t, rec.Body.String(), `"keys":1`)
	}

	// 3. List, then delete
	req = httptest.NewRequest(http.MethodGet, "/api/state/backups", nil)
	rec = httptest.NewRecorder()
	if assert.NoError(t, h.HandleListBackups(e.NewContext(req, rec))) {
		assert.Contains(t, rec.Body.String(), backup.ID)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(backup.ID)
	if assert.NoError(t, h.HandleDeleteBackup(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	err := h.HandleRestoreBackup(c)
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
	}
}
