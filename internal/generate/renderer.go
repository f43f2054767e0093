// Package generate renders firmware configuration text from a board record
// and the wizard state, and imports existing configuration text back into
// state entries. Templates are opaque text: no firmware semantics or
// electrical validation happens here.
package generate

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/state"
)

// Renderer executes a user-supplied template against one board and the
// wizard state store.
type Renderer struct {
	board *models.BoardRecord
	state *state.Store
}

func NewRenderer(board *models.BoardRecord, st *state.Store) *Renderer {
	return &Renderer{board: board, state: st}
}

// Render executes tmplText. Template helpers:
//
//	{{port "motor" "MOTOR_X"}}        the PortRecord, or error if absent
//	{{pin "motor" "MOTOR_X" "step"}}  one role pin, or error if absent
//	{{state "printer.kinematics"}}    a state value, or error if unset
//	{{stateOr "printer.z_offset" "0"}} a state value with default
func (r *Renderer) Render(tmplText string) (string, error) {
	tmpl, err := template.New("config").Funcs(r.funcs()).Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, r.board); err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return b.String(), nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"port": func(category, id string) (*models.PortRecord, error) {
			rec, err := r.lookupPort(category, id)
			if err != nil {
				return nil, err
			}
			return rec, nil
		},
		"pin": func(category, id, role string) (string, error) {
			rec, err := r.lookupPort(category, id)
			if err != nil {
				return "", err
			}
			pin := pinForRole(rec, role)
			if pin == "" {
				return "", fmt.Errorf("port %s has no %s pin", id, role)
			}
			return pin, nil
		},
		"state": func(key string) (string, error) {
			v, ok := r.state.Get(key)
			if !ok {
				return "", fmt.Errorf("state key not set: %s", key)
			}
			return v, nil
		},
		"stateOr": func(key, def string) string {
			if v, ok := r.state.Get(key); ok {
				return v
			}
			return def
		},
	}
}

func (r *Renderer) lookupPort(category, id string) (*models.PortRecord, error) {
	var m models.PortMap
	switch strings.ToLower(category) {
	case "motor":
		m = r.board.MotorPorts
	case "heater":
		m = r.board.HeaterPorts
	case "fan":
		m = r.board.FanPorts
	case "thermistor":
		m = r.board.ThermistorPorts
	case "endstop":
		m = r.board.EndstopPorts
	case "filament":
		m = r.board.FilamentPorts
	case "misc":
		m = r.board.MiscPorts
	default:
		return nil, fmt.Errorf("unknown port category: %s", category)
	}
	rec, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("board %s has no %s port %s", r.board.ID, category, id)
	}
	return rec, nil
}

func pinForRole(rec *models.PortRecord, role string) string {
	switch strings.ToLower(role) {
	case "pin":
		return rec.Pin
	case "step":
		return rec.StepPin
	case "dir":
		return rec.DirPin
	case "enable":
		return rec.EnablePin
	case "uart":
		return rec.UartPin
	case "cs":
		return rec.CSPin
	}
	return ""
}
