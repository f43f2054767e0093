package classify

import (
	"regexp"
	"strings"

	"github.com/printwizard/backend/internal/models"
)

// motorRule matches one vendor naming convention for stepper-driver aliases.
// Rules are tried in table order and the first matching rule claims the key;
// several patterns are near-prefixes of one another, so the order below is a
// load-bearing part of the classification contract.
type motorRule struct {
	name string
	re   *regexp.Regexp
	id   func(m []string) string
}

// motorRules in priority order: numbered conventions first, then the
// high-voltage stepper bank, then DRIVEn, then the axis-letter families,
// then extruder-numbered keys.
var motorRules = []motorRule{
	{"motor_n", regexp.MustCompile(`^MCU_MOTOR(\d+)_([A-Z_]+)$`), matchIndex},
	{"m_n", regexp.MustCompile(`^MCU_M(\d+)_([A-Z_]+)$`), matchIndex},
	{"s_n", regexp.MustCompile(`^MCU_S(\d+)_([A-Z_]+)$`), matchIndex},
	{"stepper_n", regexp.MustCompile(`^MCU_STEPPER(\d+)_([A-Z_]+)$`), matchIndex},
	{"hv_stepper_n", regexp.MustCompile(`^MCU_HV_?STEPPER(\d+)_([A-Z_]+)$`), func(m []string) string { return "HV" + m[1] }},
	{"drive_n", regexp.MustCompile(`^MCU_DRIVE(\d+)_([A-Z_]+)$`), matchIndex},
	{"axis_m", regexp.MustCompile(`^MCU_([XYZ])M_([A-Z_]+)$`), matchIndex},
	{"axis_mot", regexp.MustCompile(`^MCU_([XYZ])_MOT_([A-Z_]+)$`), matchIndex},
	{"axis_bare", regexp.MustCompile(`^MCU_([XYZ])_([A-Z_]+)$`), matchIndex},
	{"extruder_m", regexp.MustCompile(`^MCU_E(\d+)M_([A-Z_]+)$`), func(m []string) string { return "E" + m[1] }},
	{"extruder_n", regexp.MustCompile(`^MCU_E(\d+)_([A-Z_]+)$`), func(m []string) string { return "E" + m[1] }},
}

func matchIndex(m []string) string { return m[1] }

// Toolboard single-driver aliases. When the board is flagged as a toolboard
// and the step alias exists, the whole motor table is bypassed and a single
// EXTRUDER port is synthesized from these four names.
const (
	toolboardStepAlias   = "MCU_TMCDRIVER_STEP"
	toolboardDirAlias    = "MCU_TMCDRIVER_DIR"
	toolboardEnableAlias = "MCU_TMCDRIVER_ENABLE"
	toolboardUartAlias   = "MCU_TMCDRIVER_UART"
)

// applyMotorRole writes a pin into the record field named by the alias
// suffix. Returns false when the suffix is not a known driver role.
func applyMotorRole(rec *models.PortRecord, suffix, pin string) bool {
	switch strings.ToLower(suffix) {
	case "step":
		rec.StepPin = pin
	case "dir":
		rec.DirPin = pin
	case "enable", "en":
		rec.EnablePin = pin
	case "uart":
		// UART and chip-select are multiplexed on one wire on the
		// supported driver breakouts, so both roles get the pin.
		rec.UartPin = pin
		rec.CSPin = pin
	case "cs", "cs_pdn":
		rec.CSPin = pin
		rec.UartPin = pin
	default:
		return false
	}
	return true
}

// motorLabel derives the display label from a motor id.
func motorLabel(id string) string {
	switch id {
	case "X":
		return "X Stepper"
	case "Y":
		return "Y Stepper"
	case "Z":
		return "Z Stepper"
	}
	if strings.HasPrefix(id, "E") {
		return "Extruder " + id
	}
	return "Driver " + id
}

// motorPorts classifies stepper-driver aliases. Keys must be pre-sorted so
// the result is independent of map iteration order.
func motorPorts(keys []string, aliases models.AliasMap, toolboard bool) models.PortMap {
	if toolboard {
		if _, ok := aliases[toolboardStepAlias]; ok {
			return toolboardMotorPorts(aliases)
		}
	}

	ports := make(models.PortMap)
	for _, key := range keys {
		for _, rule := range motorRules {
			m := rule.re.FindStringSubmatch(key)
			if m == nil {
				continue
			}
			id := rule.id(m)
			portID := "MOTOR_" + id
			rec, ok := ports[portID]
			if !ok {
				rec = &models.PortRecord{Label: motorLabel(id)}
			}
			if applyMotorRole(rec, m[2], aliases[key]) {
				ports[portID] = rec
			}
			break // first matching rule claims the key
		}
	}
	return ports
}

// toolboardMotorPorts synthesizes the single EXTRUDER port of a toolboard.
func toolboardMotorPorts(aliases models.AliasMap) models.PortMap {
	rec := &models.PortRecord{Label: "Extruder"}
	if pin, ok := aliases[toolboardStepAlias]; ok {
		rec.StepPin = pin
	}
	if pin, ok := aliases[toolboardDirAlias]; ok {
		rec.DirPin = pin
	}
	if pin, ok := aliases[toolboardEnableAlias]; ok {
		rec.EnablePin = pin
	}
	if pin, ok := aliases[toolboardUartAlias]; ok {
		rec.UartPin = pin
		rec.CSPin = pin
	}
	return models.PortMap{"EXTRUDER": rec}
}
