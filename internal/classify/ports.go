package classify

import (
	"strings"

	"github.com/printwizard/backend/internal/models"
)

// The non-motor categories each apply a small closed set of prefix/suffix
// checks on the alias body (the key with its MCU_ prefix stripped). The
// helpers below keep those checks cheap: no regex is needed for any of them.

// aliasBody strips the MCU_ prefix. Keys without the prefix never classify.
func aliasBody(key string) (string, bool) {
	return strings.CutPrefix(key, "MCU_")
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// numberedSuffix tries each prefix in turn and returns the trailing digits
// when the remainder of the body is purely numeric.
func numberedSuffix(body string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(body, p); ok && isDigits(rest) {
			return rest, true
		}
	}
	return "", false
}

// oneOf reports whether body equals any of the candidates.
func oneOf(body string, candidates ...string) bool {
	for _, c := range candidates {
		if body == c {
			return true
		}
	}
	return false
}

func heaterPorts(keys []string, aliases models.AliasMap) models.PortMap {
	ports := make(models.PortMap)
	for _, key := range keys {
		body, ok := aliasBody(key)
		if !ok {
			continue
		}
		switch {
		case oneOf(body, "BED", "HB", "HOTBED", "HEATBED", "BED_HEATER", "HEATER_BED"):
			ports["BED"] = &models.PortRecord{Label: "Heated Bed", Pin: aliases[key]}
		default:
			if n, ok := numberedSuffix(body, "HE", "HEAT", "HEATER"); ok {
				ports["HE"+n] = &models.PortRecord{Label: "Hotend " + n, Pin: aliases[key]}
			}
		}
	}
	return ports
}

func fanPorts(keys []string, aliases models.AliasMap) models.PortMap {
	ports := make(models.PortMap)
	for _, key := range keys {
		body, ok := aliasBody(key)
		if !ok {
			continue
		}
		if n, ok := numberedSuffix(body, "FAN"); ok {
			ports["FAN"+n] = &models.PortRecord{Label: "Fan " + n, Pin: aliases[key], PWM: true}
		}
	}
	return ports
}

func thermistorPorts(keys []string, aliases models.AliasMap) models.PortMap {
	ports := make(models.PortMap)
	for _, key := range keys {
		body, ok := aliasBody(key)
		if !ok {
			continue
		}
		switch {
		case oneOf(body, "TB", "THB", "BED_TEMP", "TEMP_BED"):
			ports["TB"] = &models.PortRecord{Label: "Bed Thermistor", Pin: aliases[key]}
		default:
			if n, ok := numberedSuffix(body, "TH", "THERM", "T", "TEMP"); ok {
				ports["T"+n] = &models.PortRecord{Label: "Thermistor " + n, Pin: aliases[key]}
			}
		}
	}
	return ports
}

func filamentPorts(keys []string, aliases models.AliasMap) models.PortMap {
	var ports models.PortMap
	for _, key := range keys {
		body, ok := aliasBody(key)
		if !ok {
			continue
		}
		n, ok := numberedSuffix(body, "FIL_DET", "FILDET", "FILAMENT")
		if !ok {
			if !oneOf(body, "FIL_DET", "FILDET") {
				continue
			}
			n = "0"
		}
		if ports == nil {
			ports = make(models.PortMap)
		}
		ports["FIL_DET_"+n] = &models.PortRecord{Label: "Filament Sensor " + n, Pin: aliases[key]}
	}
	return ports
}

func miscPorts(keys []string, aliases models.AliasMap) models.PortMap {
	var ports models.PortMap
	add := func(id, label, pin string) {
		if ports == nil {
			ports = make(models.PortMap)
		}
		ports[id] = &models.PortRecord{Label: label, Pin: pin}
	}
	for _, key := range keys {
		body, ok := aliasBody(key)
		if !ok {
			continue
		}
		switch {
		case oneOf(body, "NEOPIXEL", "RGB"):
			add("NEOPIXEL", "Neopixel", aliases[key])
		case oneOf(body, "PS_ON", "PWR_DET"):
			add("PS_ON", "Power Control", aliases[key])
		case body == "BEEPER":
			add("BEEPER", "Beeper", aliases[key])
		case body == "SERVO":
			add("SERVOS", "Servo", aliases[key])
		default:
			if _, ok := numberedSuffix(body, "SERVO"); ok {
				add("SERVOS", "Servo", aliases[key])
			}
		}
	}
	return ports
}
