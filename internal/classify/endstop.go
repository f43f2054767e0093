package classify

import (
	"strings"

	"github.com/printwizard/backend/internal/models"
)

// endstopRule classifies one endstop naming convention. The rules are
// evaluated as an ordered chain and the first match claims the key: the key
// shapes are disjoint by construction, but several generic rules would
// otherwise accept keys that a more specific rule ahead of them owns (a
// DRIVE0_STOP key contains STOP and a digit, which the bare numbered rule
// would misread). endstop_test.go asserts the disjointness over a corpus of
// real vendor keys.
type endstopRule struct {
	name  string
	match func(body string) (id, label string, ok bool)
}

func isAxis(s string) bool {
	return s == "X" || s == "Y" || s == "Z"
}

// endstopRules in priority order, most specific shapes first.
var endstopRules = []endstopRule{
	{"drive_n_stop", func(body string) (string, string, bool) {
		rest, ok := strings.CutPrefix(body, "DRIVE")
		if !ok {
			return "", "", false
		}
		n, ok := strings.CutSuffix(rest, "_STOP")
		if !ok || !isDigits(n) {
			return "", "", false
		}
		return "DRIVE" + n + "_STOP", "Drive " + n + " Endstop", true
	}},
	{"m_n_stop", func(body string) (string, string, bool) {
		rest, ok := strings.CutPrefix(body, "M")
		if !ok {
			return "", "", false
		}
		n, ok := strings.CutSuffix(rest, "_STOP")
		if !ok || !isDigits(n) {
			return "", "", false
		}
		return "M" + n + "_STOP", "Motor " + n + " Endstop", true
	}},
	{"e_n_stop", func(body string) (string, string, bool) {
		rest, ok := strings.CutPrefix(body, "E")
		if !ok {
			return "", "", false
		}
		n, ok := strings.CutSuffix(rest, "STOP")
		if !ok || !isDigits(n) {
			return "", "", false
		}
		return "E" + n + "_STOP", "Extruder " + n + " Endstop", true
	}},
	{"stop_axis", func(body string) (string, string, bool) {
		axis, ok := strings.CutPrefix(body, "STOP_")
		if !ok || !isAxis(axis) {
			return "", "", false
		}
		return axis + "_STOP", axis + " Endstop", true
	}},
	{"axis_min", func(body string) (string, string, bool) {
		axis, ok := strings.CutSuffix(body, "_MIN")
		if !ok || !isAxis(axis) {
			return "", "", false
		}
		return axis + "_MIN", axis + " Min Endstop", true
	}},
	{"axis_max", func(body string) (string, string, bool) {
		axis, ok := strings.CutSuffix(body, "_MAX")
		if !ok || !isAxis(axis) {
			return "", "", false
		}
		return axis + "_MAX", axis + " Max Endstop", true
	}},
	{"axis_stop", func(body string) (string, string, bool) {
		axis, ok := strings.CutSuffix(body, "STOP")
		if !ok {
			return "", "", false
		}
		axis = strings.TrimSuffix(axis, "_")
		if !isAxis(axis) {
			return "", "", false
		}
		return axis + "_STOP", axis + " Endstop", true
	}},
	{"stop_n", func(body string) (string, string, bool) {
		n, ok := numberedSuffix(body, "STOP")
		if !ok {
			return "", "", false
		}
		return "STOP" + n, "Endstop " + n, true
	}},
	{"min_n", func(body string) (string, string, bool) {
		n, ok := numberedSuffix(body, "MIN")
		if !ok {
			return "", "", false
		}
		return "MIN" + n, "Endstop " + n, true
	}},
	{"probe_n", func(body string) (string, string, bool) {
		n, ok := numberedSuffix(body, "PROBE")
		if !ok {
			return "", "", false
		}
		return "PROBE" + n, "Probe " + n, true
	}},
	{"probe", func(body string) (string, string, bool) {
		if !oneOf(body, "PROBE", "Z_PROBE", "ZPROBE", "IND_PROBE", "INDUCTIVE_PROBE") {
			return "", "", false
		}
		return "PROBE", "Z Probe", true
	}},
}

func endstopPorts(keys []string, aliases models.AliasMap) models.PortMap {
	ports := make(models.PortMap)
	for _, key := range keys {
		body, ok := aliasBody(key)
		if !ok {
			continue
		}
		for _, rule := range endstopRules {
			id, label, ok := rule.match(body)
			if !ok {
				continue
			}
			ports[id] = &models.PortRecord{Label: label, Pin: aliases[key]}
			break
		}
	}
	return ports
}
