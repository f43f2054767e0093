package classify

import (
	"testing"

	"github.com/printwizard/backend/internal/models"
)

// endstopCorpus holds alias bodies seen in real vendor board files, mapped to
// the rule expected to claim them.
var endstopCorpus = map[string]string{
	"DRIVE0_STOP":     "drive_n_stop",
	"DRIVE7_STOP":     "drive_n_stop",
	"M1_STOP":         "m_n_stop",
	"M12_STOP":        "m_n_stop",
	"E0STOP":          "e_n_stop",
	"E2STOP":          "e_n_stop",
	"STOP_X":          "stop_axis",
	"STOP_Z":          "stop_axis",
	"X_MIN":           "axis_min",
	"Z_MIN":           "axis_min",
	"X_MAX":           "axis_max",
	"Y_MAX":           "axis_max",
	"XSTOP":           "axis_stop",
	"Z_STOP":          "axis_stop",
	"STOP0":           "stop_n",
	"STOP6":           "stop_n",
	"MIN1":            "min_n",
	"MIN3":            "min_n",
	"PROBE0":          "probe_n",
	"PROBE":           "probe",
	"Z_PROBE":         "probe",
	"ZPROBE":          "probe",
	"IND_PROBE":       "probe",
	"INDUCTIVE_PROBE": "probe",
}

// Each corpus key must be claimed by exactly the expected rule, and by no
// other rule in the chain. Several generic rules could swallow specific
// shapes if the ordering regressed; this pins the contract.
func TestEndstopRulesDisjoint(t *testing.T) {
	for body, want := range endstopCorpus {
		var matched []string
		for _, rule := range endstopRules {
			if _, _, ok := rule.match(body); ok {
				matched = append(matched, rule.name)
			}
		}
		if len(matched) != 1 {
			t.Errorf("%s matched rules %v, want exactly one", body, matched)
			continue
		}
		if matched[0] != want {
			t.Errorf("%s claimed by %s, want %s", body, matched[0], want)
		}
	}
}

func TestEndstopPorts(t *testing.T) {
	aliases := models.AliasMap{
		"MCU_DRIVE0_STOP": "PA1",
		"MCU_X_MIN":       "PC1",
		"MCU_Y_MAX":       "PC2",
		"MCU_ZSTOP":       "PC3",
		"MCU_Z_PROBE":     "PC5",
		"MCU_STOP_X":      "PC6",
	}
	keys := sortedKeys(aliases)
	ports := endstopPorts(keys, aliases)

	cases := []struct {
		id    string
		label string
		pin   string
	}{
		{"DRIVE0_STOP", "Drive 0 Endstop", "PA1"},
		{"X_MIN", "X Min Endstop", "PC1"},
		{"Y_MAX", "Y Max Endstop", "PC2"},
		{"Z_STOP", "Z Endstop", "PC3"},
		{"PROBE", "Z Probe", "PC5"},
		{"X_STOP", "X Endstop", "PC6"},
	}
	if len(ports) != len(cases) {
		t.Fatalf("ports = %v, want %d entries", ports, len(cases))
	}
	for _, tc := range cases {
		p := ports[tc.id]
		if p == nil {
			t.Errorf("%s missing", tc.id)
			continue
		}
		if p.Label != tc.label || p.Pin != tc.pin {
			t.Errorf("%s = {%q %q}, want {%q %q}", tc.id, p.Label, p.Pin, tc.label, tc.pin)
		}
	}
}

func TestEndstopNonMatches(t *testing.T) {
	aliases := models.AliasMap{
		"MCU_FAN0":        "PA8",
		"MCU_MOTOR0_STEP": "PF13",
		"NOT_AN_ALIAS":    "PA0",
	}
	ports := endstopPorts(sortedKeys(aliases), aliases)
	if len(ports) != 0 {
		t.Errorf("ports = %v, want none", ports)
	}
}
