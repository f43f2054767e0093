package classify

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/printwizard/backend/internal/models"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"BTT Octopus v1.1", "btt-octopus-v1-1"},
		{"Fysetc Spider", "fysetc-spider"},
		{"  weird--name__ ", "weird-name"},
		{"MKS Robin Nano V3", "mks-robin-nano-v3"},
		{"___", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slug(tc.name); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestInferManufacturer(t *testing.T) {
	cases := []struct {
		name string
		want models.Manufacturer
	}{
		{"BTT Octopus v1.1", models.ManufacturerBigTreeTech},
		{"BigTreeTech SKR Mini E3", models.ManufacturerBigTreeTech},
		{"Fysetc Spider v2.2", models.ManufacturerFysetc},
		{"Mellow Fly Super8", models.ManufacturerMellow},
		{"Fly Gemini v3", models.ManufacturerMellow},
		{"LDO Leviathan", models.ManufacturerLDO},
		{"Creality v4.2.7", models.ManufacturerCreality},
		{"Makerbase MKS Monster8", models.ManufacturerMKS},
		{"Some Unknown Board", models.ManufacturerOther},
	}
	for _, tc := range cases {
		if got := InferManufacturer(tc.name); got != tc.want {
			t.Errorf("InferManufacturer(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestBoardMotorClassification(t *testing.T) {
	t.Run("numbered motors with roles", func(t *testing.T) {
		aliases := models.AliasMap{
			"MCU_MOTOR0_STEP":   "PF13",
			"MCU_MOTOR0_DIR":    "PF12",
			"MCU_MOTOR0_ENABLE": "PF14",
			"MCU_MOTOR0_CS":     "PC4",
			"MCU_MOTOR1_STEP":   "PG0",
		}
		rec := Board("BTT Octopus v1.1", aliases, Options{})

		m0, ok := rec.MotorPorts["MOTOR_0"]
		if !ok {
			t.Fatalf("MOTOR_0 missing, got %v", rec.MotorPorts)
		}
		if m0.Label != "Driver 0" {
			t.Errorf("MOTOR_0 label = %q, want %q", m0.Label, "Driver 0")
		}
		if m0.StepPin != "PF13" || m0.DirPin != "PF12" || m0.EnablePin != "PF14" {
			t.Errorf("MOTOR_0 pins = %+v", m0)
		}
		// CS and UART share the wire on supported drivers
		if m0.CSPin != "PC4" || m0.UartPin != "PC4" {
			t.Errorf("MOTOR_0 cs/uart = %q/%q, want both PC4", m0.CSPin, m0.UartPin)
		}
		if _, ok := rec.MotorPorts["MOTOR_1"]; !ok {
			t.Error("MOTOR_1 missing")
		}
	})

	t.Run("uart alias fills both roles", func(t *testing.T) {
		rec := Board("b", models.AliasMap{"MCU_MOTOR0_UART": "PA1"}, Options{})
		m0 := rec.MotorPorts["MOTOR_0"]
		if m0 == nil {
			t.Fatal("MOTOR_0 missing")
		}
		if m0.UartPin != "PA1" || m0.CSPin != "PA1" {
			t.Errorf("uart/cs = %q/%q, want both PA1", m0.UartPin, m0.CSPin)
		}
	})

	t.Run("axis letter motors", func(t *testing.T) {
		aliases := models.AliasMap{
			"MCU_X_STEP":  "PA0",
			"MCU_X_DIR":   "PA1",
			"MCU_YM_STEP": "PA2",
			"MCU_E0_STEP": "PA3",
		}
		rec := Board("b", aliases, Options{})

		if m := rec.MotorPorts["MOTOR_X"]; m == nil || m.Label != "X Stepper" {
			t.Errorf("MOTOR_X = %+v, want X Stepper", m)
		}
		if m := rec.MotorPorts["MOTOR_Y"]; m == nil || m.Label != "Y Stepper" {
			t.Errorf("MOTOR_Y = %+v, want Y Stepper", m)
		}
		if m := rec.MotorPorts["MOTOR_E0"]; m == nil || m.Label != "Extruder E0" {
			t.Errorf("MOTOR_E0 = %+v, want Extruder E0", m)
		}
	})

	t.Run("high voltage stepper bank", func(t *testing.T) {
		rec := Board("b", models.AliasMap{"MCU_HV_STEPPER0_STEP": "PB4"}, Options{})
		if m := rec.MotorPorts["MOTOR_HV0"]; m == nil || m.StepPin != "PB4" {
			t.Errorf("MOTOR_HV0 = %+v", m)
		}
	})

	t.Run("unknown role suffix does not create a port", func(t *testing.T) {
		// X_MIN matches the axis motor pattern but MIN is not a driver
		// role; the key belongs to the endstop category instead.
		rec := Board("b", models.AliasMap{"MCU_X_MIN": "PC1"}, Options{})
		if len(rec.MotorPorts) != 0 {
			t.Errorf("motor ports = %v, want none", rec.MotorPorts)
		}
		if e := rec.EndstopPorts["X_MIN"]; e == nil || e.Pin != "PC1" {
			t.Errorf("X_MIN endstop = %+v", e)
		}
	})
}

func TestBoardToolboard(t *testing.T) {
	aliases := models.AliasMap{
		"MCU_TMCDRIVER_STEP":   "PD0",
		"MCU_TMCDRIVER_DIR":    "PD1",
		"MCU_TMCDRIVER_ENABLE": "PD2",
		"MCU_TMCDRIVER_UART":   "PA15",
	}
	rec := Board("BTT EBB36", aliases, Options{Toolboard: true})

	if len(rec.MotorPorts) != 1 {
		t.Fatalf("motor ports = %v, want single EXTRUDER", rec.MotorPorts)
	}
	ext := rec.MotorPorts["EXTRUDER"]
	if ext == nil {
		t.Fatal("EXTRUDER port missing")
	}
	if ext.Label != "Extruder" || ext.StepPin != "PD0" || ext.DirPin != "PD1" || ext.EnablePin != "PD2" {
		t.Errorf("EXTRUDER = %+v", ext)
	}
	if ext.UartPin != "PA15" || ext.CSPin != "PA15" {
		t.Errorf("EXTRUDER uart/cs = %q/%q", ext.UartPin, ext.CSPin)
	}
	if rec.MCUName != "toolboard" {
		t.Errorf("mcu name = %q, want toolboard default", rec.MCUName)
	}

	named := Board("BTT EBB36", aliases, Options{Toolboard: true, MCUName: "EBBCan"})
	if named.MCUName != "EBBCan" {
		t.Errorf("mcu name = %q, want EBBCan", named.MCUName)
	}
}

func TestBoardOtherCategories(t *testing.T) {
	aliases := models.AliasMap{
		"MCU_BED":      "PA7",
		"MCU_HE0":      "PA2",
		"MCU_HE1":      "PA3",
		"MCU_FAN0":     "PA8",
		"MCU_TB":       "PF3",
		"MCU_TH0":      "PF4",
		"MCU_FIL_DET0": "PG12",
		"MCU_NEOPIXEL": "PB0",
		"MCU_PS_ON":    "PE11",
	}
	rec := Board("b", aliases, Options{})

	if h := rec.HeaterPorts["BED"]; h == nil || h.Label != "Heated Bed" || h.Pin != "PA7" {
		t.Errorf("BED = %+v", h)
	}
	if h := rec.HeaterPorts["HE1"]; h == nil || h.Label != "Hotend 1" {
		t.Errorf("HE1 = %+v", h)
	}
	if f := rec.FanPorts["FAN0"]; f == nil || !f.PWM {
		t.Errorf("FAN0 = %+v, want pwm true", f)
	}
	if th := rec.ThermistorPorts["TB"]; th == nil || th.Label != "Bed Thermistor" {
		t.Errorf("TB = %+v", th)
	}
	if th := rec.ThermistorPorts["T0"]; th == nil || th.Pin != "PF4" {
		t.Errorf("T0 = %+v", th)
	}
	if fd := rec.FilamentPorts["FIL_DET_0"]; fd == nil || fd.Pin != "PG12" {
		t.Errorf("FIL_DET_0 = %+v", fd)
	}
	if mp := rec.MiscPorts["NEOPIXEL"]; mp == nil || mp.Label != "Neopixel" {
		t.Errorf("NEOPIXEL = %+v", mp)
	}
	if mp := rec.MiscPorts["PS_ON"]; mp == nil || mp.Label != "Power Control" {
		t.Errorf("PS_ON = %+v", mp)
	}
}

func TestBoardEmptyOptionalCategories(t *testing.T) {
	rec := Board("b", models.AliasMap{"MCU_FAN0": "PA8"}, Options{})

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)

	// Core categories serialize even when empty; optional ones drop out.
	for _, key := range []string{`"motor_ports":{}`, `"heater_ports":{}`, `"thermistor_ports":{}`, `"endstop_ports":{}`} {
		if !strings.Contains(s, key) {
			t.Errorf("marshaled record missing %s: %s", key, s)
		}
	}
	if strings.Contains(s, "filament_ports") || strings.Contains(s, "misc_ports") || strings.Contains(s, "mcu_name") {
		t.Errorf("optional empty categories serialized: %s", s)
	}
}

func TestBoardDeterministic(t *testing.T) {
	aliases := models.AliasMap{
		"MCU_MOTOR0_STEP": "PF13",
		"MCU_MOTOR0_DIR":  "PF12",
		"MCU_MOTOR1_STEP": "PG0",
		"MCU_HE0":         "PA2",
		"MCU_FAN0":        "PA8",
		"MCU_X_MIN":       "PC1",
	}

	first, err := json.Marshal(Board("Board", aliases, Options{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Map iteration order varies across runs; the output must not.
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Board("Board", aliases.Clone(), Options{}))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("classification not deterministic:\n%s\n%s", first, again)
		}
	}
}

func TestBoardDoesNotMutateAliases(t *testing.T) {
	aliases := models.AliasMap{"MCU_MOTOR0_STEP": "PF13", "MCU_FAN0": "PA8"}
	snapshot := aliases.Clone()

	Board("b", aliases, Options{})

	if len(aliases) != len(snapshot) {
		t.Fatalf("alias map mutated: %v", aliases)
	}
	for k, v := range snapshot {
		if aliases[k] != v {
			t.Errorf("alias %s changed: %q -> %q", k, v, aliases[k])
		}
	}
}
