// Package models contains domain types for the printer configuration wizard.
package models

// AliasMap maps a symbolic pin alias (e.g. "MCU_MOTOR0_STEP") to a physical
// MCU pin designator (e.g. "PF13"). It is produced once per board file and
// treated as read-only afterwards.
type AliasMap map[string]string

// Clone returns a copy of the alias map.
func (a AliasMap) Clone() AliasMap {
	out := make(AliasMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Manufacturer identifies a board vendor. The set is closed; names that
// match no known vendor classify as ManufacturerOther.
type Manufacturer string

const (
	ManufacturerBigTreeTech Manufacturer = "BigTreeTech"
	ManufacturerFysetc      Manufacturer = "Fysetc"
	ManufacturerMellow      Manufacturer = "Mellow"
	ManufacturerLDO         Manufacturer = "LDO"
	ManufacturerCreality    Manufacturer = "Creality"
	ManufacturerMKS         Manufacturer = "MKS"
	ManufacturerOther       Manufacturer = "Other"
)

// PortRecord describes one addressable connector on a board. Role fields are
// absent (empty) when the source alias map did not define them; they are
// never emitted as placeholders.
type PortRecord struct {
	Label     string `json:"label"`
	Pin       string `json:"pin,omitempty"`
	StepPin   string `json:"step_pin,omitempty"`
	DirPin    string `json:"dir_pin,omitempty"`
	EnablePin string `json:"enable_pin,omitempty"`
	UartPin   string `json:"uart_pin,omitempty"`
	CSPin     string `json:"cs_pin,omitempty"`
	PWM       bool   `json:"pwm,omitempty"`
}

// PortMap maps a category-specific port id (e.g. "MOTOR_X", "HE0") to its
// port record.
type PortMap map[string]*PortRecord

// BoardRecord is the canonical normalized description of one board.
// The five core categories always serialize (possibly as empty objects);
// filament and misc ports only appear when the board defines them.
type BoardRecord struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Manufacturer    Manufacturer `json:"manufacturer"`
	Source          string       `json:"source"`
	MotorPorts      PortMap      `json:"motor_ports"`
	HeaterPorts     PortMap      `json:"heater_ports"`
	FanPorts        PortMap      `json:"fan_ports"`
	ThermistorPorts PortMap      `json:"thermistor_ports"`
	EndstopPorts    PortMap      `json:"endstop_ports"`
	FilamentPorts   PortMap      `json:"filament_ports,omitempty"`
	MiscPorts       PortMap      `json:"misc_ports,omitempty"`
	MCUName         string       `json:"mcu_name,omitempty"`
}

// NewBoardRecord creates a BoardRecord with all core category maps
// initialized so they serialize as objects rather than null.
func NewBoardRecord() *BoardRecord {
	return &BoardRecord{
		MotorPorts:      make(PortMap),
		HeaterPorts:     make(PortMap),
		FanPorts:        make(PortMap),
		ThermistorPorts: make(PortMap),
		EndstopPorts:    make(PortMap),
	}
}

// PortCount returns the total number of ports across all categories.
func (b *BoardRecord) PortCount() int {
	return len(b.MotorPorts) + len(b.HeaterPorts) + len(b.FanPorts) +
		len(b.ThermistorPorts) + len(b.EndstopPorts) +
		len(b.FilamentPorts) + len(b.MiscPorts)
}
