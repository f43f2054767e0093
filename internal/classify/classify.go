// Package classify converts a board's raw pin alias map into the canonical
// port schema consumed by the configuration wizard. Classification is a pure
// function of the alias map and never fails. Alias keys that match no rule
// are silently ignored.
package classify

import (
	"sort"
	"strings"

	"github.com/printwizard/backend/internal/models"
)

// Options control board-level classification.
type Options struct {
	// Toolboard marks a head-mounted secondary MCU with a single driver.
	Toolboard bool
	// Source is an attribution string recorded on the output record.
	Source string
	// MCUName overrides the mcu name emitted for toolboards.
	MCUName string
}

// Board classifies every alias of a board into categorized port maps and
// returns the assembled record. The alias map is never mutated.
func Board(name string, aliases models.AliasMap, opts Options) *models.BoardRecord {
	keys := sortedKeys(aliases)

	rec := models.NewBoardRecord()
	rec.ID = Slug(name)
	rec.Name = name
	rec.Manufacturer = InferManufacturer(name)
	rec.Source = opts.Source
	rec.MotorPorts = motorPorts(keys, aliases, opts.Toolboard)
	rec.HeaterPorts = heaterPorts(keys, aliases)
	rec.FanPorts = fanPorts(keys, aliases)
	rec.ThermistorPorts = thermistorPorts(keys, aliases)
	rec.EndstopPorts = endstopPorts(keys, aliases)
	rec.FilamentPorts = filamentPorts(keys, aliases)
	rec.MiscPorts = miscPorts(keys, aliases)

	if opts.Toolboard {
		rec.MCUName = opts.MCUName
		if rec.MCUName == "" {
			rec.MCUName = "toolboard"
		}
	}
	return rec
}

// sortedKeys returns the alias keys in lexical order so classification does
// not depend on map iteration order.
func sortedKeys(aliases models.AliasMap) []string {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Slug derives a lowercase hyphenated identifier from a board name. Runs of
// non-alphanumeric characters collapse to a single hyphen; the result never
// starts or ends with one. An empty result is possible for degenerate names
// and is rejected by callers, not here.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// vendorRule maps a name substring to a manufacturer. First match wins.
type vendorRule struct {
	substr string
	vendor models.Manufacturer
}

var vendorRules = []vendorRule{
	{"bigtreetech", models.ManufacturerBigTreeTech},
	{"btt", models.ManufacturerBigTreeTech},
	{"fysetc", models.ManufacturerFysetc},
	{"mellow", models.ManufacturerMellow},
	{"fly", models.ManufacturerMellow},
	{"ldo", models.ManufacturerLDO},
	{"creality", models.ManufacturerCreality},
	{"makerbase", models.ManufacturerMKS},
	{"mks", models.ManufacturerMKS},
}

// InferManufacturer classifies a board name against the known vendor list,
// case-insensitive, defaulting to Other.
func InferManufacturer(name string) models.Manufacturer {
	lower := strings.ToLower(name)
	for _, rule := range vendorRules {
		if strings.Contains(lower, rule.substr) {
			return rule.vendor
		}
	}
	return models.ManufacturerOther
}
