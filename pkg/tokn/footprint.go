package tokn

import (
	"sort"
	"strings"
)

// sizeMetric maps imperial chip sizes to their metric names.
var sizeMetric = map[string]string{
	"0402": "1005",
	"0603": "1608",
	"0805": "2012",
	"1206": "3216",
	"1210": "3225",
	"2512": "6332",
}

// sizeFamilies gives the footprint prefix of chip-sized parts by type code.
var sizeFamilies = map[string]string{
	"R":   "Resistor_SMD:R_",
	"C":   "Capacitor_SMD:C_",
	"CP":  "Capacitor_SMD:C_",
	"L":   "Inductor_SMD:L_",
	"FB":  "Inductor_SMD:L_",
	"D":   "Diode_SMD:D_",
	"LED": "LED_SMD:LED_",
	"F":   "Fuse:Fuse_",
}

// packageFootprints expands package shorthands.
var packageFootprints = map[string]string{
	"SOIC-8":   "Package_SO:SOIC-8_3.9x4.9mm_P1.27mm",
	"SOIC-14":  "Package_SO:SOIC-14_3.9x8.7mm_P1.27mm",
	"SOIC-16":  "Package_SO:SOIC-16_3.9x9.9mm_P1.27mm",
	"TSSOP-8":  "Package_SO:TSSOP-8_4.4x3mm_P0.65mm",
	"TSSOP-14": "Package_SO:TSSOP-14_4.4x5mm_P0.65mm",
	"TSSOP-16": "Package_SO:TSSOP-16_4.4x5mm_P0.65mm",
	"TSSOP-20": "Package_SO:TSSOP-20_4.4x6.5mm_P0.65mm",
	"SOT-23":   "Package_TO_SOT_SMD:SOT-23",
	"SOT-23-5": "Package_TO_SOT_SMD:SOT-23-5",
	"SOT-223":  "Package_TO_SOT_SMD:SOT-223-3_TabPin2",
	"DIP-8":    "Package_DIP:DIP-8_W7.62mm",
	"DIP-14":   "Package_DIP:DIP-14_W7.62mm",
	"DIP-16":   "Package_DIP:DIP-16_W7.62mm",
	"DIP-28":   "Package_DIP:DIP-28_W7.62mm",
	"TO-220-3": "Package_TO_SOT_THT:TO-220-3_Vertical",
	"TQFP-32":  "Package_QFP:TQFP-32_7x7mm_P0.8mm",
	"TQFP-44":  "Package_QFP:TQFP-44_10x10mm_P0.8mm",
	"LQFP-48":  "Package_QFP:LQFP-48_7x7mm_P0.5mm",
	"SOD-123":  "Diode_SMD:D_SOD-123",
}

// partFootprints gives the usual package of well-known part numbers. Values
// are shorthands or full paths.
var partFootprints = map[string]string{
	"NE555":          "DIP-8",
	"LM7805":         "TO-220-3",
	"AMS1117":        "SOT-223",
	"LM1117":         "SOT-223",
	"MCP2551":        "SOIC-8",
	"LM358":          "SOIC-8",
	"ATMEGA328P":     "DIP-28",
	"ATTINY85":       "DIP-8",
	"BSS138":         "SOT-23",
	"2N7002":         "SOT-23",
	"1N4148":         "SOD-123",
	"CH340G":         "SOIC-16",
	"ESP32-WROOM-32": "RF_Module:ESP32-WROOM-32",
}

// partPrefixes lists partFootprints keys longest first for prefix matching.
var partPrefixes = func() []string {
	keys := make([]string, 0, len(partFootprints))
	for k := range partFootprints {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// passiveDefaults is the footprint assumed for bare passives.
var passiveDefaults = map[string]string{
	"R":   "0603",
	"C":   "0603",
	"CP":  "0805",
	"L":   "0805",
	"LED": "0603",
	"D":   "SOD-123",
}

func sizedFootprint(prefix, size string) string {
	return prefix + size + "_" + sizeMetric[size] + "Metric"
}

// expandShorthand resolves a shorthand for a type code.
func expandShorthand(short, typeCode string) (string, bool) {
	if _, ok := sizeMetric[short]; ok {
		if prefix, ok := sizeFamilies[typeCode]; ok {
			return sizedFootprint(prefix, short), true
		}
		return "", false
	}
	full, ok := packageFootprints[short]
	return full, ok
}

// BackfillFootprint returns the footprint path to write for a component.
// A full library path passes through. A shorthand is expanded with the
// component's size family or the package table. Otherwise the part number
// is looked up, then the type's passive default. A shorthand nothing
// resolves is kept as given.
func BackfillFootprint(c *Component) string {
	typeCode := c.Type.String()
	fp := strings.TrimSpace(c.Footprint)

	if strings.Contains(fp, ":") {
		return fp
	}
	if fp != "" {
		if full, ok := expandShorthand(fp, typeCode); ok {
			return full
		}
	}

	if known, ok := lookupPart(typeCode, c.Value); ok {
		if strings.Contains(known, ":") {
			return known
		}
		if full, ok := expandShorthand(known, typeCode); ok {
			return full
		}
		return known
	}

	if short, ok := passiveDefaults[typeCode]; ok {
		if full, ok := expandShorthand(short, typeCode); ok {
			return full
		}
	}
	return fp
}

// lookupPart matches the type code, then the value, against the part table:
// exact first, then the longest prefix. Matching ignores case.
func lookupPart(candidates ...string) (string, bool) {
	for _, s := range candidates {
		key := strings.ToUpper(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if fp, ok := partFootprints[key]; ok {
			return fp, true
		}
	}
	for _, s := range candidates {
		key := strings.ToUpper(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		for _, prefix := range partPrefixes {
			if strings.HasPrefix(key, prefix) {
				return partFootprints[prefix], true
			}
		}
	}
	return "", false
}
