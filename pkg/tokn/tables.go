package tokn

import (
	"regexp"
	"strings"
)

// typeNormalization maps KiCad library identifiers to short type codes.
var typeNormalization = map[string]string{
	"Device:R":                  "R",
	"Device:R_Small":            "R",
	"Device:R_US":               "R",
	"Device:R_POT":              "RPOT",
	"Device:C":                  "C",
	"Device:C_Small":            "C",
	"Device:C_Polarized":        "CP",
	"Device:C_Polarized_US":     "CP",
	"Device:L":                  "L",
	"Device:L_Small":            "L",
	"Device:D":                  "D",
	"Device:D_Small":            "D",
	"Device:D_Zener":            "DZ",
	"Device:D_Schottky":         "DS",
	"Device:LED":                "LED",
	"Device:LED_Small":          "LED",
	"Device:Q_NPN_BCE":          "QNPN",
	"Device:Q_NPN_BEC":          "QNPN",
	"Device:Q_NPN_CBE":          "QNPN",
	"Device:Q_NPN_CEB":          "QNPN",
	"Device:Q_NPN_ECB":          "QNPN",
	"Device:Q_NPN_EBC":          "QNPN",
	"Device:Q_PNP_BCE":          "QPNP",
	"Device:Q_PNP_BEC":          "QPNP",
	"Device:Q_PNP_CBE":          "QPNP",
	"Device:Q_PNP_CEB":          "QPNP",
	"Device:Q_PNP_ECB":          "QPNP",
	"Device:Q_PNP_EBC":          "QPNP",
	"Device:Q_NMOS_GDS":         "NMOS",
	"Device:Q_NMOS_GSD":         "NMOS",
	"Device:Q_NMOS_DGS":         "NMOS",
	"Device:Q_NMOS_DSG":         "NMOS",
	"Device:Q_NMOS_SGD":         "NMOS",
	"Device:Q_NMOS_SDG":         "NMOS",
	"Device:Q_PMOS_GDS":         "PMOS",
	"Device:Q_PMOS_GSD":         "PMOS",
	"Device:Q_PMOS_DGS":         "PMOS",
	"Device:Q_PMOS_DSG":         "PMOS",
	"Device:Q_PMOS_SGD":         "PMOS",
	"Device:Q_PMOS_SDG":         "PMOS",
	"Device:Crystal":            "XTAL",
	"Device:Crystal_Small":      "XTAL",
	"Device:Fuse":               "F",
	"Device:Fuse_Small":         "F",
	"Device:Ferrite_Bead":       "FB",
	"Device:Ferrite_Bead_Small": "FB",
	"Connector:Conn_01x01":      "CONN1",
	"Connector:Conn_01x02":      "CONN2",
	"Connector:Conn_01x03":      "CONN3",
	"Connector:Conn_01x04":      "CONN4",
}

// partSuffix matches manufacturer ordering suffixes such as -I-SN or _PU.
var partSuffix = regexp.MustCompile(`[-_](I|E|P)[-_]?(SN|SO|P|N|AU|PU)?$`)

// packagePrefix extracts a package family and pin count from a footprint
// name, e.g. SOIC-8_3.9x4.9mm_P1.27mm gives SOIC and 8.
var packagePrefix = regexp.MustCompile(`^(SOIC|TSSOP|SSOP|QFP|LQFP|TQFP|BGA|QFN|DFN|TO-\d+)[-_]?(\d+)?`)

// footprintShorthand maps full footprint paths to short names. It holds the
// fixed entries below plus the inverse of every decoder expansion, so a
// decoded footprint encodes back to the shorthand it came from.
var footprintShorthand = buildFootprintShorthand()

func buildFootprintShorthand() map[string]string {
	m := map[string]string{
		"Resistor_SMD:R_0402_1005Metric":  "0402",
		"Resistor_SMD:R_0603_1608Metric":  "0603",
		"Resistor_SMD:R_0805_2012Metric":  "0805",
		"Resistor_SMD:R_1206_3216Metric":  "1206",
		"Capacitor_SMD:C_0402_1005Metric": "0402",
		"Capacitor_SMD:C_0603_1608Metric": "0603",
		"Capacitor_SMD:C_0805_2012Metric": "0805",
		"Capacitor_SMD:C_1206_3216Metric": "1206",
	}
	for _, prefix := range sizeFamilies {
		for size := range sizeMetric {
			m[sizedFootprint(prefix, size)] = size
		}
	}
	for short, full := range packageFootprints {
		m[full] = short
	}
	return m
}

// normalizeType converts a library identifier to a type code. Parts from the
// power and tokn libraries keep their name; other unmapped parts lose their
// ordering suffix.
func normalizeType(libID string) string {
	if code, ok := typeNormalization[libID]; ok {
		return code
	}
	library, part, ok := strings.Cut(libID, ":")
	if !ok {
		return libID
	}
	switch library {
	case "power", decoderLibrary:
		return part
	}
	return partSuffix.ReplaceAllString(part, "")
}

// normalizeFootprint shortens a footprint path.
func normalizeFootprint(fp string) string {
	if fp == "" {
		return ""
	}
	if short, ok := footprintShorthand[fp]; ok {
		return short
	}
	if i := strings.LastIndexByte(fp, ':'); i >= 0 {
		fp = fp[i+1:]
	}
	if m := packagePrefix.FindStringSubmatch(fp); m != nil {
		if m[2] != "" {
			return m[1] + "-" + m[2]
		}
		return m[1]
	}
	return fp
}
