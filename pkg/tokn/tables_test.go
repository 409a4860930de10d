package tokn

import "testing"

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		libID string
		want  string
	}{
		{"Device:R", "R"},
		{"Device:C_Polarized", "CP"},
		{"Device:Q_NPN_BCE", "QNPN"},
		{"Connector:Conn_01x02", "CONN2"},
		{"Interface_CAN_LIN:MCP2551-I-SN", "MCP2551"},
		{"Timer:NE555P", "NE555P"},
		{"Amplifier_Operational:LM358", "LM358"},
		{"power:+5V", "+5V"},
		{"power:GND", "GND"},
		{"tokn:NE555-P", "NE555-P"},
		{"R_Custom", "R_Custom"},
	}

	for _, tt := range tests {
		if got := normalizeType(tt.libID); got != tt.want {
			t.Errorf("normalizeType(%q) = %q, want %q", tt.libID, got, tt.want)
		}
	}
}

func TestNormalizeFootprint(t *testing.T) {
	tests := []struct {
		fp   string
		want string
	}{
		{"", ""},
		{"Resistor_SMD:R_0603_1608Metric", "0603"},
		{"Capacitor_SMD:C_1210_3225Metric", "1210"},
		{"LED_SMD:LED_0805_2012Metric", "0805"},
		{"Package_SO:SOIC-8_3.9x4.9mm_P1.27mm", "SOIC-8"},
		{"Package_SO:SOIC-8W_5.3x5.3mm_P1.27mm", "SOIC-8"},
		{"Package_QFP:LQFP-64_10x10mm_P0.5mm", "LQFP-64"},
		{"Package_DFN_QFN:QFN-32-1EP_5x5mm_P0.5mm", "QFN-32"},
		{"Package_TO_SOT_THT:TO-92_Inline", "TO-92"},
		{"Package_TO_SOT_THT:TO-220-3_Vertical", "TO-220-3"},
		{"Package_DIP:DIP-8_W7.62mm", "DIP-8"},
		{"Diode_SMD:D_SOD-123", "SOD-123"},
		{"Connector_USB:USB_C_Receptacle", "USB_C_Receptacle"},
		{"SOT-23", "SOT-23"},
	}

	for _, tt := range tests {
		if got := normalizeFootprint(tt.fp); got != tt.want {
			t.Errorf("normalizeFootprint(%q) = %q, want %q", tt.fp, got, tt.want)
		}
	}
}

func TestBackfillFootprint(t *testing.T) {
	tests := []struct {
		name string
		comp Component
		want string
	}{
		{"resistor size", Component{Type: Resistor, Footprint: "0603"}, "Resistor_SMD:R_0603_1608Metric"},
		{"capacitor size", Component{Type: Capacitor, Footprint: "0805"}, "Capacitor_SMD:C_0805_2012Metric"},
		{"full path", Component{Type: Resistor, Footprint: "Resistor_THT:R_Axial_DIN0207"}, "Resistor_THT:R_Axial_DIN0207"},
		{"package", Component{Type: Generic("NE555"), Footprint: "DIP-8"}, "Package_DIP:DIP-8_W7.62mm"},
		{"part number", Component{Type: Generic("NE555")}, "Package_DIP:DIP-8_W7.62mm"},
		{"part number ignores case", Component{Type: Generic("ATtiny85")}, "Package_DIP:DIP-8_W7.62mm"},
		{"value prefix", Component{Type: Generic("OPAMP"), Value: "LM358DR"}, "Package_SO:SOIC-8_3.9x4.9mm_P1.27mm"},
		{"full path part", Component{Type: Generic("U"), Value: "esp32-wroom-32"}, "RF_Module:ESP32-WROOM-32"},
		{"passive default", Component{Type: PolarizedCapacitor}, "Capacitor_SMD:C_0805_2012Metric"},
		{"blank is empty", Component{Type: Resistor, Footprint: "  "}, "Resistor_SMD:R_0603_1608Metric"},
		{"diode default", Component{Type: Generic("D")}, "Diode_SMD:D_SOD-123"},
		{"led default", Component{Type: Generic("LED"), Value: "red"}, "LED_SMD:LED_0603_1608Metric"},
		{"size without family", Component{Type: Generic("XTAL"), Footprint: "0603"}, "0603"},
		{"unknown shorthand", Component{Type: Generic("XTAL"), Footprint: "HC49"}, "HC49"},
		{"unknown shorthand falls to part number", Component{Type: Generic("NE555"), Footprint: "FOO"}, "Package_DIP:DIP-8_W7.62mm"},
		{"unknown shorthand falls to passive default", Component{Type: Resistor, Footprint: "FOO"}, "Resistor_SMD:R_0603_1608Metric"},
		{"nothing known", Component{Type: Generic("XTAL")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BackfillFootprint(&tt.comp); got != tt.want {
				t.Errorf("BackfillFootprint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackfillShorthandsEncodeBack(t *testing.T) {
	for short := range packageFootprints {
		c := Component{Type: Generic("U"), Footprint: short}
		if got := normalizeFootprint(BackfillFootprint(&c)); got != short {
			t.Errorf("%s expanded and shortened to %s", short, got)
		}
	}
	for code := range sizeFamilies {
		for size := range sizeMetric {
			c := Component{Type: ParseComponentType(code), Footprint: size}
			if got := normalizeFootprint(BackfillFootprint(&c)); got != size {
				t.Errorf("%s %s expanded and shortened to %s", code, size, got)
			}
		}
	}
}

func TestComponentType(t *testing.T) {
	tests := []struct {
		code    string
		kind    Kind
		passive bool
	}{
		{"R", KindResistor, true},
		{"C", KindCapacitor, true},
		{"CP", KindPolarizedCapacitor, true},
		{"NE555", KindGeneric, false},
		{"r", KindGeneric, false},
	}

	for _, tt := range tests {
		ct := ParseComponentType(tt.code)
		if ct.Kind() != tt.kind || ct.IsPassive() != tt.passive {
			t.Errorf("%q: kind %v passive %v", tt.code, ct.Kind(), ct.IsPassive())
		}
		if ct.String() != tt.code {
			t.Errorf("%q: String() = %q", tt.code, ct.String())
		}

		var back ComponentType
		text, _ := ct.MarshalText()
		if err := back.UnmarshalText(text); err != nil || back != ct {
			t.Errorf("%q: text round trip gave %v (%v)", tt.code, back, err)
		}
	}
}
