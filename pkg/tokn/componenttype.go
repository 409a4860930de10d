package tokn

// Kind is the closed set of component classes the codec treats specially.
type Kind int

const (
	KindGeneric Kind = iota
	KindResistor
	KindCapacitor
	KindPolarizedCapacitor
)

// ComponentType is a component's short type code. Passive two-terminal
// parts are distinguished; everything else carries its code verbatim.
type ComponentType struct {
	kind Kind
	code string
}

var (
	Resistor           = ComponentType{kind: KindResistor}
	Capacitor          = ComponentType{kind: KindCapacitor}
	PolarizedCapacitor = ComponentType{kind: KindPolarizedCapacitor}
)

// Generic returns the type for an arbitrary code such as "NE555" or "LED".
func Generic(code string) ComponentType {
	return ParseComponentType(code)
}

// ParseComponentType converts the serialized type code.
func ParseComponentType(s string) ComponentType {
	switch s {
	case "R":
		return Resistor
	case "C":
		return Capacitor
	case "CP":
		return PolarizedCapacitor
	default:
		return ComponentType{kind: KindGeneric, code: s}
	}
}

// Kind returns the type's class.
func (t ComponentType) Kind() Kind {
	return t.kind
}

// IsPassive reports whether the type has a standard two-pin symbol.
func (t ComponentType) IsPassive() bool {
	return t.kind != KindGeneric
}

func (t ComponentType) String() string {
	switch t.kind {
	case KindResistor:
		return "R"
	case KindCapacitor:
		return "C"
	case KindPolarizedCapacitor:
		return "CP"
	default:
		return t.code
	}
}

func (t ComponentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ComponentType) UnmarshalText(b []byte) error {
	*t = ParseComponentType(string(b))
	return nil
}
