package netlist

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	anonymousRe = regexp.MustCompile(`^N(\d+)$`)
	voltageRe   = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:V(\d+))?`)
)

// IsAnonymous reports whether name is a generated N<digits> net name.
func IsAnonymous(name string) bool {
	return anonymousRe.MatchString(name)
}

// ParseVoltage reads the magnitude of a rail name such as +5V, +3V3, +3.3V,
// +5VD or -12V.
func ParseVoltage(name string) (float64, bool) {
	s := strings.TrimLeft(name, "+-")
	m := voltageRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num := m[1]
	if m[2] != "" && !strings.Contains(num, ".") {
		num += "." + m[2]
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type netKey struct {
	group int
	value float64
	name  string
}

// sortKey orders power nets first (positive rails by descending voltage,
// then grounds, then negative rails by ascending magnitude), then other
// named nets, then anonymous nets by number.
func sortKey(n *Net) netKey {
	name := n.Name
	if n.IsPower {
		switch {
		case strings.HasPrefix(name, "+"):
			v, _ := ParseVoltage(name)
			return netKey{0, -v, name}
		case strings.HasPrefix(name, "GND"):
			return netKey{1, 0, name}
		case strings.HasPrefix(name, "-"):
			v, _ := ParseVoltage(name)
			return netKey{2, v, name}
		default:
			return netKey{0, 0, name}
		}
	}
	if m := anonymousRe.FindStringSubmatch(name); m != nil {
		v, _ := strconv.Atoi(m[1])
		return netKey{4, float64(v), name}
	}
	return netKey{3, 0, name}
}

func (k netKey) less(o netKey) bool {
	if k.group != o.group {
		return k.group < o.group
	}
	if k.value != o.value {
		return k.value < o.value
	}
	return k.name < o.name
}

// sortNets orders nets and the pins inside each net.
func sortNets(nets []*Net) {
	sort.SliceStable(nets, func(i, j int) bool {
		return sortKey(nets[i]).less(sortKey(nets[j]))
	})
	for _, n := range nets {
		sortPins(n.Pins)
	}
}

// sortPins orders by reference, numeric pin number (0 when not numeric),
// then pin name.
func sortPins(pins []PinRef) {
	num := func(s string) int {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0
		}
		return v
	}
	sort.SliceStable(pins, func(i, j int) bool {
		a, b := pins[i], pins[j]
		if a.Ref != b.Ref {
			return a.Ref < b.Ref
		}
		if na, nb := num(a.Number), num(b.Number); na != nb {
			return na < nb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Number < b.Number
	})
}
