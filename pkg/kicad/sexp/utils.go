// Package sexp provides navigation and typed extraction helpers over
// kicadsexp trees. None of the helpers panic: an atom is treated as a node
// with no children, and short lists yield errors or zero values.
package sexp

import (
	"fmt"
	"strconv"

	"github.com/MichaelAyles/tokn/pkg/kicad/sexp/kicadsexp"
)

// Property is a (property "key" "value" ...) pair.
type Property struct {
	Key   string
	Value string
}

// children returns the elements of a list node, or nil for atoms.
func children(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if s == nil || s.IsLeaf() {
		return nil
	}
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Elements()
	}
	return nil
}

// headIs reports whether s is a non-empty list whose first atom equals key.
func headIs(s kicadsexp.Sexp, key string) bool {
	items := children(s)
	if len(items) == 0 {
		return false
	}
	sym, ok := items[0].(kicadsexp.Symbol)
	return ok && string(sym) == key
}

// FindNode returns the first child list whose head atom equals key.
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range children(s) {
		if headIs(item, key) {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes returns all child lists whose head atom equals key.
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range children(s) {
		if headIs(item, key) {
			results = append(results, item)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	items := children(s)
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// Len returns the number of elements of a list node (0 for atoms).
func Len(s kicadsexp.Sexp) int {
	return len(children(s))
}

// GetString extracts an atom at the given index in a list.
// Index 0 is the key, 1 is first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	items := children(s)
	if items == nil {
		return "", fmt.Errorf("expected list, got leaf")
	}
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}
	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at index %d, got %T", index, items[index])
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// GetValue returns the first value of the (key value) child of s, or "" when
// the child is absent or has no atom value.
func GetValue(s kicadsexp.Sexp, key string) string {
	node, ok := FindNode(s, key)
	if !ok {
		return ""
	}
	v, err := GetString(node, 1)
	if err != nil {
		return ""
	}
	return v
}

// HasSymbol checks if a list contains a specific bare atom
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range children(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil node")
	}
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	items := children(s)
	if len(items) == 0 {
		return "", fmt.Errorf("empty list has no name")
	}
	if sym, ok := items[0].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at head of list")
}

// GetProperties scans the (property "key" "value" ...) children of s.
func GetProperties(s kicadsexp.Sexp) []Property {
	var props []Property
	for _, pn := range FindAllNodes(s, "property") {
		key, err := GetString(pn, 1)
		if err != nil {
			continue
		}
		// Value can be missing
		value, _ := GetString(pn, 2)
		props = append(props, Property{Key: key, Value: value})
	}
	return props
}

// PropertyValue returns the value of the named property, or "".
func PropertyValue(props []Property, key string) string {
	for _, p := range props {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}
