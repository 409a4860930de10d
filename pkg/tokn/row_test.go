package tokn

import (
	"reflect"
	"testing"
)

func TestSplitRow(t *testing.T) {
	tests := []struct {
		row  string
		want []string
	}{
		{"R1,R,10k", []string{"R1", "R", "10k"}},
		{"R1, R , 10k", []string{"R1", "R", "10k"}},
		{`OUT,"R1.2,R2.1"`, []string{"OUT", "R1.2,R2.1"}},
		{`a,,b`, []string{"a", "", "b"}},
		{`a,`, []string{"a", ""}},
		{``, []string{""}},
		{`"say \"hi\"",x`, []string{`say "hi"`, "x"}},
		{`"C:\\lib\\",x`, []string{`C:\lib\`, "x"}},
		{`"unterminated,still`, []string{"unterminated,still"}},
		{`+5V,"80.00 86.19,80.00 80.00"`, []string{"+5V", "80.00 86.19,80.00 80.00"}},
	}

	for _, tt := range tests {
		if got := splitRow(tt.row); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitRow(%q) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestQuotedValuesSurviveSplit(t *testing.T) {
	values := []string{
		"10k",
		"1k, 1%",
		`a"b`,
		`back\slash`,
		`trailing\`,
		`"quoted"`,
		" padded ",
		"true",
		"NULL",
		",,,",
		"",
	}

	for _, v := range values {
		row := quoteValue(v) + "," + quoteValue("end")
		got := splitRow(row)
		if len(got) != 2 || got[0] != v || got[1] != "end" {
			t.Errorf("value %q: row %q split to %q", v, row, got)
		}
	}
}

func TestNeedsQuoting(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"", false},
		{"10k", false},
		{"4.7uF", false},
		{"a,b", true},
		{`a"b`, true},
		{`a\b`, true},
		{"False", true},
		{"null", true},
		{" x", true},
		{"#RST", true},
		{"A#", false},
	}

	for _, tt := range tests {
		if got := needsQuoting(tt.v); got != tt.want {
			t.Errorf("needsQuoting(%q) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
