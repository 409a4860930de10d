package kicadsexp

import (
	"errors"
	"testing"
)

func TestParseNested(t *testing.T) {
	root, err := ParseOne(`(kicad_sch (version 20231120) (title_block (title "Demo Board")))`)
	if err != nil {
		t.Fatalf("ParseOne() error: %v", err)
	}

	list, ok := root.(*List)
	if !ok {
		t.Fatalf("root is %T, want *List", root)
	}
	if list.Len() != 3 {
		t.Fatalf("root has %d elements, want 3", list.Len())
	}
	if got := list.Head().String(); got != "kicad_sch" {
		t.Errorf("head = %q, want kicad_sch", got)
	}

	title := list.Get(2).(*List).Get(1).(*List).Get(1)
	if title != Symbol("Demo Board") {
		t.Errorf("title atom = %q, want %q", title, "Demo Board")
	}
}

func TestParseQuotedEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Symbol
	}{
		{name: "escaped quote", input: `"say \"hi\""`, want: `say "hi"`},
		{name: "escaped backslash", input: `"C:\\lib"`, want: `C:\lib`},
		{name: "newline", input: `"a\nb"`, want: "a\nb"},
		{name: "parens inside quotes", input: `"(not a list)"`, want: "(not a list)"},
		{name: "empty string", input: `""`, want: ""},
		{name: "bare atom", input: `+3V3`, want: "+3V3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOne(tt.input)
			if err != nil {
				t.Fatalf("ParseOne(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseOne(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantCol  int
	}{
		{name: "missing close paren", input: "(a (b c)", wantLine: 1, wantCol: 1},
		{name: "unexpected close paren", input: "(a))\n)", wantLine: 1, wantCol: 4},
		{name: "unterminated string", input: "(a\n  \"open)", wantLine: 2, wantCol: 3},
		{name: "empty input", input: "   ", wantLine: 1, wantCol: 1},
		{name: "dangling escape", input: `("abc\`, wantLine: 1, wantCol: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOne(tt.input)
			if err == nil {
				t.Fatalf("ParseOne(%q) expected error", tt.input)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %v is %T, want *SyntaxError", err, err)
			}
			if se.Pos.Line != tt.wantLine || se.Pos.Column != tt.wantCol {
				t.Errorf("error at %d:%d, want %d:%d (%v)", se.Pos.Line, se.Pos.Column, tt.wantLine, tt.wantCol, err)
			}
		})
	}
}

func TestStringReparses(t *testing.T) {
	input := `(property "Reference" "R 1" (at 1.5 -2 90) (effects (font (size 1.27 1.27)) hide) "" "a\"b")`
	first, err := ParseOne(input)
	if err != nil {
		t.Fatalf("ParseOne() error: %v", err)
	}
	second, err := ParseOne(first.String())
	if err != nil {
		t.Fatalf("reparse of %q failed: %v", first.String(), err)
	}
	if first.String() != second.String() {
		t.Errorf("reparse changed tree:\n%s\n%s", first.String(), second.String())
	}
}

func TestParseAllMultipleRoots(t *testing.T) {
	sexps, err := ParseString("(a) (b 1) c")
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	if len(sexps) != 3 {
		t.Fatalf("got %d expressions, want 3", len(sexps))
	}
	if !sexps[2].IsLeaf() {
		t.Errorf("third expression should be an atom")
	}
}
