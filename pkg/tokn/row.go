package tokn

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// rowLexer tokenizes one data row. A quoted run may contain commas; an
// unterminated quote runs to the end of the row.
var rowLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"?`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Bare", Pattern: `[^,"]+`},
})

var (
	stringToken = rowLexer.Symbols()["String"]
	commaToken  = rowLexer.Symbols()["Comma"]
)

// splitRow splits a comma-separated row into fields. Quoted parts have their
// quotes removed and \\ and \" resolved; bare parts are trimmed. A row
// always yields at least one field.
func splitRow(row string) []string {
	lex, err := rowLexer.Lex("", strings.NewReader(row))
	if err != nil {
		return strings.Split(row, ",")
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return strings.Split(row, ",")
	}

	var (
		fields []string
		cur    strings.Builder
	)
	for _, tok := range tokens {
		switch {
		case tok.EOF():
		case tok.Type == commaToken:
			fields = append(fields, cur.String())
			cur.Reset()
		case tok.Type == stringToken:
			cur.WriteString(unquote(tok.Value))
		default:
			cur.WriteString(strings.TrimSpace(tok.Value))
		}
	}
	return append(fields, cur.String())
}

// unquote strips the quotes of a String token and resolves backslash
// escapes. The token pattern leaves the closing quote, if any, last.
func unquote(s string) string {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case c == '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// needsQuoting reports whether a value must be quoted to survive splitRow.
func needsQuoting(v string) bool {
	if v == "" {
		return false
	}
	if strings.ContainsAny(v, `,"\`) {
		return true
	}
	if strings.TrimSpace(v) != v {
		return true
	}
	// a row starting with '#' reads back as a comment
	if strings.HasPrefix(v, "#") {
		return true
	}
	switch strings.ToLower(v) {
	case "true", "false", "null":
		return true
	}
	return false
}

// quoteValue quotes v when needed, escaping backslashes and quotes.
func quoteValue(v string) string {
	if !needsQuoting(v) {
		return v
	}
	return quote(v)
}

func quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
