package tokn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// headerLexer splits section headers such as
//
//	components[3]{ref,type,value,fp,x,y,w,h,a}:
//	pins{U1}[8]:
var headerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_#+\-~/.][A-Za-z0-9_#+\-~/.]*`},
	{Name: "Punct", Pattern: `[\[\]{},:]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// sectionHeader is the grammar of one header line:
// name ['{' ref '}'] '[' count ']' ['{' field {',' field} '}'] ':'
type sectionHeader struct {
	Name   string   `parser:"@Ident"`
	Ref    string   `parser:"( '{' @(Ident | Int)+ '}' )?"`
	Count  int      `parser:"'[' @Int ']'"`
	Fields []string `parser:"( '{' @(Ident | Int) ( ',' @(Ident | Int) )* '}' )?"`
	End    string   `parser:"@':'"`
}

var headerParser = participle.MustBuild[sectionHeader](
	participle.Lexer(headerLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// headerLike matches lines that open a section, well formed or not.
var headerLike = regexp.MustCompile(`^[A-Za-z_]\w*\s*(\{[^}]*\}\s*)?\[`)

// HeaderError reports a line that opens a section but does not follow the
// header grammar.
type HeaderError struct {
	Line int
	Text string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("line %d: malformed section header %q: %v", e.Line, e.Text, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// isHeaderLine reports whether a trimmed line opens a section.
func isHeaderLine(line string) bool {
	return headerLike.MatchString(line)
}

// parseHeader parses a trimmed header line. Text after the closing ':' is
// ignored.
func parseHeader(line string, lineNo int) (*sectionHeader, error) {
	text := line
	if end := strings.IndexByte(line, ':'); end >= 0 {
		text = line[:end+1]
	}
	h, err := headerParser.ParseString("", text)
	if err != nil {
		return nil, &HeaderError{Line: lineNo, Text: line, Err: err}
	}
	return h, nil
}
