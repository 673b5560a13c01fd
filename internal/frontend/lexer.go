package frontend

import "github.com/alecthomas/participle/v2/lexer"

// tokenDef is the participle lexer definition for spec.md §4.1's grammar.
// Keywords ("let", "const", "while", "true", "false") are not distinct
// token types: participle matches literal grammar tokens against the text
// of any Ident token, the same pattern the pack's gaarutyunov-guix grammar
// uses for its "package"/"type"/"func" keywords.
var tokenDef = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|'(\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[{}()\[\],:;=.]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})
