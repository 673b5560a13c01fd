// Package frontend lexes and parses source text into an instruction tree,
// per spec.md §4.1. The grammar is built with participle (struct-tag
// combinators, the idiomatic Go analogue of the original chumsky-based
// parser — see SPEC_FULL.md's DOMAIN STACK section) with a statement-level
// recovery loop layered on top, since participle itself reports one error
// per Parse call rather than resynchronizing across a whole source file.
package frontend

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"toyc/internal/ast"
	"toyc/internal/diag"
)

var stmtParser = participle.MustBuild[grammarStatement](
	participle.Lexer(tokenDef),
	participle.Elide("whitespace"),
	participle.UseLookahead(2),
	// The loop in Parse feeds each call the *entire remaining source*, not
	// just one statement's tokens, then advances offset to stmt.EndPos and
	// re-invokes the parser for what's left. Without AllowTrailing,
	// participle treats any unconsumed trailing tokens as an "unexpected
	// token" error against the grammarStatement root itself.
	participle.AllowTrailing(true),
)

// Parse consumes a source string and returns a best-effort instruction tree
// plus any recoverable diagnostics, matching the
// parse(src) -> (Option<Instruction[]>, Diagnostic[]) contract of spec §4.1.
// A nil tree means the top-level production produced nothing usable; the
// caller (the driver) must halt in that case.
func Parse(src string) ([]ast.Instruction, []diag.Diagnostic) {
	var bag diag.Bag

	if span, ok := findUnterminatedString(src); ok {
		bag.Add(diag.Diagnostic{
			Span:    span,
			Message: "unterminated string literal",
			Label:   "unclosed delimiter",
			Found:   "<eof>",
		})
		return nil, bag.Items()
	}

	var stmts []*grammarStatement
	offset := 0
	for {
		rest := src[offset:]
		if strings.TrimSpace(rest) == "" {
			break
		}

		stmt, err := stmtParser.ParseString("", rest)
		if err != nil {
			span, label := recoveryDiagnostic(rest, offset, err)
			bag.Add(diag.Diagnostic{
				Span:    span,
				Message: err.Error(),
				Found:   firstToken(rest),
				Label:   label,
			})
			skip := resync(rest)
			if skip <= 0 {
				skip = 1
			}
			offset += skip
			continue
		}

		stmts = append(stmts, stmt)
		advance := stmt.EndPos.Offset
		if advance <= 0 {
			advance = 1
		}
		offset += advance
	}

	if len(stmts) == 0 && bag.Len() > 0 {
		return nil, bag.Items()
	}

	return lowerStatements(stmts, &bag), bag.Items()
}

// recoveryDiagnostic derives a span and label for a participle parse error,
// relative to the original source (offset is where `rest` begins).
func recoveryDiagnostic(rest string, offset int, err error) (ast.Span, string) {
	if perr, ok := err.(participle.Error); ok {
		pos := perr.Position()
		start := offset + pos.Offset
		end := start + 1
		return ast.Span{Start: start, End: end}, "unexpected token"
	}
	return ast.Span{Start: offset, End: offset + len(rest)}, "parse error"
}

// firstToken returns a short preview of the next token-like text in rest,
// for the diagnostic's Found field.
func firstToken(rest string) string {
	rest = strings.TrimLeft(rest, " \t\r\n")
	for i, r := range rest {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return rest[:i]
		}
		if i > 24 {
			return rest[:i] + "..."
		}
	}
	return rest
}

// resync returns the number of bytes to skip from the start of rest to
// resynchronize after a parse error: past the next statement-ending ';' or
// block-closing '}', or to the end of input if neither appears.
func resync(rest string) int {
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case ';', '}':
			return i + 1
		}
	}
	return len(rest)
}

// findUnterminatedString scans for an opening quote with no matching
// closing quote before end-of-input, so the driver can report spec.md
// scenario S6's exact span (opening quote through EOF) without involving
// the grammar parser, which would otherwise just report the first
// offending character.
func findUnterminatedString(src string) (ast.Span, bool) {
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '"' && c != '\'' {
			continue
		}
		closed := false
		j := i + 1
		for j < len(src) {
			if src[j] == '\\' {
				j += 2
				continue
			}
			if src[j] == c {
				closed = true
				break
			}
			j++
		}
		if !closed {
			return ast.Span{Start: i, End: len(src)}, true
		}
		i = j
	}
	return ast.Span{}, false
}

// TokenStream lexes src without parsing and returns a human-readable token
// table, for the driver's --tokens debug flag (SPEC_FULL.md's supplemented
// features, grounded on the teacher's frontend.TokenStream).
func TokenStream(src string) (string, error) {
	lex, err := tokenDef.Lex("", strings.NewReader(src))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-12s %s\n", "Value", "Type", "Position")
	symbols := tokenDef.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, typ := range symbols {
		names[typ] = name
	}
	for {
		tok, err := lex.Next()
		if err != nil {
			return b.String(), err
		}
		if tok.EOF() {
			break
		}
		fmt.Fprintf(&b, "%-24q %-12s line %d, col %d\n", tok.Value, names[tok.Type], tok.Pos.Line, tok.Pos.Column)
	}
	return b.String(), nil
}
