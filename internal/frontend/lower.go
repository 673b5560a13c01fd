package frontend

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"toyc/internal/ast"
	"toyc/internal/diag"
)

// lowerStatements converts a recovered slice of grammar statements into
// instruction-tree nodes, recording any string-escape diagnostics along
// the way (spec §4.1: invalid \uXXXX substitutes U+FFFD and raises a
// diagnostic rather than aborting the parse).
func lowerStatements(stmts []*grammarStatement, bag *diag.Bag) []ast.Instruction {
	out := make([]ast.Instruction, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, lowerStatement(s, bag))
	}
	return out
}

func lowerStatement(s *grammarStatement, bag *diag.Bag) ast.Instruction {
	switch {
	case s.While != nil:
		return lowerWhile(s.While, bag)
	case s.Expr != nil:
		return lowerExpr(s.Expr, bag)
	default:
		// Unreachable: the grammar requires exactly one alternative to match.
		return ast.Instruction{Kind: ast.Object, Fields: map[string]ast.Instruction{}}
	}
}

func lowerWhile(w *grammarWhile, bag *diag.Bag) ast.Instruction {
	cond := lowerExpr(w.Cond, bag)
	body := make([]ast.Instruction, 0, len(w.Body))
	for _, s := range w.Body {
		body = append(body, lowerStatement(s, bag))
	}
	return ast.Instruction{
		Kind: ast.WhileBlock,
		Span: spanOf(w.Pos),
		Cond: &cond,
		Body: body,
	}
}

func lowerExpr(e *grammarExpr, bag *diag.Bag) ast.Instruction {
	span := spanOf(e.Pos)
	switch {
	case e.VarDecl != nil:
		value := lowerExpr(e.VarDecl.Value, bag)
		scope := ast.Let
		if e.VarDecl.Scope == "const" {
			scope = ast.Const
		}
		return ast.Instruction{
			Kind:     ast.Variable,
			Span:     span,
			Name:     e.VarDecl.Name,
			VarScope: scope,
			Value:    &value,
		}
	case e.Assign != nil:
		value := lowerExpr(e.Assign.Value, bag)
		return ast.Instruction{
			Kind:     ast.Variable,
			Span:     span,
			Name:     e.Assign.Name,
			VarScope: ast.Let,
			Value:    &value,
		}
	case e.Call != nil:
		args := make([]ast.Instruction, 0, len(e.Call.Args))
		for _, a := range e.Call.Args {
			args = append(args, lowerExpr(a, bag))
		}
		return ast.Instruction{
			Kind:     ast.FunctionCall,
			Span:     span,
			CallName: strings.Join(e.Call.Name, "."),
			Args:     args,
		}
	case e.Object != nil:
		fields := make(map[string]ast.Instruction, len(e.Object.Members))
		for _, m := range e.Object.Members {
			key := m.Key
			if strings.HasPrefix(key, `"`) || strings.HasPrefix(key, "'") {
				key, _ = unescapeString(key, m.Pos, bag)
			}
			fields[key] = lowerExpr(m.Value, bag)
		}
		return ast.Instruction{Kind: ast.Object, Span: span, Fields: fields}
	case e.String != nil:
		s, _ := unescapeString(*e.String, e.Pos, bag)
		return ast.Instruction{Kind: ast.StringLiteral, Span: span, Str: s}
	case e.Number != nil:
		return ast.Instruction{Kind: ast.NumericLiteral, Span: span, Num: *e.Number}
	case e.Bool != nil:
		return ast.Instruction{Kind: ast.BooleanLiteral, Span: span, Bool: *e.Bool == "true"}
	case e.VarRef != nil:
		return ast.Instruction{Kind: ast.VariableReference, Span: span, Name: *e.VarRef}
	default:
		// Unreachable: the grammar requires exactly one alternative to match.
		return ast.Instruction{Kind: ast.BooleanLiteral, Span: span}
	}
}

func spanOf(p lexer.Position) ast.Span {
	return ast.Span{Start: p.Offset, End: p.Offset + 1}
}

// unescapeString strips the surrounding quotes from a lexed string token and
// resolves \\ \/ \" \b \f \n \r \t \uXXXX escapes, per spec §4.1. An
// invalid \uXXXX sequence substitutes U+FFFD and appends a diagnostic
// instead of failing the parse.
func unescapeString(raw string, pos lexer.Position, bag *diag.Bag) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	body := raw[1 : len(raw)-1]

	var b strings.Builder
	b.Grow(len(body))
	ok := true
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if i+4 < len(body) {
				hex := body[i+1 : i+5]
				if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 4
					continue
				}
			}
			b.WriteRune('�')
			ok = false
			bag.Add(diag.Diagnostic{
				Span:    ast.Span{Start: pos.Offset, End: pos.Offset + len(raw)},
				Message: "invalid unicode escape sequence in string literal",
				Label:   "invalid \\u escape",
			})
			if i+4 < len(body) {
				i += 4
			} else {
				i = len(body) - 1
			}
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), ok
}
