package frontend

import "github.com/alecthomas/participle/v2/lexer"

// The grammar structs below are participle's declarative encoding of
// spec.md §4.1's EBNF. They are an intermediate tree distinct from
// internal/ast.Instruction: participle needs one struct shape per
// production, while the IR builder wants the closed tagged-union shape.
// lower.go converts between the two.

// statement := while_block | expr (';')?
type grammarStatement struct {
	Pos lexer.Position

	While *grammarWhile `  @@`
	Expr  *grammarExpr  `| @@ ";"?`

	EndPos lexer.Position
}

// while_block := 'while' '(' expr ')' '{' statement* '}'
type grammarWhile struct {
	Pos  lexer.Position
	Cond *grammarExpr       `"while" "(" @@ ")"`
	Body []*grammarStatement `"{" @@* "}"`
}

// expr := literal | call | var_decl | assign | var_ref | object
//
// Order matters: call, var_decl and assign must all be tried before var_ref
// so a bare identifier followed by '(', a leading let/const keyword, or a
// trailing '=' doesn't get swallowed by the single-token var_ref
// alternative.
type grammarExpr struct {
	Pos lexer.Position

	VarDecl *grammarVarDecl `  @@`
	Assign  *grammarAssign  `| @@`
	Call    *grammarCall    `| @@`
	Object  *grammarObject  `| @@`
	String  *string         `| @String`
	Number  *float64        `| @Number`
	Bool    *string         `| @( "true" | "false" )`
	VarRef  *string         `| @Ident`
}

// var_decl := ('let'|'const') ident '=' expr
type grammarVarDecl struct {
	Pos   lexer.Position
	Scope string       `@( "let" | "const" )`
	Name  string       `@Ident`
	Value *grammarExpr `"=" @@`
}

// assign := ident '=' expr
//
// Not part of spec.md §4.1's EBNF listing, but required by its own Variable
// semantics ("declares (if new) and assigns") and scenario S3, where a
// while-loop body reassigns an already-declared variable with no let/const
// keyword. lower.go folds this into the same ast.Variable shape var_decl
// produces, reusing the existing slot (§4.2's "duplicate Variable with the
// same name reuses the existing slot").
type grammarAssign struct {
	Pos   lexer.Position
	Name  string       `@Ident`
	Value *grammarExpr `"=" @@`
}

// call := ident ('.' ident)* '(' (expr (',' expr)* ','?)? ')'
type grammarCall struct {
	Pos  lexer.Position
	Name []string       `@Ident ( "." @Ident )*`
	Args []*grammarExpr `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

// object := '{' (member (',' member)*)? '}'
type grammarObject struct {
	Pos     lexer.Position
	Members []*grammarMember `"{" ( @@ ( "," @@ )* )? "}"`
}

// member := (string|ident) ':' expr
type grammarMember struct {
	Pos   lexer.Position
	Key   string       `( @String | @Ident )`
	Value *grammarExpr `":" @@`
}
