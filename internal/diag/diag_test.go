package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toyc/internal/ast"
)

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Message: "unexpected token"}
	assert.Equal(t, "unexpected token", d.Error())

	d.Expected = []string{"Ident", "Number"}
	assert.Equal(t, "unexpected token (expected one of: Ident, Number)", d.Error())
}

func TestBagErrNilWhenEmpty(t *testing.T) {
	var b Bag
	assert.Nil(t, b.Err())
	assert.Equal(t, 0, b.Len())
}

func TestBagCollectsInOrder(t *testing.T) {
	var b Bag
	b.Add(Diagnostic{Message: "first"})
	b.Add(Diagnostic{Message: "second"})

	require.Equal(t, 2, b.Len())
	assert.Equal(t, "first", b.Items()[0].Message)
	assert.Equal(t, "second", b.Items()[1].Message)

	err := b.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestLineAtFindsLineAndColumn(t *testing.T) {
	src := "let x = 1;\nconsole.log(x)\n"
	line, col, text := lineAt(src, 11) // first byte of second line
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)
	assert.Equal(t, "console.log(x)", text)
}

func TestLineAtClampsPastEOF(t *testing.T) {
	src := "abc"
	line, col, text := lineAt(src, 100)
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)
	assert.Equal(t, "abc", text)
}

func TestRenderIncludesSpanAndExpected(t *testing.T) {
	src := `let x = @;`
	d := Diagnostic{
		Span:     ast.Span{Start: 8, End: 9},
		Message:  "unexpected token",
		Expected: []string{"Ident", "Number", "String"},
		Found:    "@",
		Label:    "expression",
	}

	out := Render(src, d)
	assert.Contains(t, out, "unexpected token")
	assert.Contains(t, out, "expression")
	assert.Contains(t, out, "line 1, col 9")
	assert.Contains(t, out, "expected: Ident, Number, String")
	assert.Contains(t, out, "found: @")
}
