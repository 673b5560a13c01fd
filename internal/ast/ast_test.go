package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExternalCall(t *testing.T) {
	name, ok := Instruction{Kind: FunctionCall, CallName: "puts_ext"}.IsExternalCall()
	assert.True(t, ok)
	assert.Equal(t, "puts", name)

	name, ok = Instruction{Kind: FunctionCall, CallName: "console.log"}.IsExternalCall()
	assert.False(t, ok)
	assert.Equal(t, "console.log", name)

	_, ok = Instruction{Kind: VariableReference, CallName: "x_ext"}.IsExternalCall()
	assert.False(t, ok, "only FunctionCall instructions can be external calls")
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, IsIntegral(123))
	assert.True(t, IsIntegral(0))
	assert.False(t, IsIntegral(123.456))
	assert.False(t, IsIntegral(0.5))
}
