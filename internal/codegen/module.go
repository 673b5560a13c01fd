// Package codegen is the IR Builder of spec.md §4.2: it walks a function's
// instruction sequence and emits LLVM IR in SSA form, using
// internal/ssa for the define_var/use_var-to-phi translation cranelift
// gives away for free and tinygo.org/x/go-llvm never has to.
//
// Grounded on the teacher's ir/llvm/transform.go: the same
// Context/Module/Builder triple, the same symbol-table-as-map shape, the
// same per-target pointer/float type selection.
package codegen

import (
	"fmt"
	"sync"

	"tinygo.org/x/go-llvm"
)

// reservedNames mirrors the teacher's reservedFunctionNames. Reserved
// reports membership; the builder does not consult it when declaring
// symbols.
var reservedNames = []string{"main", "printf", "atof", "atoi", "puts"}

// Module is the per-compilation bundle of spec.md §3's "Compilation
// context": target pointer-width type, a symbol table of declared
// globals/functions, a data-section staging buffer, and the LLVM module
// handle that owns all emitted code/data for the lifetime of one
// compilation.
type Module struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	// IntType is the pointer-width integer type (spec §3). FloatType is
	// the matching float type used for non-integral numeric literals.
	IntType   llvm.Type
	FloatType llvm.Type

	symTab   map[string]llvm.Value // name -> declared function/global, guarded by mu
	mu       sync.RWMutex
	staging  []byte // anonymous-data staging buffer (spec §4.3)
	anonSeq  int
	external map[string]bool // names declared as imported externs
}

// PointerWidth selects 32 or 64-bit pointer-width types, matching the
// teacher's Riscv32-vs-default split in ir/llvm/transform.go.
type PointerWidth int

const (
	Width64 PointerWidth = 64
	Width32 PointerWidth = 32
)

// NewModule constructs a fresh compilation context named after the source
// file's base name (sourceName is cosmetic, used only as the LLVM module
// identifier).
func NewModule(sourceName string, width PointerWidth) *Module {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(sourceName)
	b := ctx.NewBuilder()

	m := &Module{
		ctx:      ctx,
		mod:      mod,
		builder:  b,
		symTab:   make(map[string]llvm.Value, 16),
		external: make(map[string]bool, 4),
	}
	if width == Width32 {
		m.IntType = ctx.Int32Type()
		m.FloatType = ctx.FloatType()
	} else {
		m.IntType = ctx.Int64Type()
		m.FloatType = ctx.DoubleType()
	}
	return m
}

// Dispose releases the LLVM context, module and builder. JIT-finalized code
// is only valid while the module is live (spec §3's lifecycle note); the
// driver must have already invoked the entry point before calling Dispose.
func (m *Module) Dispose() {
	m.builder.Dispose()
	m.mod.Dispose()
	m.ctx.Dispose()
}

// LLVMModule exposes the underlying module for the backend adapter.
func (m *Module) LLVMModule() llvm.Module {
	return m.mod
}

// Reserved reports whether name collides with a reserved function name
// (spec invariant: "external function names never collide with local
// function names").
func Reserved(name string) bool {
	for _, r := range reservedNames {
		if r == name {
			return true
		}
	}
	return false
}

// declareSymbol registers fn under name in the symbol table. A second
// registration under the same name replaces the first; callers look the
// name up before declaring.
func (m *Module) declareSymbol(name string, fn llvm.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symTab[name] = fn
}

func (m *Module) lookupSymbol(name string) (llvm.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.symTab[name]
	return v, ok
}

// declareExternal declares an imported symbol (one named by a FunctionCall
// ending in "_ext", suffix stripped) with the generic all-pointer-width
// call signature of spec §4.2, returning the existing declaration if
// already declared.
func (m *Module) declareExternal(name string, arity int) llvm.Value {
	if v, ok := m.lookupSymbol(name); ok {
		return v
	}
	params := make([]llvm.Type, arity)
	for i := range params {
		params[i] = m.IntType
	}
	ftyp := llvm.FunctionType(m.IntType, params, false)
	fn := llvm.AddFunction(m.mod, name, ftyp)
	m.external[name] = true
	m.declareSymbol(name, fn)
	return fn
}

// declareLocal declares a locally synthesized function (the entry point
// "main", and any callee without the "_ext" suffix) with the generic call
// signature, returning the existing declaration if already declared.
func (m *Module) declareLocal(name string, arity int) llvm.Value {
	if v, ok := m.lookupSymbol(name); ok {
		return v
	}
	params := make([]llvm.Type, arity)
	for i := range params {
		params[i] = m.IntType
	}
	ftyp := llvm.FunctionType(m.IntType, params, false)
	fn := llvm.AddFunction(m.mod, name, ftyp)
	m.declareSymbol(name, fn)
	return fn
}

// DefineAnonymousString stages s as anonymous read-only data and returns an
// i8* pointer value to it (spec §4.3's define_anonymous_data +
// symbol_value). CreateGlobalStringPtr appends its own NUL terminator, so
// the staging buffer holds the raw bytes only. The buffer is cleared after
// each definition, matching the single-writer scratch-area contract of
// spec §5.
func (m *Module) DefineAnonymousString(s string) llvm.Value {
	m.staging = append(m.staging[:0], s...)

	name := fmt.Sprintf("L_STR%d", m.anonSeq)
	m.anonSeq++

	g := m.builder.CreateGlobalStringPtr(string(m.staging), name)
	m.staging = m.staging[:0] // clear the staging buffer; re-use without clearing is a defect (spec §5).
	return g
}
