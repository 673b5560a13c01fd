package backend

import (
	"fmt"
	"unsafe"

	"tinygo.org/x/go-llvm"

	"toyc/internal/ast"
	"toyc/internal/codegen"
)

// JIT is the JIT sink of spec.md §4.3: it finalizes a built module and
// exposes a raw entry-point function pointer the driver casts to
// fn() -> i64 and calls once.
type JIT struct {
	mod    *codegen.Module
	engine llvm.ExecutionEngine
}

// CompileJIT builds instrs as "main" and finalizes it for in-process
// execution. Imported external symbols are resolved against the host
// process's exported symbols via LLVM's default libcall resolver, the
// same mechanism original_source's cranelift_module::default_libcall_names
// provides (spec.md §4.3).
func CompileJIT(sourceName string, instrs []ast.Instruction) (*JIT, error) {
	initOnce()

	mod := codegen.NewModule(sourceName, codegen.Width64)
	if _, err := codegen.BuildMain(mod, instrs); err != nil {
		mod.Dispose()
		return nil, err
	}

	if err := verify(mod.LLVMModule()); err != nil {
		mod.Dispose()
		return nil, err
	}

	llvm.LinkInMCJIT()
	engine, err := llvm.NewExecutionEngine(mod.LLVMModule())
	if err != nil {
		mod.Dispose()
		return nil, fmt.Errorf("could not initialize jit environment: %w", err)
	}

	return &JIT{mod: mod, engine: engine}, nil
}

// GetFinalizedFunction returns a callable fn() int64 for the named function
// (spec §4.3's get_finalized_function). The returned value is only valid
// while the JIT (and its Module) is live.
func (j *JIT) GetFinalizedFunction(name string) (func() int64, error) {
	addr := j.engine.PointerToGlobal(j.engine.FindFunction(name))
	if addr == nil {
		return nil, fmt.Errorf("no finalized function named %q", name)
	}

	// Go has no builtin "call this raw code pointer" primitive; a Go func
	// value is, on every architecture this toolchain targets, a pointer to
	// a single code-pointer word. Building that shape by hand and
	// reinterpreting it as fn() int64 is the same trick Rust's JIT driver
	// plays with `mem::transmute::<*const u8, fn() -> i64>` in
	// original_source's compiler/src/main.rs.
	codePtr := uintptr(addr)
	funcVal := [1]uintptr{codePtr}
	fn := *(*func() int64)(unsafe.Pointer(&funcVal))
	return fn, nil
}

// Dispose releases the execution engine and the underlying module. The
// driver must have already invoked the entry point before calling Dispose
// (spec §5's JIT lifecycle note).
func (j *JIT) Dispose() {
	j.engine.Dispose()
	j.mod.Dispose()
}
