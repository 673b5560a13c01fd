package backend

import (
	"errors"
	"fmt"

	"tinygo.org/x/go-llvm"

	"toyc/internal/ast"
	"toyc/internal/codegen"
)

// Object is the object sink of spec.md §4.3: Finish produces a relocatable
// object byte buffer exporting "main", for the driver to link into a
// static executable with the external C compiler.
type Object struct {
	mod    *codegen.Module
	tm     llvm.TargetMachine
	target llvm.Target
	triple string
}

// CompileObject builds instrs as "main" targeting triple (spec.md §6's
// -t/--target, default DefaultTriple), matching the teacher's
// genTargetTriple/CreateTargetMachine sequence in ir/llvm/transform.go.
func CompileObject(sourceName string, instrs []ast.Instruction, triple string) (*Object, error) {
	initOnce()

	if triple == "" {
		triple = DefaultTriple
	}

	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, fmt.Errorf("could not resolve target triple %q: %w", triple, err)
	}

	mod := codegen.NewModule(sourceName, widthForTriple(triple))
	if _, err := codegen.BuildMain(mod, instrs); err != nil {
		mod.Dispose()
		return nil, err
	}
	if err := verify(mod.LLVMModule()); err != nil {
		mod.Dispose()
		return nil, err
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelNone, llvm.RelocDefault, llvm.CodeModelDefault)

	td := tm.CreateTargetData()
	defer td.Dispose()
	mod.LLVMModule().SetDataLayout(td.String())
	mod.LLVMModule().SetTarget(tm.Triple())

	return &Object{mod: mod, tm: tm, target: target, triple: triple}, nil
}

// Finish emits the relocatable object and releases the module/target
// machine. Call it at most once.
func (o *Object) Finish() ([]byte, error) {
	buf, err := o.tm.EmitToMemoryBuffer(o.mod.LLVMModule(), llvm.ObjectFile)
	if err != nil {
		return nil, fmt.Errorf("could not emit object code: %w", err)
	}
	if buf.IsNil() {
		return nil, errors.New("could not emit compiled code to memory")
	}
	defer buf.Dispose()
	out := append([]byte(nil), buf.Bytes()...)

	o.tm.Dispose()
	o.mod.Dispose()
	return out, nil
}
