// Package backend is the Backend Adapter of spec.md §4.3: it wraps
// tinygo.org/x/go-llvm so internal/codegen can be written once and routed
// to either sink. Grounded on the teacher's ir/llvm/transform.go GenLLVM,
// which owns one llvm.Module for the lifetime of a compilation; this
// package splits that ownership into two explicit sink types (JIT, Object)
// sharing the same construction path, mirroring how original_source's JIT
// struct (compiler-core/src/lib.rs) wraps a single cranelift JITModule.
package backend

import (
	"errors"
	"fmt"

	"tinygo.org/x/go-llvm"

	"toyc/internal/codegen"
)

var initOnce = func() func() {
	var done bool
	return func() {
		if done {
			return
		}
		llvm.InitializeAllTargetInfos()
		llvm.InitializeAllTargets()
		llvm.InitializeAllTargetMCs()
		llvm.InitializeAllAsmParsers()
		llvm.InitializeAllAsmPrinters()
		done = true
	}
}()

// DefaultTriple is the target triple used for object emission when the
// driver is given none (spec.md §6: "-t, --target <triple>: ... default
// x86_64-linux-musl").
const DefaultTriple = "x86_64-linux-musl"

// widthForTriple returns the pointer width implied by a target triple's
// architecture component; used only for object-sink compiles, since JIT
// always targets the host's native width (spec.md §4.3: "Pointer width is
// determined from the module's target configuration; on a 64-bit host it
// is 64 bits").
func widthForTriple(triple string) codegen.PointerWidth {
	if containsAny(triple, "riscv32", "arm-", "i686", "i386") {
		return codegen.Width32
	}
	return codegen.Width64
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}

// verify runs LLVM's module verifier (spec.md §7's "Module verification"
// error row), returning a formatted backend error on failure.
func verify(mod llvm.Module) error {
	if err := llvm.VerifyModule(mod, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("module verification failed: %w", err)
	}
	return nil
}

var errNilModule = errors.New("backend: module is nil")
