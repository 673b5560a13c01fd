// Package driver is the Driver of spec.md §4.4: it orchestrates
// read source -> parse -> build IR for main -> route to JIT execution or
// to object-then-link, grounded on the teacher's main.go run(opt) shape.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"toyc/internal/ast"
	"toyc/internal/backend"
	"toyc/internal/diag"
	"toyc/internal/frontend"
	"toyc/internal/util"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
}

// Run executes one full compilation according to opt, matching spec.md
// §6's CLI contract: exit code 0 on success, the caller maps any returned
// error to exit code 1 (parse failure, compile failure, or linker
// failure).
func Run(opt util.Options) error {
	if opt.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	src, err := util.ReadSource(opt.Src)
	if err != nil {
		return err
	}

	if opt.Tokens {
		out, err := frontend.TokenStream(src)
		fmt.Fprint(os.Stderr, out)
		if err != nil {
			return fmt.Errorf("syntax error: %w", err)
		}
		return nil
	}

	start := time.Now()
	instrs, diags := frontend.Parse(src)
	log.WithField("elapsed", time.Since(start)).Debug("parse complete")

	var bag diag.Bag
	for _, d := range diags {
		fmt.Fprint(os.Stderr, diag.Render(src, d))
		bag.Add(d)
	}
	if instrs == nil {
		return fmt.Errorf("parse failed: %w", bag.Err())
	}

	if opt.AST {
		printTree(instrs, 0)
		return nil
	}

	if opt.EmitObject() {
		return runObject(opt, instrs)
	}
	return runJIT(opt, instrs)
}

func runJIT(opt util.Options, instrs []ast.Instruction) error {
	start := time.Now()
	jit, err := backend.CompileJIT(util.ObjectBaseName(opt.Src), instrs)
	if err != nil {
		return fmt.Errorf("jit compile failed: %w", err)
	}
	defer jit.Dispose()
	log.WithField("elapsed", time.Since(start)).Debug("jit finalized")

	main, err := jit.GetFinalizedFunction("main")
	if err != nil {
		return err
	}
	main() // spec §6: "the finalized main returns a pointer-width integer (always 0 in current lowering)".
	return nil
}

func runObject(opt util.Options, instrs []ast.Instruction) error {
	triple := opt.Target
	if triple == "" {
		triple = backend.DefaultTriple
	}

	obj, err := backend.CompileObject(util.ObjectBaseName(opt.Src), instrs, triple)
	if err != nil {
		return fmt.Errorf("object compile failed: %w", err)
	}
	bytes, err := obj.Finish()
	if err != nil {
		return err
	}

	objPath := util.ObjectBaseName(opt.Src) + ".o"
	if err := os.WriteFile(objPath, bytes, 0o644); err != nil {
		return fmt.Errorf("could not write object file %q: %w", objPath, err)
	}

	return link(opt, objPath, triple)
}

// link spawns the external C compiler to link a static executable, per
// spec.md §6: `$CC -static [-target <triple>] -o <output> <basename>.o`.
// The driver does not parse $CC's output; a non-zero exit status is
// returned as an error.
func link(opt util.Options, objPath, triple string) error {
	cc := opt.CC
	if cc == "" {
		cc = os.Getenv("CC")
	}
	if cc == "" {
		cc = "clang"
	}

	args := []string{"-static"}
	if triple != "" {
		args = append(args, "-target", triple)
	}
	args = append(args, "-o", opt.Out, objPath)

	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.WithField("cmd", cmd.String()).Debug("invoking linker")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("linker failed: %w", err)
	}
	return nil
}

// printTree pretty-prints the instruction tree for the --ast debug flag
// (SPEC_FULL.md's supplemented feature, grounded on the teacher's
// ir.Node.Print).
func printTree(instrs []ast.Instruction, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for _, instr := range instrs {
		fmt.Fprintf(os.Stderr, "%s%s\n", indent, describe(instr))
		switch instr.Kind {
		case ast.WhileBlock:
			printTree(instr.Body, depth+1)
		case ast.FunctionCall:
			printTree(instr.Args, depth+1)
		case ast.Variable:
			printTree([]ast.Instruction{*instr.Value}, depth+1)
		}
	}
}

func describe(instr ast.Instruction) string {
	switch instr.Kind {
	case ast.StringLiteral:
		return fmt.Sprintf("StringLiteral(%q)", instr.Str)
	case ast.NumericLiteral:
		return fmt.Sprintf("NumericLiteral(%v)", instr.Num)
	case ast.BooleanLiteral:
		return fmt.Sprintf("BooleanLiteral(%v)", instr.Bool)
	case ast.FunctionCall:
		return fmt.Sprintf("FunctionCall(%s)", instr.CallName)
	case ast.VariableReference:
		return fmt.Sprintf("VariableReference(%s)", instr.Name)
	case ast.Variable:
		return fmt.Sprintf("Variable(%s %s)", instr.VarScope, instr.Name)
	case ast.WhileBlock:
		return "WhileBlock"
	default:
		return instr.Kind.String()
	}
}
