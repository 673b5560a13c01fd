// Package util holds the driver's configuration type and small I/O helpers,
// grounded on the teacher's util/args.go and util/io.go.
package util

// Options is the fully-resolved configuration for one compilation,
// populated by cmd/toyc's cobra command from spec.md §6's CLI contract.
type Options struct {
	Src    string // Path to source file (positional, required).
	Out    string // -o/--output: path to the linked static executable. Empty means JIT-execute.
	Target string // -t/--target: target triple for object emission.
	CC     string // $CC: C compiler driver used for linking object output.

	Tokens bool // --tokens: lex only, print token stream, exit (SPEC_FULL.md supplemented debug flag).
	AST    bool // --ast: parse only, print instruction tree, exit (SPEC_FULL.md supplemented debug flag).
	Verbose bool // -v/--verbose: log pass timings to stderr via logrus.
}

// EmitObject reports whether this compilation should route to the object
// sink (an output path was given) rather than JIT execution.
func (o Options) EmitObject() bool {
	return o.Out != ""
}
