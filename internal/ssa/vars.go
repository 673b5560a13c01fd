// Package ssa implements the variable-renaming half of SSA construction
// that a block-parameter-aware code generator (cranelift, and this repo's
// LLVM-backed one) needs but doesn't provide for free: turning repeated
// def_var/use_var calls on a named slot into correctly-phi'd values at
// control-flow joins, including loop headers whose predecessor set isn't
// complete until the back-edge is emitted.
//
// This is the classic Braun, Buchwald, Hack, Leißa, Mallon & Zwinkau
// algorithm ("Simple and Efficient Construction of Static Single Assignment
// Form"), the same incremental construction design note 9(b) of spec.md
// prescribes for reimplementations without a cranelift-shaped library.
package ssa

// Var identifies a variable slot, dense and unique within one function
// (spec §3's "Variable slot").
type Var int

// Backend is the minimal capability the variable-renaming algorithm needs
// from the underlying code generator: creating an empty (operand-less) phi
// at a block, adding operands to it later, and reporting a sealed block's
// predecessors. internal/codegen implements this over tinygo.org/x/go-llvm.
type Backend[Block comparable, Value any, Type any] interface {
	NewPhi(block Block, typ Type) Value
	AddIncoming(phi Value, pred Block, v Value)
	Predecessors(block Block) []Block
	// TryRemoveTrivialPhi supports the optional trivial-phi elision
	// step; it may be a no-op that just returns
	// phi unchanged if the backend doesn't want the optimization.
	TryRemoveTrivialPhi(phi Value) Value
}

// Builder tracks, per variable and per block, the current SSA definition,
// resolving reads that cross an unsealed or multi-predecessor block into
// phi nodes on demand.
type Builder[Block comparable, Value any, Type any] struct {
	backend Backend[Block, Value, Type]

	currentDef     map[Var]map[Block]Value
	incompletePhis map[Block]map[Var]Value
	sealed         map[Block]bool
	varType        map[Var]Type
}

// NewBuilder constructs an empty variable-renaming builder over backend.
func NewBuilder[Block comparable, Value any, Type any](backend Backend[Block, Value, Type]) *Builder[Block, Value, Type] {
	return &Builder[Block, Value, Type]{
		backend:        backend,
		currentDef:     make(map[Var]map[Block]Value),
		incompletePhis: make(map[Block]map[Var]Value),
		sealed:         make(map[Block]bool),
		varType:        make(map[Var]Type),
	}
}

// DeclareVar records the storage type of a variable slot, used when a phi
// for it must be synthesized. Must be called at least once before WriteVar
// or ReadVar for that variable.
func (b *Builder[Block, Value, Type]) DeclareVar(v Var, typ Type) {
	if _, ok := b.varType[v]; !ok {
		b.varType[v] = typ
	}
}

// WriteVar records value as the current definition of v within block
// (cranelift's def_var).
func (b *Builder[Block, Value, Type]) WriteVar(v Var, block Block, value Value) {
	m, ok := b.currentDef[v]
	if !ok {
		m = make(map[Block]Value)
		b.currentDef[v] = m
	}
	m[block] = value
}

// ReadVar returns the SSA value for the current definition of v as seen
// from block (cranelift's use_var), creating phi nodes at joins as needed.
func (b *Builder[Block, Value, Type]) ReadVar(v Var, block Block) Value {
	if m, ok := b.currentDef[v]; ok {
		if val, ok := m[block]; ok {
			return val
		}
	}
	return b.readVarRecursive(v, block)
}

func (b *Builder[Block, Value, Type]) readVarRecursive(v Var, block Block) Value {
	var value Value
	if !b.sealed[block] {
		// Predecessor set incomplete (e.g. a loop header awaiting its
		// back-edge): emit an incomplete phi and resolve it once Seal is
		// called for this block.
		value = b.backend.NewPhi(block, b.varType[v])
		if b.incompletePhis[block] == nil {
			b.incompletePhis[block] = make(map[Var]Value)
		}
		b.incompletePhis[block][v] = value
	} else if preds := b.backend.Predecessors(block); len(preds) == 1 {
		value = b.ReadVar(v, preds[0])
	} else {
		phi := b.backend.NewPhi(block, b.varType[v])
		b.WriteVar(v, block, phi)
		value = b.addPhiOperands(v, block, phi)
	}
	b.WriteVar(v, block, value)
	return value
}

func (b *Builder[Block, Value, Type]) addPhiOperands(v Var, block Block, phi Value) Value {
	for _, pred := range b.backend.Predecessors(block) {
		b.backend.AddIncoming(phi, pred, b.ReadVar(v, pred))
	}
	return b.backend.TryRemoveTrivialPhi(phi)
}

// Seal declares that block's complete predecessor set is now known
// (spec §3's block-sealing invariant): it resolves any phi nodes that were
// left incomplete by reads that arrived before the predecessor set was
// final. Seal must be called at most once per block.
func (b *Builder[Block, Value, Type]) Seal(block Block) {
	for v, phi := range b.incompletePhis[block] {
		b.addPhiOperands(v, block, phi)
	}
	delete(b.incompletePhis, block)
	b.sealed[block] = true
}

// Sealed reports whether block has already been sealed.
func (b *Builder[Block, Value, Type]) Sealed(block Block) bool {
	return b.sealed[block]
}
