package ir

import "fmt"

// Block is a single-entry, single-exit (at the instruction-sequence level)
// sequence of instructions. Control only leaves a block through its last
// instruction (a terminator: branch, cond_branch, return, or
// unreachable).
type Block struct {
	Name   string
	Index  int
	fn     *Function
	instrs []Instruction
}

// Func returns the function a block belongs to.
func (b *Block) Func() *Function { return b.fn }

// Instrs returns the block's instructions in order. The returned slice
// must not be mutated by callers; use InsertBefore to mutate.
func (b *Block) Instrs() []Instruction {
	return b.instrs
}

// Terminator returns the block's last instruction, or nil for an
// (ill-formed) empty block.
func (b *Block) Terminator() Instruction {
	if len(b.instrs) == 0 {
		return nil
	}
	return b.instrs[len(b.instrs)-1]
}

// Successors returns the blocks control may transfer to after this one,
// derived from the terminator.
func (b *Block) Successors() []*Block {
	switch t := b.Terminator().(type) {
	case *Branch:
		return []*Block{t.Target}
	case *CondBranch:
		return []*Block{t.True, t.False}
	case *Return, *Unreachable:
		return nil
	default:
		return nil
	}
}

// append adds instr to the end of the block, assigning it its position
// (Builder.emit mints the ID). Used by Builder while constructing a
// function from scratch.
func (b *Block) append(instr Instruction) Instruction {
	instr.setPos(b, len(b.instrs))
	b.instrs = append(b.instrs, instr)
	return instr
}

// InsertBefore inserts newInstr immediately before the instruction
// `before` in b, shifting every later instruction's address up by one.
// This is the only IR mutation DI performs (spec.md §6: "insert(...,
// at: InsertionPoint.before(instructionId))"); there is deliberately no
// corresponding delete or reorder operation.
func (b *Block) InsertBefore(newInstr Instruction, before Instruction) {
	idx := -1
	for k, ins := range b.instrs {
		if ins == before {
			idx = k
			break
		}
	}
	if idx == -1 {
		panic(fmt.Errorf("ir: InsertBefore: %s is not in block %s", before, b.Name))
	}

	b.instrs = append(b.instrs, nil)
	copy(b.instrs[idx+1:], b.instrs[idx:])
	b.instrs[idx] = newInstr

	for k := idx; k < len(b.instrs); k++ {
		b.instrs[k].setPos(b, k)
	}
}

func (b *Block) String() string {
	return b.Name
}
