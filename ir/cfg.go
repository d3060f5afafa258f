package ir

import (
	"github.com/vsl-lang/divc/utils/graph"
)

// CFG is the control-flow graph derived from a function's block
// terminators, plus the dominator tree over it (spec.md §6:
// "cfg(function)" and "DominatorTree(function, cfg)").
type CFG struct {
	fn       *Function
	preds    map[*Block][]*Block
	idom     func(*Block) (*Block, bool)
	preorder []*Block
}

func buildCFG(fn *Function) *CFG {
	c := &CFG{fn: fn, preds: map[*Block][]*Block{}}
	for _, b := range fn.Blocks {
		for _, s := range b.Successors() {
			c.preds[s] = append(c.preds[s], b)
		}
	}

	entry := fn.Entry()
	if entry != nil {
		idom, preorder := graph.DominatorTree(entry, func(b *Block) []*Block {
			return b.Successors()
		})
		c.idom = idom
		c.preorder = preorder()
	}
	return c
}

// Preds returns the predecessors of b, in the order control-flow edges
// were discovered (stable across repeated calls on an unmutated CFG).
func (c *CFG) Preds(b *Block) []*Block {
	return c.preds[b]
}

// Succs returns the successors of b.
func (c *CFG) Succs(b *Block) []*Block {
	return b.Successors()
}

// ImmediateDominator returns b's immediate dominator and whether b is
// reachable from the entry block at all. An unreachable block is a
// precondition violation per spec.md §4.2.
func (c *CFG) ImmediateDominator(b *Block) (*Block, bool) {
	if c.idom == nil {
		return nil, false
	}
	return c.idom(b)
}

// Dominates reports whether a dominates b.
func (c *CFG) Dominates(a, b *Block) bool {
	if c.idom == nil {
		return false
	}
	return graph.Dominates(c.idom, a, b)
}

// DominatorPreorder returns the function's blocks in a BFS preorder of
// the dominator tree, rooted at the entry block — the traversal order
// spec.md §4.2 uses to seed the DI work list.
func (c *CFG) DominatorPreorder() []*Block {
	return c.preorder
}

// Entry returns the function's entry block.
func (c *CFG) Entry() *Block {
	return c.fn.Entry()
}
