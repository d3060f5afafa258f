// Package graph implements generic graph algorithms shared across the
// IR's CFG and the DI driver: a dominator-tree construction (Cooper,
// Harvey & Kennedy's engineered iterative algorithm) and the BFS
// dominator-tree preorder the driver uses to seed its work list.
package graph

import "fmt"

// DominatorTree computes immediate dominators for every node reachable
// from root, using reverse-postorder iteration to a fixed point.
//
// It returns:
//   - idom: a function giving the immediate dominator of a reachable node
//     (root is its own immediate dominator).
//   - preorder: the dominator tree in BFS preorder starting at root, the
//     order the DI driver (spec.md §4.2) uses to seed its work list.
//
// A node not reachable from root has no entry in either result; callers
// must treat that as "unreachable block" (a precondition violation per
// spec.md §4.2 and §7).
func DominatorTree[T comparable](root T, succs func(T) []T) (
	idom func(T) (T, bool),
	preorder func() []T,
) {
	// Discover reachable nodes and predecessors via DFS, numbering them
	// in postorder (this mirrors utils/graph's original traversal, generalized
	// to take an explicit successor function rather than a fixed Graph type).
	postIndex := map[T]int{}
	var order []T
	preds := map[T][]T{}

	var dfs func(T)
	visiting := map[T]bool{}
	dfs = func(n T) {
		if visiting[n] {
			return
		}
		visiting[n] = true
		for _, s := range succs(n) {
			preds[s] = append(preds[s], n)
			dfs(s)
		}
		postIndex[n] = len(order)
		order = append(order, n)
	}
	dfs(root)

	nNodes := len(order)
	rootIdx := nNodes - 1 // root is last in postorder

	doms := make([]int, nNodes)
	for i := range doms {
		doms[i] = -1
	}
	doms[rootIdx] = rootIdx

	intersect := func(a, b int) int {
		for a != b {
			for a < b {
				a = doms[a]
			}
			for b < a {
				b = doms[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		for i := nNodes - 2; i >= 0; i-- {
			node := order[i]
			newIdom := -1
			for _, p := range preds[node] {
				pIdx := postIndex[p]
				if doms[pIdx] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = pIdx
				} else {
					newIdom = intersect(pIdx, newIdom)
				}
			}
			if newIdom != doms[i] {
				doms[i] = newIdom
				changed = true
			}
		}
	}

	idom = func(n T) (T, bool) {
		i, ok := postIndex[n]
		if !ok || doms[i] == -1 {
			var zero T
			return zero, false
		}
		return order[doms[i]], true
	}

	preorder = func() []T {
		children := map[int][]int{}
		for i := 0; i < nNodes; i++ {
			if i == rootIdx {
				continue
			}
			children[doms[i]] = append(children[doms[i]], i)
		}

		var out []T
		queue := []int{rootIdx}
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			out = append(out, order[i])
			queue = append(queue, children[i]...)
		}
		return out
	}

	return idom, preorder
}

// Dominates reports whether a dominates b, given an idom function as
// returned by DominatorTree. Every node dominates itself.
func Dominates[T comparable](idom func(T) (T, bool), a, b T) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}
		parent, ok := idom(cur)
		if !ok {
			return false
		}
		if parent == cur {
			// Reached the root without encountering a.
			return a == cur
		}
		cur = parent
	}
}

// MustIdom panics if n has no immediate dominator; used where the caller
// has already established reachability is a precondition.
func MustIdom[T comparable](idom func(T) (T, bool), n T) T {
	d, ok := idom(n)
	if !ok {
		panic(fmt.Errorf("graph: %v has no immediate dominator (unreachable)", n))
	}
	return d
}
