// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// DominatorTree and PostDominatorTree answer the dominance queries the
// selector needs (§4.A). Both are computed per function, and functions
// in this pass are small, so a plain iterative dataflow fixpoint
// is used rather than Lengauer-Tarjan; see DESIGN.md for why this part
// of the pass has no teacher grounding.

// DominatorTree answers "does A dominate B" queries for one function.
type DominatorTree struct {
	dom map[*BasicBlock]map[*BasicBlock]bool
}

// PostDominatorTree answers "does A post-dominate B" queries for one
// function, relative to a virtual exit node joining all blocks with no
// successors.
type PostDominatorTree struct {
	dom map[*BasicBlock]map[*BasicBlock]bool
}

// BuildDominatorTree computes the dominator tree of f rooted at its
// entry block.
func BuildDominatorTree(f *Function) *DominatorTree {
	return &DominatorTree{dom: computeDominance(f.Blocks, f.Entry, succOf, predOf)}
}

// BuildPostDominatorTree computes the post-dominator tree of f relative
// to a virtual exit joining f.Exits().
func BuildPostDominatorTree(f *Function) *PostDominatorTree {
	exits := f.Exits()
	virtual := &BasicBlock{Name: "<virtual exit>"}
	blocks := append(append([]*BasicBlock{}, f.Blocks...), virtual)

	succ := func(b *BasicBlock) []*BasicBlock {
		if b == virtual {
			return exits // reversed graph: virtual's successors are the real exits
		}
		return b.Preds // reversed graph: "successors" in reverse = predecessors
	}
	pred := func(b *BasicBlock) []*BasicBlock {
		if b == virtual {
			return nil
		}
		if len(b.Succs) == 0 {
			return []*BasicBlock{virtual} // reversed graph: an exit's only predecessor is virtual
		}
		return b.Succs // reversed graph: "predecessors" in reverse = successors
	}

	dom := computeDominance(blocks, virtual, succ, pred)
	return &PostDominatorTree{dom: dom}
}

// computeDominance runs the classic iterative dataflow fixpoint:
// Dom(start) = {start}; Dom(n) = {n} ∪ (∩ Dom(p) for p in pred(n)).
// succ/pred are injected so the same code computes both the forward
// dominator tree and, over a reversed graph, the post-dominator tree.
func computeDominance(blocks []*BasicBlock, start *BasicBlock, succ, pred func(*BasicBlock) []*BasicBlock) map[*BasicBlock]map[*BasicBlock]bool {
	all := make(map[*BasicBlock]bool, len(blocks))
	for _, b := range blocks {
		all[b] = true
	}

	dom := make(map[*BasicBlock]map[*BasicBlock]bool, len(blocks))
	for _, b := range blocks {
		if b == start {
			dom[b] = map[*BasicBlock]bool{start: true}
		} else {
			dom[b] = make(map[*BasicBlock]bool, len(blocks))
			for other := range all {
				dom[b][other] = true
			}
		}
	}

	order := reversePostorder(start, succ)

	for changed := true; changed; {
		changed = false
		for _, b := range order {
			if b == start {
				continue
			}
			var next map[*BasicBlock]bool
			for _, p := range pred(b) {
				if next == nil {
					next = copySet(dom[p])
					continue
				}
				intersect(next, dom[p])
			}
			if next == nil {
				next = make(map[*BasicBlock]bool)
			}
			next[b] = true
			if !setsEqual(next, dom[b]) {
				dom[b] = next
				changed = true
			}
		}
	}

	return dom
}

func reversePostorder(start *BasicBlock, succ func(*BasicBlock) []*BasicBlock) []*BasicBlock {
	visited := make(map[*BasicBlock]bool)
	var post []*BasicBlock

	var visit func(*BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range succ(b) {
			visit(s)
		}
		post = append(post, b)
	}
	visit(start)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

func copySet(s map[*BasicBlock]bool) map[*BasicBlock]bool {
	out := make(map[*BasicBlock]bool, len(s))
	for b := range s {
		out[b] = true
	}
	return out
}

func intersect(a, b map[*BasicBlock]bool) {
	for k := range a {
		if !b[k] {
			delete(a, k)
		}
	}
}

func setsEqual(a, b map[*BasicBlock]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Dominates reports whether a dominates b.
func (dt *DominatorTree) Dominates(a, b *BasicBlock) bool {
	return dt.dom[b][a]
}

// Dominates reports whether a post-dominates b.
func (pdt *PostDominatorTree) Dominates(a, b *BasicBlock) bool {
	return pdt.dom[b][a]
}

// IsFullDominator reports whether b has at least one successor and
// dominates every one of them (§4.A step 3).
func IsFullDominator(b *BasicBlock, dt *DominatorTree) bool {
	if len(b.Succs) == 0 {
		return false
	}
	for _, s := range b.Succs {
		if !dt.Dominates(b, s) {
			return false
		}
	}
	return true
}

// IsFullPostDominator reports whether b has at least one predecessor
// and post-dominates every one of them (§4.A step 3).
func IsFullPostDominator(b *BasicBlock, pdt *PostDominatorTree) bool {
	if len(b.Preds) == 0 {
		return false
	}
	for _, p := range b.Preds {
		if !pdt.Dominates(b, p) {
			return false
		}
	}
	return true
}

// IsBackEdge reports whether from->to is a backedge: To dominates From,
// or To's unique successor dominates From. Carried over from the
// original pass's sancov.cpp (not consulted by the published selector
// predicate, but used by the driver's loop-aware diagnostics — see
// SPEC_FULL.md §4.G).
func IsBackEdge(from, to *BasicBlock, dt *DominatorTree) bool {
	if dt.Dominates(to, from) {
		return true
	}
	if len(to.Succs) == 1 {
		if dt.Dominates(to.Succs[0], from) {
			return true
		}
	}
	return false
}

func succOf(b *BasicBlock) []*BasicBlock { return b.Succs }
func predOf(b *BasicBlock) []*BasicBlock { return b.Preds }
