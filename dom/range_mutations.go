package dom

import "weak"

// rangeRegistry tracks the live Range objects of a document so their boundary
// points follow tree mutations. Ranges are held weakly: a Range nobody
// references any more simply drops out of the registry.
type rangeRegistry struct {
	ranges []weak.Pointer[Range]
}

func (reg *rangeRegistry) add(r *Range) {
	if reg == nil {
		return
	}
	reg.ranges = append(reg.ranges, weak.Make(r))
}

func (reg *rangeRegistry) remove(r *Range) {
	if reg == nil {
		return
	}
	for i, p := range reg.ranges {
		if p.Value() == r {
			reg.ranges = append(reg.ranges[:i], reg.ranges[i+1:]...)
			return
		}
	}
}

// each calls fn for every live range, compacting collected entries as it goes.
func (reg *rangeRegistry) each(fn func(*Range)) {
	if reg == nil {
		return
	}
	alive := reg.ranges[:0]
	for _, p := range reg.ranges {
		if r := p.Value(); r != nil {
			alive = append(alive, p)
			fn(r)
		}
	}
	clear(reg.ranges[len(alive):])
	reg.ranges = alive
}

// removed implements the live range steps of the "remove" algorithm.
// https://dom.spec.whatwg.org/#concept-node-remove
func (reg *rangeRegistry) removed(parent, child *Node, oldIndex int) {
	reg.each(func(r *Range) {
		if r.startContainer.isInclusiveDescendantOf(child) {
			r.startContainer, r.startOffset = parent, oldIndex
		}
		if r.endContainer.isInclusiveDescendantOf(child) {
			r.endContainer, r.endOffset = parent, oldIndex
		}
		if r.startContainer == parent && r.startOffset > oldIndex {
			r.startOffset--
		}
		if r.endContainer == parent && r.endOffset > oldIndex {
			r.endOffset--
		}
	})
}

// inserted implements the live range steps of the "insert" algorithm.
// https://dom.spec.whatwg.org/#concept-node-insert
func (reg *rangeRegistry) inserted(parent *Node, newIndex int) {
	reg.each(func(r *Range) {
		if r.startContainer == parent && r.startOffset > newIndex {
			r.startOffset++
		}
		if r.endContainer == parent && r.endOffset > newIndex {
			r.endOffset++
		}
	})
}

// replacedData implements the live range steps of the "replace data" algorithm.
// https://dom.spec.whatwg.org/#concept-cd-replace
func (reg *rangeRegistry) replacedData(node *Node, offset, count, dataLength int) {
	reg.each(func(r *Range) {
		if r.startContainer == node {
			if r.startOffset > offset && r.startOffset <= offset+count {
				r.startOffset = offset
			} else if r.startOffset > offset+count {
				r.startOffset += dataLength - count
			}
		}
		if r.endContainer == node {
			if r.endOffset > offset && r.endOffset <= offset+count {
				r.endOffset = offset
			} else if r.endOffset > offset+count {
				r.endOffset += dataLength - count
			}
		}
	})
}

// splitText moves boundary points past offset in node onto tail, which was
// just inserted after node.
// https://dom.spec.whatwg.org/#concept-text-split
func (reg *rangeRegistry) splitText(node, tail *Node, offset int) {
	parent := node.parentNode
	index := indexOfChild(parent, node)
	reg.each(func(r *Range) {
		if r.startContainer == node && r.startOffset > offset {
			r.startContainer, r.startOffset = tail, r.startOffset-offset
		}
		if r.endContainer == node && r.endOffset > offset {
			r.endContainer, r.endOffset = tail, r.endOffset-offset
		}
		if r.startContainer == parent && r.startOffset == index+1 {
			r.startOffset++
		}
		if r.endContainer == parent && r.endOffset == index+1 {
			r.endOffset++
		}
	})
}

// mergedText moves boundary points from a Text sibling being merged into
// target during Normalize, where length is target's data length before merged.
func (reg *rangeRegistry) mergedText(target, merged *Node, length int) {
	parent := merged.parentNode
	index := indexOfChild(parent, merged)
	reg.each(func(r *Range) {
		if r.startContainer == merged {
			r.startContainer, r.startOffset = target, r.startOffset+length
		}
		if r.endContainer == merged {
			r.endContainer, r.endOffset = target, r.endOffset+length
		}
		if r.startContainer == parent && r.startOffset == index {
			r.startContainer, r.startOffset = target, length
		}
		if r.endContainer == parent && r.endOffset == index {
			r.endContainer, r.endOffset = target, length
		}
	})
}
