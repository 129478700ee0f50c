package gopublisher

import "fmt"

// NodeID is a handle to a node of a GroupTree.
type NodeID int

// NoNode is the parent of top-level nodes.
const NoNode NodeID = -1

// ShapeGroupElement is one node of the grouping hierarchy: a group or a
// single shape. Transform is the node's own transform, applied in page space.
type ShapeGroupElement struct {
	Parent    NodeID
	Children  []NodeID
	SeqNum    *uint32
	IsGroup   bool
	Transform Transform
}

// GroupTree stores the grouping hierarchy in an arena. Nodes refer to each
// other by handle; nothing is ever removed.
type GroupTree struct {
	nodes    []ShapeGroupElement
	roots    []NodeID
	bySeq    map[uint32]NodeID
	current  NodeID
	depth    int
	maxDepth int
}

// NewGroupTree creates an empty tree. maxDepth bounds group nesting;
// zero means unbounded.
func NewGroupTree(maxDepth int) *GroupTree {
	return &GroupTree{bySeq: make(map[uint32]NodeID), current: NoNode, maxDepth: maxDepth}
}

func (t *GroupTree) add(parent NodeID, isGroup bool) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, ShapeGroupElement{Parent: parent, IsGroup: isGroup, Transform: IdentityTransform()})
	if parent == NoNode {
		t.roots = append(t.roots, id)
	} else {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return id
}

// BeginGroup opens a new group inside the current one.
func (t *GroupTree) BeginGroup() (NodeID, error) {
	if t.maxDepth > 0 && t.depth >= t.maxDepth {
		return NoNode, fmt.Errorf("group nesting deeper than %d: %w", t.maxDepth, ErrMalformedReference)
	}
	t.current = t.add(t.current, true)
	t.depth++
	return t.current, nil
}

// EndGroup closes the current group. Unbalanced calls are ignored.
func (t *GroupTree) EndGroup() {
	if t.current == NoNode {
		return
	}
	t.current = t.nodes[t.current].Parent
	t.depth--
}

// SetCurrentGroupSeqNum binds the open group to a shape sequence number.
func (t *GroupTree) SetCurrentGroupSeqNum(seq uint32) {
	if t.current == NoNode {
		return
	}
	t.nodes[t.current].SeqNum = &seq
	t.bySeq[seq] = t.current
}

// SetShapeOrder appends a shape to the current group (or the top level).
// A sequence number that already has a node keeps it.
func (t *GroupTree) SetShapeOrder(seq uint32) NodeID {
	if id, ok := t.bySeq[seq]; ok {
		return id
	}
	id := t.add(t.current, false)
	t.nodes[id].SeqNum = &seq
	t.bySeq[seq] = id
	return id
}

// Attach adds a node for seq under the node of parentSeq, or at the top
// level when parentSeq is nil or unknown.
func (t *GroupTree) Attach(seq uint32, parentSeq *uint32, isGroup bool) NodeID {
	if id, ok := t.bySeq[seq]; ok {
		return id
	}
	parent := NoNode
	if parentSeq != nil {
		if p, ok := t.bySeq[*parentSeq]; ok && t.nodes[p].IsGroup {
			parent = p
		}
	}
	id := t.add(parent, isGroup)
	t.nodes[id].SeqNum = &seq
	t.bySeq[seq] = id
	return id
}

// Node returns the node with handle id.
func (t *GroupTree) Node(id NodeID) *ShapeGroupElement { return &t.nodes[id] }

// Lookup returns the node bound to seq.
func (t *GroupTree) Lookup(seq uint32) (NodeID, bool) {
	id, ok := t.bySeq[seq]
	return id, ok
}

// Roots returns the top-level nodes in insertion order.
func (t *GroupTree) Roots() []NodeID { return t.roots }

// Len returns the number of nodes.
func (t *GroupTree) Len() int { return len(t.nodes) }

// FoldedTransform composes the transforms of id and all its ancestors.
// The node's own transform is applied first.
func (t *GroupTree) FoldedTransform(id NodeID) Transform {
	acc := IdentityTransform()
	for n := id; n != NoNode; n = t.nodes[n].Parent {
		acc = t.nodes[n].Transform.Mul(acc)
	}
	return acc
}

// Walk visits the subtree under id depth first. visit is called with
// entering == true before a group's children and false after them; leaves
// get a single call with entering == true.
func (t *GroupTree) Walk(id NodeID, visit func(id NodeID, entering bool)) {
	type frame struct {
		id   NodeID
		exit bool
	}
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.exit {
			visit(f.id, false)
			continue
		}
		n := &t.nodes[f.id]
		visit(f.id, true)
		if !n.IsGroup {
			continue
		}
		stack = append(stack, frame{id: f.id, exit: true})
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.Children[i]})
		}
	}
}
