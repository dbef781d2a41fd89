// Package schedule turns a project's flat task list into a hierarchy and
// derives phase progress, schedule risk and log completion floors from it.
package schedule

import (
	"fmt"

	"github.com/zulandar/groundwork/internal/models"
)

// Node is a task placed in the hierarchy. Children keep input order.
type Node struct {
	models.Task
	Children []*Node `json:"children"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// CycleWarning records a task that was detached from its parent because the
// parent chain looped back on itself.
type CycleWarning struct {
	TaskID   int64 `json:"task_id"`
	ParentID int64 `json:"parent_id"`
}

func (w CycleWarning) String() string {
	if w.TaskID == w.ParentID {
		return fmt.Sprintf("task %d references itself as parent; promoted to root", w.TaskID)
	}
	return fmt.Sprintf("task %d is part of a parent cycle through %d; promoted to root", w.TaskID, w.ParentID)
}

// Hierarchy is the tree built from one project's tasks.
type Hierarchy struct {
	Nodes    map[int64]*Node
	Roots    []*Node
	Warnings []CycleWarning
}

// BuildHierarchy links tasks to their parents. A task whose parent is absent
// or unknown becomes a root. Input order does not need parents before
// children.
//
// Parent cycles are broken at build time: for every cycle the member that
// appears first in the input is detached from its parent, promoted to root,
// and reported in Warnings. Every task therefore appears exactly once, either
// as a root or as the child of exactly one parent.
//
// Task ids are expected to be unique; on duplicates the first occurrence wins.
func BuildHierarchy(tasks []models.Task) *Hierarchy {
	h := &Hierarchy{Nodes: make(map[int64]*Node, len(tasks))}
	order := make([]*Node, 0, len(tasks))
	index := make(map[int64]int, len(tasks))

	for _, t := range tasks {
		if _, dup := h.Nodes[t.ID]; dup {
			continue
		}
		n := &Node{Task: t}
		h.Nodes[t.ID] = n
		index[t.ID] = len(order)
		order = append(order, n)
	}

	for _, n := range order {
		if parent := h.parentOf(n); parent != nil {
			parent.Children = append(parent.Children, n)
		} else {
			h.Roots = append(h.Roots, n)
		}
	}

	reached := make(map[int64]bool, len(order))
	for _, r := range h.Roots {
		markReachable(r, reached)
	}
	if len(reached) == len(order) {
		return h
	}

	for _, n := range order {
		if reached[n.ID] {
			continue
		}
		cut := h.cycleEntry(n, index)
		parent := h.parentOf(cut)
		parent.Children = removeChild(parent.Children, cut)
		h.Roots = append(h.Roots, cut)
		h.Warnings = append(h.Warnings, CycleWarning{TaskID: cut.ID, ParentID: parent.ID})
		markReachable(cut, reached)
	}
	return h
}

// Len returns the number of tasks in the hierarchy.
func (h *Hierarchy) Len() int { return len(h.Nodes) }

// Walk visits every node depth-first, parents before children, roots in
// order. fn returning false skips the node's subtree. A visited set guards
// against revisiting a node.
func (h *Hierarchy) Walk(fn func(n *Node, depth int) bool) {
	visited := make(map[int64]bool, len(h.Nodes))
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range h.Roots {
		visit(r, 0)
	}
}

// Depth returns how many ancestors a task has in the hierarchy, or -1 if the
// task is unknown.
func (h *Hierarchy) Depth(id int64) int {
	n, ok := h.Nodes[id]
	if !ok {
		return -1
	}
	depth := 0
	seen := map[int64]bool{id: true}
	for {
		parent := h.linkedParent(n)
		if parent == nil || seen[parent.ID] {
			return depth
		}
		seen[parent.ID] = true
		depth++
		n = parent
	}
}

// IsRoot reports whether the task sits at the top of the hierarchy.
func (h *Hierarchy) IsRoot(id int64) bool {
	n, ok := h.Nodes[id]
	if !ok {
		return false
	}
	return h.linkedParent(n) == nil
}

// parentOf resolves the node's declared parent; nil when absent or unknown.
func (h *Hierarchy) parentOf(n *Node) *Node {
	if n.ParentID == nil {
		return nil
	}
	return h.Nodes[*n.ParentID]
}

// linkedParent returns the parent the node is actually attached to, which
// differs from parentOf for tasks promoted out of a cycle.
func (h *Hierarchy) linkedParent(n *Node) *Node {
	parent := h.parentOf(n)
	if parent == nil {
		return nil
	}
	for _, c := range parent.Children {
		if c == n {
			return parent
		}
	}
	return nil
}

// cycleEntry follows parent links from n until a node repeats, then returns
// the member of that cycle that appears first in the input.
func (h *Hierarchy) cycleEntry(n *Node, index map[int64]int) *Node {
	seen := make(map[int64]bool)
	cur := n
	for !seen[cur.ID] {
		seen[cur.ID] = true
		cur = h.parentOf(cur)
	}

	first := cur
	for member := h.parentOf(cur); member != cur; member = h.parentOf(member) {
		if index[member.ID] < index[first.ID] {
			first = member
		}
	}
	return first
}

func markReachable(n *Node, reached map[int64]bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[cur.ID] {
			continue
		}
		reached[cur.ID] = true
		stack = append(stack, cur.Children...)
	}
}

func removeChild(children []*Node, n *Node) []*Node {
	for i, c := range children {
		if c == n {
			return append(children[:i:i], children[i+1:]...)
		}
	}
	return children
}
