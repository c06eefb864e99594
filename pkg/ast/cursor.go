package ast

import "slices"

// Cursor points at one node of a sibling slice during a walk. Visitors use
// it to replace the node or to insert and remove siblings. Nodes inserted
// through the cursor are not visited by the ongoing walk, and the walk
// resumes after the current node.
type Cursor[T Node] struct {
	nodes   *[]T
	index   int
	next    int
	removed bool
}

func newCursor[T Node](nodes *[]T, index int) *Cursor[T] {
	return &Cursor[T]{nodes: nodes, index: index, next: index + 1}
}

// Node returns the current node. It panics after Remove.
func (c *Cursor[T]) Node() T {
	if c.removed {
		panic("ast: cursor node was removed")
	}
	return (*c.nodes)[c.index]
}

// Index returns the position of the current node in its parent slice.
func (c *Cursor[T]) Index() int {
	return c.index
}

// Replace swaps the current node for n. The replacement is not visited.
func (c *Cursor[T]) Replace(n T) {
	(*c.nodes)[c.index] = n
}

// InsertBefore inserts nodes before the current node.
func (c *Cursor[T]) InsertBefore(nodes ...T) {
	*c.nodes = slices.Insert(*c.nodes, c.index, nodes...)
	c.index += len(nodes)
	c.next += len(nodes)
}

// InsertAfter inserts nodes after the current node and after any nodes
// inserted earlier through this cursor.
func (c *Cursor[T]) InsertAfter(nodes ...T) {
	*c.nodes = slices.Insert(*c.nodes, c.next, nodes...)
	c.next += len(nodes)
}

// Remove deletes the current node.
func (c *Cursor[T]) Remove() {
	if c.removed {
		return
	}
	*c.nodes = slices.Delete(*c.nodes, c.index, c.index+1)
	c.removed = true
	c.next--
}

// walkSlice visits every node of *nodes by index. The slice length is
// re-read after each visit so that cursor edits take effect immediately.
func walkSlice[T Node](nodes *[]T, visit func(*Cursor[T]) error) error {
	for i := 0; i < len(*nodes); {
		c := newCursor(nodes, i)
		if err := visit(c); err != nil {
			return err
		}
		i = c.next
	}
	return nil
}
