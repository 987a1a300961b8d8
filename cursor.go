package chidb

// Cursor walks a table tree's rows in ascending key order. It holds onto
// one Node per level of the path currently being walked, kept on an
// explicit stack across calls; unlike the recursive descents in find.go
// and insert.go, which release each node before loading the next, every
// node on the current path stays loaded until the cursor moves past it.
type Cursor struct {
	bt    *BTree
	stack []cursorFrame
	done  bool
}

type cursorFrame struct {
	node *Node
	k    uint16 // next child/cell index to visit at this level
}

// NewCursor returns a cursor positioned before the first row of the
// table tree rooted at root.
func NewCursor(bt *BTree, root uint32) (*Cursor, error) {
	c := &Cursor{bt: bt}
	if err := c.pushLeftmost(root); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// pushLeftmost descends from npage down the leftmost child at every
// internal level, pushing a frame per level, until it reaches a leaf.
func (c *Cursor) pushLeftmost(npage uint32) error {
	for {
		node, err := c.bt.LoadNode(npage)
		if err != nil {
			return err
		}
		c.stack = append(c.stack, cursorFrame{node: node, k: 0})

		if node.Type().IsLeaf() {
			if node.NCells() == 0 {
				c.done = true
			}
			return nil
		}

		child, err := node.childAt(0)
		if err != nil {
			return err
		}
		// Child 0 is consumed by this very descent; Next must resume at
		// child 1 (or right_page) when it returns to this frame.
		c.stack[len(c.stack)-1].k = 1
		npage = child
	}
}

// Next returns the next row in ascending key order, or (0, nil, false, nil)
// once the tree is exhausted.
func (c *Cursor) Next() (key uint32, payload []byte, ok bool, err error) {
	for {
		if c.done || len(c.stack) == 0 {
			return 0, nil, false, nil
		}

		top := len(c.stack) - 1
		frame := &c.stack[top]

		if frame.node.Type().IsLeaf() {
			if frame.k >= frame.node.NCells() {
				c.bt.FreeNode(frame.node)
				c.stack = c.stack[:top]
				continue
			}
			cell, err := frame.node.GetCell(frame.k)
			if err != nil {
				return 0, nil, false, err
			}
			frame.k++

			out := make([]byte, len(cell.payload))
			copy(out, cell.payload)
			return cell.key, out, true, nil
		}

		// Internal node: frame.k is the next child still owed, starting
		// at 1 since pushLeftmost already descended into child 0. Emit
		// nothing ourselves here; descend into child k if there is one
		// left, or pop once we've exhausted n_cells children plus
		// right_page.
		if frame.k > frame.node.NCells() {
			c.bt.FreeNode(frame.node)
			c.stack = c.stack[:top]
			continue
		}
		child, err := frame.node.childAt(frame.k)
		if err != nil {
			return 0, nil, false, err
		}
		frame.k++
		if err := c.pushLeftmost(child); err != nil {
			return 0, nil, false, err
		}
	}
}

// Close releases every node the cursor currently holds. Safe to call on
// an exhausted or already-closed cursor.
func (c *Cursor) Close() {
	for _, f := range c.stack {
		c.bt.FreeNode(f.node)
	}
	c.stack = nil
}
