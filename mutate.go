package chidb

// nodeFreeSpace returns the number of bytes available in the free region
// [free_offset, cells_offset) of n.
func nodeFreeSpace(n *Node) uint16 {
	if n.cellsOffset < n.freeOffset {
		return 0
	}
	return n.cellsOffset - n.freeOffset
}

// nodeWouldOverflow reports whether inserting c into n would not fit in
// n's current free region; a node is full when a prospective cell would
// not fit in it. Tree algorithms use this, with c fixed to the
// leaf cell actually being inserted, at every level of the descent —
// including internal nodes the cell will never literally occupy — as a
// conservative proxy for "this subtree needs to make room before we go
// any deeper". For an internal n the prospective size is raised to at
// least that of the separator a child split would promote into n.
func nodeWouldOverflow(n *Node, c *Cell) (bool, error) {
	size, err := sizeOfCell(c)
	if err != nil {
		return false, err
	}
	if !n.tag.IsLeaf() {
		sep := uint16(tableInternalCellSize)
		if !n.tag.IsTable() {
			sep = indexInternalCellSize
		}
		if sep > size {
			size = sep
		}
	}
	return int(size)+cellPtrSize > int(nodeFreeSpace(n)), nil
}

// InsertCell inserts cell at ordinal k in the node.
//
// Precondition: k <= n.nCells and the cell (plus its offset-array entry)
// fits in n's free region; callers check nodeWouldOverflow before calling.
// Effect: the cell is serialised at the top of the cell area (cells_offset
// decreases), the offset-array entries [k, n_cells) shift right by one
// slot, the new offset is written at k, and n_cells/free_offset are
// updated. Nothing is written if k is out of range or the cell does not
// fit; both are reported as ErrCellNumber.
func (n *Node) InsertCell(k uint16, c *Cell) error {
	if k > n.nCells {
		return ErrCellNumber
	}

	size, err := sizeOfCell(c)
	if err != nil {
		return err
	}
	if int(size)+cellPtrSize > int(nodeFreeSpace(n)) {
		return ErrCellNumber
	}

	newCellsOffset := n.cellsOffset - size
	abs := int(n.base) + int(newCellsOffset)
	if _, err := writeCellAt(n.page.Data, abs, c); err != nil {
		return err
	}
	n.cellsOffset = newCellsOffset

	arrBase := int(n.base) + int(n.offsetArrayBase())
	src := arrBase + int(k)*cellPtrSize
	dst := src + cellPtrSize
	length := int(n.nCells-k) * cellPtrSize
	copy(n.page.Data[dst:dst+length], n.page.Data[src:src+length])

	n.setCellOffsetAt(k, newCellsOffset)
	n.nCells++
	n.freeOffset += cellPtrSize

	return nil
}
