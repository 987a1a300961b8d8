package chidb

// Node is an in-memory projection of a page as a B-tree node. It borrows
// the page buffer it was loaded from; it never copies cell bytes. Callers
// persist changes with BTree.StoreNode and release the node through the
// engine with BTree.FreeNode.
type Node struct {
	page *Page

	base uint16 // 100 for page 1's node, 0 otherwise

	tag         NodeType
	freeOffset  uint16 // relative to base
	nCells      uint16
	cellsOffset uint16 // relative to base
	rightPage   uint32 // 0 for leaves
}

// Type returns the node's variant tag.
func (n *Node) Type() NodeType { return n.tag }

// NCells returns the number of cells currently stored in the node.
func (n *Node) NCells() uint16 { return n.nCells }

// RightPage returns the rightmost child pointer (internal nodes only).
func (n *Node) RightPage() uint32 { return n.rightPage }

// PageNo returns the page number backing this node.
func (n *Node) PageNo() uint32 { return n.page.Number }

// loadNode projects a raw page buffer into a Node, applying the page-1
// header offset and dispatching on the variant tag to decide whether a
// right_page field is present.
func loadNode(page *Page) (*Node, error) {
	base := pageBase(page.Number)
	if int(base)+leafNodeHeaderLen > len(page.Data) {
		return nil, ErrCorruptHeader
	}

	tag, err := nodeTypeFromByte(page.Data[base])
	if err != nil {
		return nil, err
	}

	n := &Node{page: page, base: base, tag: tag}
	n.freeOffset = getUint16(page.Data, int(base)+2)
	n.nCells = getUint16(page.Data, int(base)+4)
	n.cellsOffset = getUint16(page.Data, int(base)+6)
	if !tag.IsLeaf() {
		if int(base)+internalNodeHeaderLen > len(page.Data) {
			return nil, ErrCorruptHeader
		}
		n.rightPage = getUint32(page.Data, int(base)+8)
	}
	return n, nil
}

// newEmptyNode constructs an empty node of the given type over page,
// ready to be store()d: n_cells = 0, cells_offset = page size (the
// node's own usable region, for page 1 that's after the file header),
// free_offset = the node header length (the offset array starts empty
// immediately after the header), right_page = 0.
func newEmptyNode(page *Page, tag NodeType) *Node {
	base := pageBase(page.Number)
	region := uint16(len(page.Data)) - base
	return &Node{
		page:        page,
		base:        base,
		tag:         tag,
		freeOffset:  nodeHeaderLen(tag),
		nCells:      0,
		cellsOffset: region,
		rightPage:   0,
	}
}

// store serialises the node's header fields back into its page buffer.
// The reserved byte is always written as zero. Leaves never write a
// right_page field; on disk their right_page is always zero.
func (n *Node) store() {
	buf, base := n.page.Data, n.base
	buf[base] = n.tag.Value()
	buf[base+1] = 0
	putUint16(buf, int(base)+2, n.freeOffset)
	putUint16(buf, int(base)+4, n.nCells)
	putUint16(buf, int(base)+6, n.cellsOffset)
	if !n.tag.IsLeaf() {
		putUint32(buf, int(base)+8, n.rightPage)
	}
}

// offsetArrayBase is the page-relative (to base) position of the first
// entry of the cell-offset array.
func (n *Node) offsetArrayBase() uint16 { return nodeHeaderLen(n.tag) }

// cellOffsetAt returns the k-th entry of the cell-offset array, relative
// to base.
func (n *Node) cellOffsetAt(k uint16) uint16 {
	pos := int(n.base) + int(n.offsetArrayBase()) + int(k)*cellPtrSize
	return getUint16(n.page.Data, pos)
}

// setCellOffsetAt writes the k-th entry of the cell-offset array.
func (n *Node) setCellOffsetAt(k uint16, v uint16) {
	pos := int(n.base) + int(n.offsetArrayBase()) + int(k)*cellPtrSize
	putUint16(n.page.Data, pos, v)
}

// childAt returns the child page reachable from position k: the k-th
// cell's child pointer for k < n_cells, or right_page when k == n_cells.
// This single rule is what lets both "found" and "not found" binary
// search outcomes share one descent path for table-internal nodes (see
// find.go), since a table leaf split promotes a *copy* of the median and
// the promoted cell's child is the inclusive left subtree.
func (n *Node) childAt(k uint16) (uint32, error) {
	if k == n.nCells {
		return n.rightPage, nil
	}
	cell, err := n.GetCell(k)
	if err != nil {
		return 0, err
	}
	return cell.childPage, nil
}
