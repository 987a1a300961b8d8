package chidb

import "fmt"

// searchNode binary-searches n's cells (already logically ordered by the
// offset array) for key. found reports an exact match; k is either the
// matching position or the insertion index that keeps the array sorted.
func searchNode(n *Node, key uint32) (found bool, k uint16, err error) {
	lo, hi := uint16(0), n.nCells
	for lo < hi {
		mid := lo + (hi-lo)/2
		c, err := n.GetCell(mid)
		if err != nil {
			return false, 0, err
		}
		switch {
		case c.key == key:
			return true, mid, nil
		case c.key < key:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false, lo, nil
}

// Find looks up key in the table tree rooted at root.
func (b *BTree) Find(root uint32, key uint32) ([]byte, error) {
	return b.find(root, root, key)
}

// FindInIndex looks up key in the index tree rooted at indexRoot,
// restarting the lookup against the table tree rooted at tableRoot once
// a matching index entry is found. Both roots are required: the restart
// targets the table tree, not the tree the search began in.
func (b *BTree) FindInIndex(indexRoot, tableRoot uint32, key uint32) ([]byte, error) {
	return b.find(indexRoot, tableRoot, key)
}

func (b *BTree) find(root, tableRoot uint32, key uint32) ([]byte, error) {
	node, err := b.LoadNode(root)
	if err != nil {
		return nil, err
	}

	found, k, err := searchNode(node, key)
	if err != nil {
		b.FreeNode(node)
		return nil, err
	}

	switch node.tag {
	case TableLeaf:
		if !found {
			b.FreeNode(node)
			return nil, ErrNotFound
		}
		cell, err := node.GetCell(k)
		if err != nil {
			b.FreeNode(node)
			return nil, err
		}
		out := make([]byte, len(cell.payload))
		copy(out, cell.payload)
		b.FreeNode(node)
		return out, nil

	case IndexLeaf:
		if !found {
			b.FreeNode(node)
			return nil, ErrNotFound
		}
		cell, err := node.GetCell(k)
		if err != nil {
			b.FreeNode(node)
			return nil, err
		}
		pk := cell.keyPk
		b.FreeNode(node)
		return b.find(tableRoot, tableRoot, pk)

	case IndexInternal:
		if found {
			cell, err := node.GetCell(k)
			if err != nil {
				b.FreeNode(node)
				return nil, err
			}
			pk := cell.keyPk
			b.FreeNode(node)
			return b.find(tableRoot, tableRoot, pk)
		}
		child, err := node.childAt(k)
		if err != nil {
			b.FreeNode(node)
			return nil, err
		}
		b.FreeNode(node)
		return b.find(child, tableRoot, key)

	case TableInternal:
		// A found match here is the separator of a leaf split: the
		// table-leaf split rule promotes a *copy* of the median, so the
		// real row still lives in the inclusive left child (the one the
		// promoted cell points at). childAt(k) returns exactly that
		// child whether or not the search matched exactly, so table
		// internal nodes always keep descending.
		child, err := node.childAt(k)
		if err != nil {
			b.FreeNode(node)
			return nil, err
		}
		b.FreeNode(node)
		return b.find(child, tableRoot, key)
	}

	b.FreeNode(node)

	return nil, fmt.Errorf("chidb: invalid node type %v", node.tag)
}
