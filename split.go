package chidb

import "fmt"

// copyCellsInto appends src's cells [lo, hi) to dst in order, via
// ordinary InsertCell calls. dst must already have exactly dst.nCells
// cells appended so far (newEmptyNode gives 0), since each call targets
// position dst.nCells.
func copyCellsInto(dst *Node, src *Node, lo, hi uint16) error {
	for k := lo; k < hi; k++ {
		cell, err := src.GetCell(k)
		if err != nil {
			return err
		}
		if err := dst.InsertCell(dst.nCells, cell); err != nil {
			return err
		}
	}
	return nil
}

// Split splits the full node at childPage, a child of parentPage reached
// through offset-array position parentK, into two siblings and promotes
// a separator into the parent.
//
// The median's original child (for internal variants) becomes the new
// sibling's right_page. Only TABLE_LEAF retains a copy of the median
// itself in a child afterwards (in the new, lower-keyed sibling); the
// other three variants drop it from both children once it's promoted.
func (b *BTree) Split(parentPage, childPage uint32, parentK uint16) (uint32, error) {
	parent, err := b.LoadNode(parentPage)
	if err != nil {
		return 0, err
	}
	defer b.FreeNode(parent)

	child, err := b.LoadNode(childPage)
	if err != nil {
		return 0, err
	}
	defer b.FreeNode(child)

	if child.nCells == 0 {
		return 0, ErrEmptyNode
	}

	newPageNo, err := b.pager.AllocatePage()
	if err != nil {
		return 0, err
	}
	newPg, err := b.pager.ReadPage(newPageNo)
	if err != nil {
		return 0, err
	}
	newNode := newEmptyNode(newPg, child.tag)

	m := child.nCells / 2

	moveUpto := m
	if child.tag == TableLeaf {
		moveUpto = m + 1
	}
	if err := copyCellsInto(newNode, child, 0, moveUpto); err != nil {
		return 0, err
	}

	medianCell, err := child.GetCell(m)
	if err != nil {
		return 0, err
	}

	var promoted *Cell
	switch child.tag {
	case TableLeaf:
		promoted = &Cell{tag: TableInternal, key: medianCell.key, childPage: newPageNo}
	case TableInternal:
		promoted = &Cell{tag: TableInternal, key: medianCell.key, childPage: newPageNo}
		newNode.rightPage = medianCell.childPage
	case IndexLeaf:
		promoted = &Cell{tag: IndexInternal, key: medianCell.key, keyPk: medianCell.keyPk, childPage: newPageNo}
	case IndexInternal:
		promoted = &Cell{tag: IndexInternal, key: medianCell.key, keyPk: medianCell.keyPk, childPage: newPageNo}
		newNode.rightPage = medianCell.childPage
	default:
		return 0, fmt.Errorf("chidb: invalid node type %v", child.tag)
	}

	// Collect the cells that remain in the original child (strictly after
	// the median) before touching child's buffer at all: the compacted
	// rebuild below writes through a scratch buffer precisely so these
	// borrowed TableLeaf payload slices, which alias child's page, are
	// never read after the page they point into has been overwritten.
	remainLo := m + 1
	remaining := make([]*Cell, 0, int(child.nCells)-int(remainLo))
	for k := remainLo; k < child.nCells; k++ {
		c, err := child.GetCell(k)
		if err != nil {
			return 0, err
		}
		remaining = append(remaining, c)
	}
	oldRightPage := child.rightPage

	scratch := make([]byte, len(child.page.Data))
	compacted := newEmptyNode(&Page{Number: childPage, Data: scratch}, child.tag)
	for _, c := range remaining {
		if err := compacted.InsertCell(compacted.nCells, c); err != nil {
			return 0, err
		}
	}
	if !child.tag.IsLeaf() {
		compacted.rightPage = oldRightPage
	}
	compacted.store()
	copy(child.page.Data, scratch)

	if err := parent.InsertCell(parentK, promoted); err != nil {
		return 0, err
	}

	if err := b.StoreNode(newNode); err != nil {
		return 0, err
	}
	if err := b.pager.WritePage(child.page); err != nil {
		return 0, err
	}
	if err := b.StoreNode(parent); err != nil {
		return 0, err
	}

	return newPageNo, nil
}
