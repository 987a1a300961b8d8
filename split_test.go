package chidb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillTableLeaf inserts n sequentially-keyed cells into the node at
// npage via the real LoadNode/StoreNode cycle.
func fillTableLeaf(t *testing.T, b *BTree, npage uint32, n int, start uint32) {
	t.Helper()
	for i := 0; i < n; i++ {
		node, err := b.LoadNode(npage)
		require.Nil(t, err)
		key := start + uint32(i)
		require.Nil(t, node.InsertCell(node.NCells(), NewTableLeafCell(key, []byte("v"))))
		require.Nil(t, b.StoreNode(node))
		b.FreeNode(node)
	}
}

func TestSplitTableLeafDuplicatesMedianBelow(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	parentPage, err := btree.NewNode(TableInternal)
	require.Nil(t, err)
	childPage, err := btree.NewNode(TableLeaf)
	require.Nil(t, err)

	fillTableLeaf(t, btree, childPage, 6, 10)

	newPageNo, err := btree.Split(parentPage, childPage, 0)
	require.Nil(t, err)

	parent, err := btree.LoadNode(parentPage)
	require.Nil(t, err)
	defer btree.FreeNode(parent)
	require.Equal(t, uint16(1), parent.NCells())

	promoted, err := parent.GetCell(0)
	require.Nil(t, err)
	assert.Equal(t, newPageNo, promoted.ChildPage())

	newNode, err := btree.LoadNode(newPageNo)
	require.Nil(t, err)
	defer btree.FreeNode(newNode)

	childNode, err := btree.LoadNode(childPage)
	require.Nil(t, err)
	defer btree.FreeNode(childNode)

	// Table-leaf splits keep a copy of the median as the last cell of
	// the new (lower-keyed) sibling, so the six original cells split
	// 4/2 rather than evenly, and the promoted separator matches that
	// last cell's key.
	assert.Equal(t, uint16(4), newNode.NCells())
	assert.Equal(t, uint16(2), childNode.NCells())

	last, err := newNode.GetCell(newNode.NCells() - 1)
	require.Nil(t, err)
	assert.Equal(t, promoted.Key(), last.Key())
}

func TestSplitRejectsEmptyChild(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	parentPage, err := btree.NewNode(TableInternal)
	require.Nil(t, err)
	childPage, err := btree.NewNode(TableLeaf)
	require.Nil(t, err)

	_, err = btree.Split(parentPage, childPage, 0)
	assert.Equal(t, ErrEmptyNode, err)
}

func TestSplitIndexLeafDropsMedianFromBothChildren(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	parentPage, err := btree.NewNode(IndexInternal)
	require.Nil(t, err)
	childPage, err := btree.NewNode(IndexLeaf)
	require.Nil(t, err)

	node, err := btree.LoadNode(childPage)
	require.Nil(t, err)
	for i := uint16(0); i < 6; i++ {
		require.Nil(t, node.InsertCell(i, NewIndexLeafCell(uint32(10+i), uint32(100+i))))
	}
	require.Nil(t, btree.StoreNode(node))
	btree.FreeNode(node)

	newPageNo, err := btree.Split(parentPage, childPage, 0)
	require.Nil(t, err)

	newNode, err := btree.LoadNode(newPageNo)
	require.Nil(t, err)
	defer btree.FreeNode(newNode)
	childNode, err := btree.LoadNode(childPage)
	require.Nil(t, err)
	defer btree.FreeNode(childNode)

	// Index-leaf splits drop the median from both children: of the 6
	// cells, 3 go to the new sibling, the median is promoted, and 2 stay
	// in the original child, with nothing duplicated.
	assert.Equal(t, uint16(3), newNode.NCells())
	assert.Equal(t, uint16(2), childNode.NCells())
}
