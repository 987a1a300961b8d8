package chidb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeFreeSpaceShrinksAsCellsAreInserted(t *testing.T) {
	page := newTestPage(2)
	node := newEmptyNode(page, TableLeaf)

	initial := nodeFreeSpace(node)
	require.Nil(t, node.InsertCell(0, NewTableLeafCell(1, []byte("xyz"))))

	after := nodeFreeSpace(node)
	assert.True(t, after < initial)
}

func TestNodeWouldOverflowOnOversizedCell(t *testing.T) {
	page := newTestPage(2)
	node := newEmptyNode(page, TableLeaf)

	huge := make([]byte, DefaultPageSize)
	full, err := nodeWouldOverflow(node, NewTableLeafCell(1, huge))
	require.Nil(t, err)
	assert.True(t, full)

	small, err := nodeWouldOverflow(node, NewTableLeafCell(1, []byte("ok")))
	require.Nil(t, err)
	assert.False(t, small)
}

func TestInsertCellMaintainsAscendingOffsetArrayOrder(t *testing.T) {
	page := newTestPage(2)
	node := newEmptyNode(page, TableInternal)

	require.Nil(t, node.InsertCell(0, &Cell{tag: TableInternal, key: 10, childPage: 1}))
	require.Nil(t, node.InsertCell(1, &Cell{tag: TableInternal, key: 30, childPage: 2}))
	require.Nil(t, node.InsertCell(1, &Cell{tag: TableInternal, key: 20, childPage: 3}))

	assert.Equal(t, uint16(3), node.NCells())

	first, err := node.GetCell(0)
	require.Nil(t, err)
	second, err := node.GetCell(1)
	require.Nil(t, err)
	third, err := node.GetCell(2)
	require.Nil(t, err)

	assert.Equal(t, uint32(10), first.Key())
	assert.Equal(t, uint32(20), second.Key())
	assert.Equal(t, uint32(30), third.Key())
}

func TestInsertCellRejectsOutOfRangeOrdinal(t *testing.T) {
	page := newTestPage(2)
	node := newEmptyNode(page, TableLeaf)

	err := node.InsertCell(5, NewTableLeafCell(1, []byte("x")))
	assert.Equal(t, ErrCellNumber, err)
}

func TestInsertCellRejectsCellThatDoesNotFit(t *testing.T) {
	page := newTestPage(2)
	node := newEmptyNode(page, TableLeaf)
	before := node.NCells()

	err := node.InsertCell(0, NewTableLeafCell(1, make([]byte, DefaultPageSize)))
	assert.Equal(t, ErrCellNumber, err)
	assert.Equal(t, before, node.NCells(), "a rejected insert must leave the node untouched")
}
