package chidb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertInTableThenFind(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	require.Nil(t, btree.InsertInTable(1, 1, []byte("one")))
	require.Nil(t, btree.InsertInTable(1, 2, []byte("two")))

	got, err := btree.Find(1, 1)
	require.Nil(t, err)
	assert.Equal(t, []byte("one"), got)
}

func TestInsertDuplicateKeyRejected(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	require.Nil(t, btree.InsertInTable(1, 1, []byte("one")))

	before, err := btree.Checksum()
	require.Nil(t, err)

	err = btree.InsertInTable(1, 1, []byte("again"))
	assert.Equal(t, ErrDuplicateKey, err)

	after, err := btree.Checksum()
	require.Nil(t, err)
	assert.Equal(t, before, after, "a rejected duplicate must leave the file byte-identical")
}

func TestInsertDuplicateIntoFullRootDoesNotGrowTree(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	// Fill the root leaf right up to the point where the next insert
	// would overflow it, without actually performing that insert.
	var lastKey uint32
	for i := uint32(0); ; i++ {
		root, err := btree.LoadNode(1)
		require.Nil(t, err)
		full, err := nodeWouldOverflow(root, NewTableLeafCell(i, []byte("payload")))
		btree.FreeNode(root)
		require.Nil(t, err)
		if full {
			break
		}
		require.Nil(t, btree.InsertInTable(1, i, []byte("payload")))
		lastKey = i
	}

	pageCountBefore, _, _ := btree.Stat()
	require.Equal(t, uint32(1), pageCountBefore, "root should still be a single page right at the overflow boundary")

	err := btree.InsertInTable(1, lastKey, []byte("duplicate"))
	assert.Equal(t, ErrDuplicateKey, err)

	pageCountAfter, _, _ := btree.Stat()
	assert.Equal(t, pageCountBefore, pageCountAfter, "a rejected duplicate insert into a full root must not grow the tree")
}

func TestInsertManyRowsGrowsRootAndStaysFindable(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	const n = 400
	for i := 0; i < n; i++ {
		key := uint32(i)
		payload := []byte(fmt.Sprintf("payload-%d", i))
		require.Nil(t, btree.InsertInTable(1, key, payload))
	}

	pageCount, _, _ := btree.Stat()
	assert.Greater(t, pageCount, uint32(1), "expected the tree to have grown past a single page")

	for i := 0; i < n; i++ {
		got, err := btree.Find(1, uint32(i))
		require.Nil(t, err, "key %d should be findable", i)
		assert.Equal(t, []byte(fmt.Sprintf("payload-%d", i)), got)
	}
}

func TestInsertInIndexThenFindInIndex(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	tableRoot := uint32(1)
	require.Nil(t, btree.InsertInTable(tableRoot, 100, []byte("row-100")))

	indexRoot, err := btree.NewNode(IndexLeaf)
	require.Nil(t, err)

	const n = 300
	for i := 0; i < n; i++ {
		require.Nil(t, btree.InsertInIndex(indexRoot, uint32(i), uint32(i)))
	}
	require.Nil(t, btree.InsertInIndex(indexRoot, 9000, 100))

	got, err := btree.FindInIndex(indexRoot, tableRoot, 9000)
	require.Nil(t, err)
	assert.Equal(t, []byte("row-100"), got)
}

func TestInsertOutOfOrderKeysStayOrdered(t *testing.T) {
	btree := openBtree(t)
	defer btree.Close()

	keys := []uint32{50, 10, 90, 30, 70, 20, 80, 40, 60}
	for _, k := range keys {
		require.Nil(t, btree.InsertInTable(1, k, []byte(fmt.Sprintf("v%d", k))))
	}

	cur, err := NewCursor(btree, 1)
	require.Nil(t, err)
	defer cur.Close()

	var seen []uint32
	for {
		key, _, ok, err := cur.Next()
		require.Nil(t, err)
		if !ok {
			break
		}
		seen = append(seen, key)
	}

	require.Equal(t, len(keys), len(seen))
	for i := 1; i < len(seen); i++ {
		assert.True(t, seen[i-1] < seen[i], "expected ascending order, got %v", seen)
	}
}
