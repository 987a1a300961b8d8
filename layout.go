package chidb

import "fmt"

// NodeType is the one-byte tag distinguishing the four B-tree node
// variants. Values match the documented on-disk format.
type NodeType byte

const (
	TableInternal NodeType = 0x05
	TableLeaf     NodeType = 0x0D
	IndexInternal NodeType = 0x02
	IndexLeaf     NodeType = 0x0A
)

// nodeTypeFromByte validates a raw tag byte read off disk.
func nodeTypeFromByte(b byte) (NodeType, error) {
	switch NodeType(b) {
	case TableInternal, TableLeaf, IndexInternal, IndexLeaf:
		return NodeType(b), nil
	}
	return 0, fmt.Errorf("chidb: invalid node type %#x", b)
}

// Value returns the on-disk byte for this node type.
func (t NodeType) Value() byte { return byte(t) }

func (t NodeType) String() string {
	switch t {
	case TableInternal:
		return "table-internal"
	case TableLeaf:
		return "table-leaf"
	case IndexInternal:
		return "index-internal"
	case IndexLeaf:
		return "index-leaf"
	}
	return "invalid"
}

// IsLeaf reports whether nodes of this type carry no children.
func (t NodeType) IsLeaf() bool {
	return t == TableLeaf || t == IndexLeaf
}

// IsTable reports whether nodes of this type belong to a table tree, as
// opposed to an index tree.
func (t NodeType) IsTable() bool {
	return t == TableInternal || t == TableLeaf
}

const (
	// DefaultPageSize is used when Open creates a brand new database file.
	DefaultPageSize = 1024

	// FileHeaderSize is the fixed size of the file header occupying the
	// first bytes of page 1.
	FileHeaderSize = 100

	// cellPtrSize is the width of one entry in the cell-offset array.
	cellPtrSize = 2

	// leafNodeHeaderLen and internalNodeHeaderLen are the byte lengths of
	// the node header for leaf and internal nodes respectively: tag
	// (1), reserved (1), free_offset (2), n_cells (2), cells_offset (2),
	// and right_page (4, internal only).
	leafNodeHeaderLen     = 8
	internalNodeHeaderLen = 12

	// Fixed cell sizes for the three non-variable cell variants.
	tableInternalCellSize = 8  // 4-byte child page + 4-byte key
	indexInternalCellSize = 12 // 4-byte child page + 4-byte keyIdx + 4-byte keyPk
	indexLeafCellSize     = 8  // 4-byte keyIdx + 4-byte keyPk
)

// nodeHeaderLen returns the fixed header length for a node of this type;
// the cell-offset array begins immediately after it.
func nodeHeaderLen(t NodeType) uint16 {
	if t.IsLeaf() {
		return leafNodeHeaderLen
	}
	return internalNodeHeaderLen
}

// pageBase returns the byte offset, within a raw page buffer, at which a
// node's own header begins. Page 1 is special: its node starts after the
// 100-byte file header.
func pageBase(pageNo uint32) uint16 {
	if pageNo == 1 {
		return FileHeaderSize
	}
	return 0
}
