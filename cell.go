package chidb

import "fmt"

// Cell is an in-memory view of one B-tree cell. Which fields are
// meaningful depends on tag, matching the four on-disk variants. For a
// TableLeaf cell, payload borrows directly into the page buffer it was
// read from and must not outlive it.
type Cell struct {
	tag NodeType
	key uint32

	payload   []byte // TableLeaf only
	childPage uint32 // TableInternal, IndexInternal
	keyPk     uint32 // IndexInternal, IndexLeaf
}

// NewTableLeafCell builds a table-leaf cell carrying an opaque payload.
func NewTableLeafCell(key uint32, payload []byte) *Cell {
	return &Cell{tag: TableLeaf, key: key, payload: payload}
}

// NewIndexLeafCell builds an index-leaf cell pointing at a table row.
func NewIndexLeafCell(keyIdx, keyPk uint32) *Cell {
	return &Cell{tag: IndexLeaf, key: keyIdx, keyPk: keyPk}
}

// Key returns the cell's ordering key (keyIdx for index cells).
func (c *Cell) Key() uint32 { return c.key }

// Payload returns the table-leaf row bytes. Empty for other variants.
func (c *Cell) Payload() []byte { return c.payload }

// ChildPage returns the child pointer of an internal cell.
func (c *Cell) ChildPage() uint32 { return c.childPage }

// KeyPk returns the primary-table key an index cell points to.
func (c *Cell) KeyPk() uint32 { return c.keyPk }

// GetCell parses the k-th cell of the node by dispatching on its tag.
func (n *Node) GetCell(k uint16) (*Cell, error) {
	if k >= n.nCells {
		return nil, ErrCellNumber
	}

	rel := n.cellOffsetAt(k)
	abs := int(n.base) + int(rel)
	buf := n.page.Data

	switch n.tag {
	case TableInternal:
		return &Cell{
			tag:       n.tag,
			childPage: getUint32(buf, abs),
			key:       getUint32(buf, abs+4),
		}, nil

	case TableLeaf:
		size, sn, err := getVarint32(buf[abs:])
		if err != nil {
			return nil, err
		}
		key, kn, err := getVarint32(buf[abs+sn:])
		if err != nil {
			return nil, err
		}
		dataStart := abs + sn + kn
		return &Cell{
			tag:     n.tag,
			key:     key,
			payload: buf[dataStart : dataStart+int(size)],
		}, nil

	case IndexInternal:
		return &Cell{
			tag:       n.tag,
			childPage: getUint32(buf, abs),
			key:       getUint32(buf, abs+4),
			keyPk:     getUint32(buf, abs+8),
		}, nil

	case IndexLeaf:
		return &Cell{
			tag:   n.tag,
			key:   getUint32(buf, abs),
			keyPk: getUint32(buf, abs+4),
		}, nil
	}

	return nil, fmt.Errorf("chidb: invalid node type %v", n.tag)
}

// sizeOfCell returns the number of bytes c occupies on disk.
func sizeOfCell(c *Cell) (uint16, error) {
	switch c.tag {
	case TableInternal:
		return tableInternalCellSize, nil
	case IndexInternal:
		return indexInternalCellSize, nil
	case IndexLeaf:
		return indexLeafCellSize, nil
	case TableLeaf:
		sn, err := varint32Len(uint32(len(c.payload)))
		if err != nil {
			return 0, err
		}
		kn, err := varint32Len(c.key)
		if err != nil {
			return 0, err
		}
		total := sn + kn + len(c.payload)
		if total > int(^uint16(0)) {
			return 0, fmt.Errorf("chidb: cell payload too large (%d bytes)", len(c.payload))
		}
		return uint16(total), nil
	}
	return 0, fmt.Errorf("chidb: invalid cell type %v", c.tag)
}

// writeCellAt serialises c into buf starting at abs and returns the
// number of bytes written.
func writeCellAt(buf []byte, abs int, c *Cell) (int, error) {
	switch c.tag {
	case TableInternal:
		putUint32(buf, abs, c.childPage)
		putUint32(buf, abs+4, c.key)
		return tableInternalCellSize, nil

	case TableLeaf:
		sn, err := putVarint32(buf[abs:], uint32(len(c.payload)))
		if err != nil {
			return 0, err
		}
		kn, err := putVarint32(buf[abs+sn:], c.key)
		if err != nil {
			return 0, err
		}
		copy(buf[abs+sn+kn:], c.payload)
		return sn + kn + len(c.payload), nil

	case IndexInternal:
		putUint32(buf, abs, c.childPage)
		putUint32(buf, abs+4, c.key)
		putUint32(buf, abs+8, c.keyPk)
		return indexInternalCellSize, nil

	case IndexLeaf:
		putUint32(buf, abs, c.key)
		putUint32(buf, abs+4, c.keyPk)
		return indexLeafCellSize, nil
	}
	return 0, fmt.Errorf("chidb: invalid cell type %v", c.tag)
}
