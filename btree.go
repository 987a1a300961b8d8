package chidb

import (
	"fmt"
	"hash/crc32"
)

// BTree is a handle onto a "B-Tree file": a forest of B-trees (one per
// table or index) sharing a single paged address space. It owns a Pager,
// which performs the actual file I/O; the engine never touches the file
// directly.
type BTree struct {
	pager *Pager
}

// Open opens a database file and verifies its header. If the file is
// empty (which happens when the pager is given a path that does not yet
// exist), Open instead initializes the file header using the default
// page size and creates an empty table-leaf node on page 1. Any failure
// partway through that initialization releases the pager and the file
// descriptor it holds rather than leaving a half-initialized handle.
func Open(filename string) (*BTree, error) {
	pager, err := OpenPager(filename)
	if err != nil {
		return nil, err
	}
	bt := &BTree{pager: pager}

	empty, err := pager.IsEmpty()
	if err != nil {
		pager.Close()
		return nil, err
	}

	if empty {
		if err := bt.createNewFile(); err != nil {
			pager.Close()
			return nil, err
		}
		return bt, nil
	}

	if err := bt.openExistingFile(); err != nil {
		pager.Close()
		return nil, err
	}
	return bt, nil
}

func (b *BTree) createNewFile() error {
	if err := b.pager.SetPageSize(DefaultPageSize); err != nil {
		return err
	}
	if err := b.pager.WriteHeader(produceHeader(DefaultPageSize)); err != nil {
		return err
	}

	npage, err := b.NewNode(TableLeaf)
	if err != nil {
		return err
	}
	if npage != 1 {
		return fmt.Errorf("chidb: expected root of new file on page 1, got page %d", npage)
	}
	return nil
}

func (b *BTree) openExistingFile() error {
	hdr := make([]byte, FileHeaderSize)
	if err := b.pager.ReadHeader(hdr); err != nil {
		return err
	}
	if err := verifyHeader(hdr); err != nil {
		return err
	}
	return b.pager.SetPageSize(uint32(pageSizeFromHeader(hdr)))
}

// LoadNode loads a B-Tree node from disk. Any changes made to the
// returned Node have no effect until StoreNode is called with it.
func (b *BTree) LoadNode(npage uint32) (*Node, error) {
	page, err := b.pager.ReadPage(npage)
	if err != nil {
		return nil, err
	}
	return loadNode(page)
}

// FreeNode releases a node's underlying page back to the pager. Every
// LoadNode/NewNode is expected to be paired with a FreeNode once the
// caller is done with the node, so that no two live views of the same
// page are ever held at once.
func (b *BTree) FreeNode(n *Node) {
	b.pager.ReleasePage(n.page)
}

// NewNode allocates a new page and initializes it as an empty node of
// the given type.
func (b *BTree) NewNode(tag NodeType) (uint32, error) {
	npage, err := b.pager.AllocatePage()
	if err != nil {
		return 0, err
	}
	if err := b.InitEmptyNode(npage, tag); err != nil {
		return 0, err
	}
	return npage, nil
}

// InitEmptyNode initializes an already-allocated page to contain an
// empty node of the given type.
func (b *BTree) InitEmptyNode(npage uint32, tag NodeType) error {
	page, err := b.pager.ReadPage(npage)
	if err != nil {
		return err
	}
	node := newEmptyNode(page, tag)
	node.store()
	return b.pager.WritePage(page)
}

// StoreNode writes an in-memory node's header fields back to its page
// and flushes the page through the pager. Cell bytes are written
// directly into the page buffer as they're inserted (see InsertCell), so
// there is nothing left to serialise for them here.
func (b *BTree) StoreNode(n *Node) error {
	n.store()
	return b.pager.WritePage(n.page)
}

// ReadHeader returns the parsed page size recorded in the file header.
func (b *BTree) ReadHeader() (pageSize uint16, err error) {
	hdr := make([]byte, FileHeaderSize)
	if err := b.pager.ReadHeader(hdr); err != nil {
		return 0, err
	}
	return pageSizeFromHeader(hdr), nil
}

// PageStat reports one page's diagnostics: the node variant it holds and
// the number of free bytes between its free_offset and cells_offset.
type PageStat struct {
	PageNo    uint32
	Type      NodeType
	FreeBytes uint16
}

// Stat reports the current page count, configured page size, and
// per-page free-space measurements for diagnostics.
func (b *BTree) Stat() (pageCount uint32, pageSize uint32, pages []PageStat) {
	pageCount = b.pager.totalPages
	pageSize = b.pager.pageSize

	pages = make([]PageStat, 0, pageCount)
	for npage := uint32(1); npage <= pageCount; npage++ {
		node, err := b.LoadNode(npage)
		if err != nil {
			continue
		}
		pages = append(pages, PageStat{PageNo: npage, Type: node.Type(), FreeBytes: nodeFreeSpace(node)})
		b.FreeNode(node)
	}
	return pageCount, pageSize, pages
}

// Checksum returns a CRC-32 checksum over every allocated page's raw
// bytes, letting callers detect unexpected file mutation without
// re-parsing the tree.
func (b *BTree) Checksum() (uint32, error) {
	h := crc32.NewIEEE()
	for npage := uint32(1); npage <= b.pager.totalPages; npage++ {
		page, err := b.pager.ReadPage(npage)
		if err != nil {
			return 0, err
		}
		h.Write(page.Data)
		b.pager.ReleasePage(page)
	}
	return h.Sum32(), nil
}

// Close closes the underlying pager.
func (b *BTree) Close() error {
	return b.pager.Close()
}
