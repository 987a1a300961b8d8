package chidb

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// Page is an in-memory copy of one page as returned by the pager. Number
// is the page's 1-based position in the file; Data is a buffer of exactly
// the pager's configured page size. Any change made to Data has no effect
// on disk until WritePage is called with it.
type Page struct {
	Number uint32
	Data   []byte
}

// Pager provides page-granular access to a database file. It is the sole
// owner of the underlying *os.File; the engine never opens, seeks, or
// reads the file directly.
type Pager struct {
	file       *os.File
	pageSize   uint32
	totalPages uint32
}

// OpenPager opens filename for paged access, creating it if it does not
// already exist.
func OpenPager(filename string) (*Pager, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("chidb: open %s: %w", filename, err)
	}
	return &Pager{file: f}, nil
}

// IsEmpty reports whether the underlying file currently has zero bytes.
func (p *Pager) IsEmpty() (bool, error) {
	info, err := p.file.Stat()
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

// SetPageSize configures the page size used for all subsequent page
// arithmetic. It must be called before the first AllocatePage call.
// If the file already holds data, the pager's page count is derived
// from the file's current size.
func (p *Pager) SetPageSize(size uint32) error {
	if p.totalPages > 0 {
		return errors.New("chidb: SetPageSize called after pages were allocated")
	}
	p.pageSize = size

	info, err := p.file.Stat()
	if err != nil {
		return err
	}
	if sz := info.Size(); sz > 0 {
		p.totalPages = uint32(sz) / size
	}
	return nil
}

// ReadHeader reads the fixed 100-byte file header into out. Returns an
// error if the file is shorter than the header.
func (p *Pager) ReadHeader(out []byte) error {
	if len(out) != FileHeaderSize {
		return fmt.Errorf("chidb: header buffer must be %d bytes", FileHeaderSize)
	}
	n, err := p.file.ReadAt(out, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("chidb: read header: %w", err)
	}
	if n < FileHeaderSize {
		return fmt.Errorf("chidb: file shorter than header (%d bytes)", n)
	}
	return nil
}

// WriteHeader writes the 100-byte file header at the start of the file.
func (p *Pager) WriteHeader(buf []byte) error {
	if len(buf) != FileHeaderSize {
		return fmt.Errorf("chidb: invalid header size %d", len(buf))
	}
	if _, err := p.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("chidb: write header: %w", err)
	}
	return nil
}

// AllocatePage appends a new page number. The page itself is not written
// until a ReadPage/WritePage cycle touches it.
func (p *Pager) AllocatePage() (uint32, error) {
	if p.pageSize == 0 {
		return 0, errors.New("chidb: AllocatePage called before SetPageSize")
	}
	p.totalPages++
	return p.totalPages, nil
}

// ReadPage loads page npage into a freshly allocated buffer of the
// pager's page size. Pages that were allocated but never written read
// back as zero bytes.
func (p *Pager) ReadPage(npage uint32) (*Page, error) {
	if err := p.pageIsValid(npage); err != nil {
		return nil, err
	}

	data := make([]byte, p.pageSize)
	n, err := p.file.ReadAt(data, p.offset(npage))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("chidb: read page %d: %w", npage, err)
	}
	log.Printf("chidb: read %d bytes from page %d", n, npage)

	return &Page{Number: npage, Data: data}, nil
}

// WritePage flushes page's in-memory buffer back to disk at its slot.
func (p *Pager) WritePage(page *Page) error {
	if err := p.pageIsValid(page.Number); err != nil {
		return err
	}
	if l := len(page.Data); uint32(l) != p.pageSize {
		return fmt.Errorf("chidb: invalid page buffer size: expected %d got %d", p.pageSize, l)
	}

	n, err := p.file.WriteAt(page.Data, p.offset(page.Number))
	if err != nil {
		return fmt.Errorf("chidb: write page %d: %w", page.Number, err)
	}
	log.Printf("chidb: wrote %d bytes to page %d", n, page.Number)
	return nil
}

// ReleasePage drops a reference to page. This pager has no block cache,
// so there is nothing to evict; the call gives the engine's
// acquire/release discipline a concrete place to live if a caching
// pager replaces this one later.
func (p *Pager) ReleasePage(page *Page) {}

// Close closes the underlying file.
func (p *Pager) Close() error {
	return p.file.Close()
}

func (p *Pager) pageIsValid(npage uint32) error {
	if npage == 0 || npage > p.totalPages {
		return ErrPageNumber
	}
	return nil
}

func (p *Pager) offset(npage uint32) int64 {
	return int64(npage-1) * int64(p.pageSize)
}
