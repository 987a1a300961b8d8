package chidb

import "bytes"

// fileMagic is the literal 16-byte signature every chidb file begins with.
var fileMagic = []byte("SQLite format 3\x00")

// produceHeader builds the 100-byte file header for a freshly created
// database with the given page size. Reserved offsets (24, 40, 60) are
// zeroed; verifyHeader does not check them.
func produceHeader(pageSize uint16) []byte {
	buf := make([]byte, FileHeaderSize)

	copy(buf, fileMagic)
	putUint16(buf, 16, pageSize)

	buf[18] = 1  // file format write version
	buf[19] = 1  // file format read version
	buf[20] = 0  // reserved space at end of page
	buf[21] = 64 // maximum embedded payload fraction
	buf[22] = 32 // minimum embedded payload fraction
	buf[23] = 32 // leaf payload fraction

	// 24..27 file change counter: reserved/unchecked, left zero.
	putUint32(buf, 32, 0) // first freelist page
	putUint32(buf, 36, 0) // number of freelist pages
	// 40..43 schema cookie: reserved/unchecked, left zero.
	putUint32(buf, 44, 1)     // schema format number
	putUint32(buf, 48, 20000) // default page cache size
	putUint32(buf, 52, 0)     // largest root b-tree page (vacuum)
	putUint32(buf, 56, 1)     // text encoding (UTF-8)
	// 60..63 user version: reserved/unchecked, left zero.
	putUint32(buf, 64, 0) // incremental vacuum mode

	return buf
}

// verifyHeader checks every required field of a 100-byte header buffer.
// Offsets 24, 40, and 60 are never compared.
func verifyHeader(buf []byte) error {
	if len(buf) < FileHeaderSize {
		return ErrCorruptHeader
	}
	switch {
	case !bytes.Equal(buf[0:16], fileMagic):
		return ErrCorruptHeader
	case buf[18] != 1, buf[19] != 1:
		return ErrCorruptHeader
	case buf[20] != 0:
		return ErrCorruptHeader
	case buf[21] != 64:
		return ErrCorruptHeader
	case buf[22] != 32, buf[23] != 32:
		return ErrCorruptHeader
	case getUint32(buf, 32) != 0:
		return ErrCorruptHeader
	case getUint32(buf, 36) != 0:
		return ErrCorruptHeader
	case getUint32(buf, 44) != 1:
		return ErrCorruptHeader
	case getUint32(buf, 48) != 20000:
		return ErrCorruptHeader
	case getUint32(buf, 52) != 0:
		return ErrCorruptHeader
	case getUint32(buf, 56) != 1:
		return ErrCorruptHeader
	case getUint32(buf, 64) != 0:
		return ErrCorruptHeader
	}
	return nil
}

// pageSizeFromHeader reads the page size field (bytes 16-17) of a header
// buffer.
func pageSizeFromHeader(buf []byte) uint16 {
	return getUint16(buf, 16)
}
