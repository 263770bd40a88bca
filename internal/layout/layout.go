// Package layout decodes the fixed on-disk structures of the AIX BFF
// (Backup File Format) archive format.
//
// Every structure is stored as the packed little-endian C layout of the
// original AIX tooling. Structs here contain fixed-width fields only and
// are decoded field by field in declaration order; no memory-layout tricks
// are involved. Fields that have not been identified yet are named Unk*
// and preserved for forward compatibility.
package layout

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Archive magic numbers.
const (
	// FileMagic identifies a BFF archive file.
	FileMagic uint32 = 0xEA6B0009

	// MagicRaw marks a record whose payload is stored uncompressed.
	MagicRaw uint16 = 0xEA6B

	// MagicHuffman marks a record whose payload is Huffman compressed.
	MagicHuffman uint16 = 0xEA6C

	// MagicRawAlt is an alternate marker for uncompressed payloads.
	MagicRawAlt uint16 = 0xEA6D
)

// RecordSentinel is the expected value of the second header byte of every
// well-formed record.
const RecordSentinel = 0x0B

// PayloadAlign is the alignment of record payloads within the archive.
// Filenames and payloads are padded to this boundary.
const PayloadAlign = 8

// Sizes of the fixed structures in bytes.
const (
	FileHeaderSize    = 72
	RecordHeaderSize  = 64
	RecordTrailerSize = 40
)

// File type and permission bits of the record Mode field, as stored by
// AIX (standard POSIX encoding).
const (
	ModeTypeMask = 0o170000
	ModeTypeFIFO = 0o010000
	ModeTypeChar = 0o020000
	ModeTypeDir  = 0o040000
	ModeTypeBlck = 0o060000
	ModeTypeReg  = 0o100000
	ModeTypeLink = 0o120000
	ModeTypeSock = 0o140000

	ModeSetUID = 0o4000
	ModeSetGID = 0o2000
	ModeSticky = 0o1000
	ModePerm   = 0o777
)

// KnownRecordMagic reports whether m is one of the three record magics.
func KnownRecordMagic(m uint16) bool {
	return m == MagicRaw || m == MagicHuffman || m == MagicRawAlt
}

// FileHeader is the 72-byte structure at the start of every archive.
type FileHeader struct {
	Magic          uint32
	Checksum       uint32
	CurrentDate    uint32
	StartingDate   uint32
	Unk10          uint32
	DiskName       [8]byte
	Unk1C          uint32
	Unk20          uint32
	FilesystemName [8]byte
	Unk2C          uint32
	Unk30          uint32
	Username       [8]byte
	Unk3C          uint32
	Unk40          uint32
	Unk44          uint32
}

// RecordHeader is the 64-byte structure at the start of every record.
type RecordHeader struct {
	// Unk00 varies with the entry kind: directories carry 0x0D, regular
	// files 0x0F..0x12, the lpp_name record 0x0A.
	Unk00 uint8
	// Sentinel is RecordSentinel (0x0B) for well-formed records.
	Sentinel uint8
	Magic    uint16
	Unk04    uint32
	// Unk08 may be a directory ID or counter; always 0 for files.
	Unk08 uint32
	Mode  uint32
	UID   uint32
	GID   uint32
	// Size is the decompressed payload size.
	Size   uint32
	ATime  uint32
	MTime  uint32
	Time24 uint32
	Unk28  uint32
	Unk2C  uint32
	Unk30  uint32
	Unk34  uint32
	// CompressedSize is the stored payload size.
	CompressedSize uint32
	Unk3C          uint32
}

// RecordTrailer follows the record filename. None of its fields have been
// identified; it is read only to keep the stream aligned.
type RecordTrailer struct {
	Unk00 uint32
	Unk04 uint32
	Unk08 uint32
	Unk0C uint32
	Unk10 uint32
	Unk14 uint32
	Unk18 uint32
	Unk1C uint32
	Unk20 uint32
	Unk24 uint32
}

// ReadFileHeader decodes a FileHeader from r.
// Short input fails with io.ErrUnexpectedEOF.
func ReadFileHeader(r io.Reader) (FileHeader, error) {
	var h FileHeader
	err := readStruct(r, FileHeaderSize, &h)
	return h, err
}

// ReadRecordHeader decodes a RecordHeader from r.
func ReadRecordHeader(r io.Reader) (RecordHeader, error) {
	var h RecordHeader
	err := readStruct(r, RecordHeaderSize, &h)
	return h, err
}

// ReadRecordTrailer decodes a RecordTrailer from r.
func ReadRecordTrailer(r io.Reader) (RecordTrailer, error) {
	var t RecordTrailer
	err := readStruct(r, RecordTrailerSize, &t)
	return t, err
}

// readStruct reads exactly size bytes and decodes them into v, which must
// consist of fixed-width fields only. Buffering the window first keeps
// partial reads from leaving the source mid-structure.
func readStruct(r io.Reader, size int, v any) error {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, v)
}

// ReadAlignedString reads a NUL-terminated string stored in chunks of
// PayloadAlign bytes. Whole chunks are consumed even past the terminator,
// so the source is left chunk-aligned. End of input before a terminator
// yields the bytes collected so far.
func ReadAlignedString(r io.Reader) (string, error) {
	var name []byte
	var chunk [PayloadAlign]byte
	for {
		n, err := io.ReadFull(r, chunk[:])
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			return string(append(name, chunk[:i]...)), nil
		}
		name = append(name, chunk[:n]...)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return string(name), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Align rounds n up to the next multiple of PayloadAlign.
func Align(n int64) int64 {
	return (n + PayloadAlign - 1) &^ (PayloadAlign - 1)
}

// CString interprets b as a NUL-terminated byte array and returns the
// leading string portion.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
