package bff

import (
	"io/fs"
	"time"

	"github.com/meigma/bff/internal/layout"
)

// FileHeader holds the archive-level metadata from the volume header.
type FileHeader struct {
	// Checksum is the volume checksum as recorded by the archiver. It is
	// not verified.
	Checksum uint32

	// CurrentDate is the time the archive was written.
	CurrentDate time.Time

	// StartingDate is the backup epoch (for incremental backups, the time
	// of the previous level).
	StartingDate time.Time

	// DiskName, FilesystemName, and Username identify the source volume
	// and the user who ran the backup.
	DiskName       string
	FilesystemName string
	Username       string
}

// Record describes a single archive member. Records are produced by the
// initial scan and remain valid for the lifetime of the Archive.
type Record struct {
	// Name is the member path exactly as stored in the archive.
	Name string

	// Mode carries the member's type and permission bits, including
	// setuid, setgid, and sticky.
	Mode fs.FileMode

	// UID and GID identify the recorded owner.
	UID uint32
	GID uint32

	// Size is the decompressed content size; CompressedSize is the size
	// of the stored payload. They are equal for uncompressed records.
	Size           uint32
	CompressedSize uint32

	// ModTime and AccessTime are the recorded file times.
	ModTime    time.Time
	AccessTime time.Time

	// Magic selects the payload encoding for this record.
	Magic uint16

	// DataOffset is the payload's byte offset within the archive.
	DataOffset int64
}

// Compressed reports whether the record payload is Huffman coded.
func (r *Record) Compressed() bool { return r.Magic == layout.MagicHuffman }

// IsDir reports whether the record describes a directory.
func (r *Record) IsDir() bool { return r.Mode.IsDir() }

// IsRegular reports whether the record describes a regular file.
func (r *Record) IsRegular() bool { return r.Mode.IsRegular() }

func newRecord(hdr layout.RecordHeader, name string, dataOffset int64) Record {
	return Record{
		Name:           name,
		Mode:           fileMode(hdr.Mode),
		UID:            hdr.UID,
		GID:            hdr.GID,
		Size:           hdr.Size,
		CompressedSize: hdr.CompressedSize,
		ModTime:        time.Unix(int64(hdr.MTime), 0),
		AccessTime:     time.Unix(int64(hdr.ATime), 0),
		Magic:          hdr.Magic,
		DataOffset:     dataOffset,
	}
}

// fileMode converts raw Unix mode bits to an fs.FileMode.
func fileMode(raw uint32) fs.FileMode {
	mode := fs.FileMode(raw & layout.ModePerm)
	switch raw & layout.ModeTypeMask {
	case layout.ModeTypeDir:
		mode |= fs.ModeDir
	case layout.ModeTypeLink:
		mode |= fs.ModeSymlink
	case layout.ModeTypeChar:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case layout.ModeTypeBlck:
		mode |= fs.ModeDevice
	case layout.ModeTypeFIFO:
		mode |= fs.ModeNamedPipe
	case layout.ModeTypeSock:
		mode |= fs.ModeSocket
	}
	if raw&layout.ModeSetUID != 0 {
		mode |= fs.ModeSetuid
	}
	if raw&layout.ModeSetGID != 0 {
		mode |= fs.ModeSetgid
	}
	if raw&layout.ModeSticky != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

// unixPerm converts an fs.FileMode back to raw permission bits for chmod.
func unixPerm(mode fs.FileMode) uint32 {
	perm := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		perm |= layout.ModeSetUID
	}
	if mode&fs.ModeSetgid != 0 {
		perm |= layout.ModeSetGID
	}
	if mode&fs.ModeSticky != 0 {
		perm |= layout.ModeSticky
	}
	return perm
}

func newFileHeader(hdr layout.FileHeader) FileHeader {
	return FileHeader{
		Checksum:       hdr.Checksum,
		CurrentDate:    time.Unix(int64(hdr.CurrentDate), 0),
		StartingDate:   time.Unix(int64(hdr.StartingDate), 0),
		DiskName:       layout.CString(hdr.DiskName[:]),
		FilesystemName: layout.CString(hdr.FilesystemName[:]),
		Username:       layout.CString(hdr.Username[:]),
	}
}
