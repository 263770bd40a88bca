package bff

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/meigma/bff/internal/huffman"
	"github.com/meigma/bff/internal/layout"
)

// ByteSource provides random access to archive bytes.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Archive provides access to the records of a BFF archive. The source is
// scanned once at construction; all later reads use independent section
// readers, so an Archive is safe for concurrent use.
type Archive struct {
	source  ByteSource
	header  layout.FileHeader
	records []Record
	logger  *slog.Logger
}

// New creates an Archive from a ByteSource. The file header is validated
// and every record header is scanned up front.
func New(source ByteSource, opts ...Option) (*Archive, error) {
	if source.Size() > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	a := &Archive{source: source}
	for _, opt := range opts {
		opt(a)
	}

	sr := io.NewSectionReader(source, 0, source.Size())
	hdr, err := layout.ReadFileHeader(sr)
	if err != nil {
		return nil, fmt.Errorf("bff: read file header: %w", err)
	}
	if hdr.Magic != layout.FileMagic {
		return nil, fmt.Errorf("%w: %#08x", ErrFileMagic, hdr.Magic)
	}
	a.header = hdr

	a.records, err = scanRecords(sr, a.log())
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Header returns the archive-level metadata.
func (a *Archive) Header() FileHeader {
	return newFileHeader(a.header)
}

// Records returns all scanned records in archive order. The returned
// slice is shared; callers must not modify it.
func (a *Archive) Records() []Record {
	return a.records
}

// Record returns the first record whose stored name matches name exactly.
func (a *Archive) Record(name string) (*Record, bool) {
	for i := range a.records {
		if a.records[i].Name == name {
			return &a.records[i], true
		}
	}
	return nil, false
}

// OpenRecord returns a reader over the record's decoded content. Huffman
// coded payloads are decompressed transparently and bounded by the
// record's decompressed size. Only regular files have content.
func (a *Archive) OpenRecord(rec *Record) (io.Reader, error) {
	if !rec.IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rec.Name)
	}
	section := io.NewSectionReader(a.source, rec.DataOffset, int64(rec.CompressedSize))
	if !rec.Compressed() {
		return section, nil
	}
	dec, err := huffman.NewReader(section)
	if err != nil {
		return nil, err
	}
	return io.LimitReader(dec, int64(rec.Size)), nil
}

// OpenRecordRaw returns a reader over the record's stored payload bytes
// with no decoding applied. For compressed records this includes the
// symbol table.
func (a *Archive) OpenRecordRaw(rec *Record) (io.Reader, error) {
	if !rec.IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rec.Name)
	}
	return io.NewSectionReader(a.source, rec.DataOffset, int64(rec.CompressedSize)), nil
}

func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.logger
}
