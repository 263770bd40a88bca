package bff

import (
	"errors"

	"github.com/meigma/bff/internal/huffman"
)

// Archive structure errors.
var (
	// ErrFileMagic is returned when the source does not start with the BFF file magic.
	ErrFileMagic = errors.New("bff: invalid file magic")

	// ErrInvalidRecord marks a record header with a bad sentinel byte.
	// The scanner absorbs it and resumes at the next header boundary.
	ErrInvalidRecord = errors.New("bff: invalid record")

	// ErrRecordMagic marks a record header with an unknown magic number.
	// Like ErrInvalidRecord it is absorbed during scanning.
	ErrRecordMagic = errors.New("bff: invalid record magic")

	// ErrTooLarge is returned for sources beyond the format's 32-bit size fields.
	ErrTooLarge = errors.New("bff: archive larger than 4 GiB")
)

// Record access and extraction errors.
var (
	// ErrNotFound is returned when a filename is not present in the archive.
	ErrNotFound = errors.New("bff: filename not found in archive")

	// ErrUnsupportedType is returned when content is requested for a record
	// that is not a regular file.
	ErrUnsupportedType = errors.New("bff: unsupported file type")

	// ErrEmptyName marks a record with an empty filename; extraction logs and skips it.
	ErrEmptyName = errors.New("bff: record has an empty filename")

	// ErrMissingParent is returned when an extraction target has no usable
	// parent directory; the record is logged and skipped.
	ErrMissingParent = errors.New("bff: destination has no parent directory")

	// ErrAttributes wraps a failure to restore file attributes after extraction;
	// the affected record is logged and skipped.
	ErrAttributes = errors.New("bff: restoring file attributes failed")
)

// Decompression errors re-exported from the decoder. These indicate a
// corrupt symbol table or bitstream and always abort the operation that
// touched the record.
var (
	ErrBadSymbolTable    = huffman.ErrBadSymbolTable
	ErrInvalidLevelIndex = huffman.ErrInvalidLevelIndex
	ErrInvalidTreeLevel  = huffman.ErrInvalidTreeLevel
)
