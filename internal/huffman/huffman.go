// Package huffman decodes the adaptive Huffman compression used for BFF
// record payloads.
//
// Each compressed payload starts with its own symbol table: a level count,
// per-level symbol counts, and the symbol values grouped by code length.
// There is no pointer tree; decoding walks a canonical-code threshold table
// bit by bit. A synthetic slot appended to the deepest level encodes the
// end-of-stream sentinel.
package huffman

import (
	"errors"
	"io"
)

// Sentinel errors for structurally invalid streams. These are hard errors:
// once reported, the decoded byte stream can no longer be trusted.
var (
	// ErrBadSymbolTable is returned when the embedded symbol table is invalid.
	ErrBadSymbolTable = errors.New("bff: bad symbol table")

	// ErrInvalidLevelIndex is returned when a decoded code points past the
	// symbol list of its level.
	ErrInvalidLevelIndex = errors.New("bff: invalid level index")

	// ErrInvalidTreeLevel is returned when decoding descends below the
	// deepest level of the tree.
	ErrInvalidTreeLevel = errors.New("bff: invalid tree level")
)

// maxSymbols bounds the symbol table; the alphabet is byte-valued.
const maxSymbols = 256

// Reader decompresses one record payload as a pull-based byte stream.
//
// The source must be bounded to the record's compressed size by the caller;
// running out of input is the normal way a stream without a reachable
// end-of-stream code terminates.
type Reader struct {
	r io.Reader

	code  uint8
	level int

	maxLevel  int
	inodesIn  []int   // per-level code threshold below which a code is internal
	symbolsIn []int   // per-level symbol counts, sentinel-adjusted
	tree      [][]byte

	pending []byte // decoded bytes that overflowed the caller's buffer
	err     error  // sticky terminal state
}

// NewReader parses the symbol table at the start of r and returns a
// decoder for the bit stream that follows.
func NewReader(r io.Reader) (*Reader, error) {
	d := &Reader{r: r}
	if err := d.parseTable(); err != nil {
		return nil, err
	}
	return d, nil
}

// parseTable reads the level count, the per-level symbol counts and the
// symbol values, then derives the canonical-code threshold table.
func (d *Reader) parseTable() error {
	levels, err := d.readByte()
	if err != nil {
		return headerErr(err)
	}
	// The original tooling trusts this byte blindly; a zero would
	// underflow its level arithmetic.
	if levels == 0 {
		return ErrBadSymbolTable
	}
	d.maxLevel = int(levels) - 1
	d.inodesIn = make([]int, levels)
	d.symbolsIn = make([]int, levels)
	d.tree = make([][]byte, levels)

	symbolSize := 1
	for i := 0; i <= d.maxLevel; i++ {
		b, err := d.readByte()
		if err != nil {
			return headerErr(err)
		}
		d.symbolsIn[i] = int(b)
		symbolSize += int(b)
	}
	if symbolSize > maxSymbols {
		return ErrBadSymbolTable
	}

	// The deepest level stores one extra byte: the sentinel slot.
	d.symbolsIn[d.maxLevel]++

	for i := 0; i <= d.maxLevel; i++ {
		syms := make([]byte, d.symbolsIn[i])
		for j := range syms {
			b, err := d.readByte()
			if err != nil {
				return headerErr(err)
			}
			syms[j] = b
		}
		d.tree[i] = syms
	}

	// A second adjustment reserves the code value one past the stored
	// symbols of the deepest level; decoding it ends the stream.
	d.symbolsIn[d.maxLevel]++

	for l := d.maxLevel - 1; l >= 0; l-- {
		d.inodesIn[l] = (d.inodesIn[l+1] + d.symbolsIn[l+1]) / 2
	}
	return nil
}

// Read implements io.Reader.
//
// Decoding one input byte can produce more symbols than fit in p; the
// excess is buffered and returned first on the next call, so output is
// exact for any sequence of buffer sizes.
func (d *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	if n == len(p) {
		return n, nil
	}
	if d.err != nil {
		if n > 0 {
			return n, nil
		}
		return 0, d.err
	}

	var buf [1]byte
	for n < len(p) {
		if _, err := io.ReadFull(d.r, buf[:]); err != nil {
			// The compressed-size bound has been reached; with no
			// explicit terminator this is the normal end of stream.
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				d.err = io.EOF
			} else {
				d.err = err
			}
			break
		}

		for bit := 7; bit >= 0; bit-- {
			d.code = d.code<<1 | buf[0]>>uint(bit)&1
			if int(d.code) < d.inodesIn[d.level] {
				d.level++
				if d.level > d.maxLevel {
					d.err = ErrInvalidTreeLevel
					break
				}
				continue
			}
			idx := int(d.code) - d.inodesIn[d.level]
			if idx > d.symbolsIn[d.level] {
				d.err = ErrInvalidLevelIndex
				break
			}
			if idx >= len(d.tree[d.level]) {
				// The end-of-stream slot; remaining bits are padding.
				d.err = io.EOF
				break
			}
			sym := d.tree[d.level][idx]
			if n < len(p) {
				p[n] = sym
			} else {
				d.pending = append(d.pending, sym)
			}
			n++
			d.code = 0
			d.level = 0
		}
		if d.err != nil {
			break
		}
	}

	if n > len(p) {
		n = len(p)
	}
	if n > 0 {
		return n, nil
	}
	return 0, d.err
}

func (d *Reader) readByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(d.r, b[:])
	return b[0], err
}

// headerErr maps a short read inside the symbol table to
// io.ErrUnexpectedEOF; a truncated table is never a valid stream.
func headerErr(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
