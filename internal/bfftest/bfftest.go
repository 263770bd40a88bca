// Package bfftest builds synthetic BFF archives and Huffman payloads for
// tests. Archives are assembled in memory with the exact on-disk layout
// (little-endian packed structures, aligned names, 8-byte payload padding)
// so tests can assert byte offsets against hand-computed values.
package bfftest

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/meigma/bff/internal/layout"
)

// Record describes one archive entry to synthesize.
type Record struct {
	Name    string
	Mode    uint32
	UID     uint32
	GID     uint32
	ATime   uint32
	MTime   uint32
	Magic   uint16
	Size    uint32 // decompressed size
	Payload []byte // stored payload bytes

	// Sentinel overrides the 0x0B record sentinel when non-zero, to
	// synthesize malformed records.
	Sentinel byte

	// CompressedSize overrides the stored payload length in the header
	// when non-zero, to synthesize zero-size records whose header still
	// declares a payload.
	CompressedSize uint32
}

// Archive collects records and renders the archive bytes.
type Archive struct {
	DiskName       string
	FilesystemName string
	Username       string
	Records        []Record
}

// Dir appends a directory record.
func (a *Archive) Dir(name string, mode uint32) {
	a.Records = append(a.Records, Record{
		Name:  name,
		Mode:  layout.ModeTypeDir | mode,
		Magic: layout.MagicRaw,
	})
}

// File appends an uncompressed regular-file record holding data.
func (a *Archive) File(name string, mode uint32, data []byte) {
	a.Records = append(a.Records, Record{
		Name:    name,
		Mode:    layout.ModeTypeReg | mode,
		Magic:   layout.MagicRaw,
		Size:    uint32(len(data)),
		Payload: data,
	})
}

// Compressed appends a Huffman-compressed regular-file record. The payload
// must already carry its symbol table; size is the decompressed length.
func (a *Archive) Compressed(name string, mode uint32, payload []byte, size uint32) {
	a.Records = append(a.Records, Record{
		Name:    name,
		Mode:    layout.ModeTypeReg | mode,
		Magic:   layout.MagicHuffman,
		Size:    size,
		Payload: payload,
	})
}

// Bytes renders the archive.
func (a *Archive) Bytes() []byte {
	var buf bytes.Buffer

	hdr := layout.FileHeader{Magic: layout.FileMagic}
	copy(hdr.DiskName[:], a.DiskName)
	copy(hdr.FilesystemName[:], a.FilesystemName)
	copy(hdr.Username[:], a.Username)
	mustWrite(&buf, hdr)

	for _, rec := range a.Records {
		sentinel := byte(layout.RecordSentinel)
		if rec.Sentinel != 0 {
			sentinel = rec.Sentinel
		}
		compressedSize := uint32(len(rec.Payload))
		if rec.CompressedSize != 0 {
			compressedSize = rec.CompressedSize
		}
		mustWrite(&buf, layout.RecordHeader{
			Sentinel:       sentinel,
			Magic:          rec.Magic,
			Mode:           rec.Mode,
			UID:            rec.UID,
			GID:            rec.GID,
			Size:           rec.Size,
			ATime:          rec.ATime,
			MTime:          rec.MTime,
			CompressedSize: compressedSize,
		})

		name := append([]byte(rec.Name), 0)
		buf.Write(name)
		pad(&buf, len(name))

		mustWrite(&buf, layout.RecordTrailer{})

		buf.Write(rec.Payload)
		pad(&buf, len(rec.Payload))
	}
	return buf.Bytes()
}

func pad(buf *bytes.Buffer, n int) {
	if r := n % layout.PayloadAlign; r != 0 {
		buf.Write(make([]byte, layout.PayloadAlign-r))
	}
}

func mustWrite(buf *bytes.Buffer, v any) {
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

// Table describes a Huffman code table for encoding test payloads: one
// symbol list per level, shallowest first. The stored count for the
// deepest level is one less than its list length, mirroring how the
// decoder reads that level; the code value one past the deepest list is
// the end-of-stream sentinel.
type Table [][]byte

type symbolCode struct {
	value  int
	length int
}

// Encode produces a complete compressed payload for data: the symbol table
// header followed by the MSB-first bit stream and, when the table leaves
// room for it, an explicit end-of-stream code. The final byte is padded
// with zero bits.
func (t Table) Encode(data []byte) []byte {
	maxLevel := len(t) - 1
	if maxLevel < 0 || len(t[maxLevel]) == 0 {
		panic("bfftest: table needs at least one symbol on its deepest level")
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(len(t)))
	for i, level := range t {
		n := len(level)
		if i == maxLevel {
			n-- // the decoder re-adds the sentinel slot
		}
		buf.WriteByte(byte(n))
	}
	for _, level := range t {
		buf.Write(level)
	}

	// Thresholds exactly as the decoder derives them.
	inodes := make([]int, len(t))
	for l := maxLevel - 1; l >= 0; l-- {
		symbols := len(t[l+1])
		if l+1 == maxLevel {
			symbols++
		}
		inodes[l] = (inodes[l+1] + symbols) / 2
	}

	codes := make(map[byte]symbolCode)
	for l, level := range t {
		for i, sym := range level {
			if _, ok := codes[sym]; !ok {
				codes[sym] = symbolCode{value: inodes[l] + i, length: l + 1}
			}
		}
	}

	var bw bitWriter
	for _, b := range data {
		c, ok := codes[b]
		if !ok {
			panic(fmt.Sprintf("bfftest: byte %#02x not in table", b))
		}
		bw.write(c.value, c.length)
	}

	// Terminate explicitly when the deepest level's code space has a
	// value left over; otherwise the compressed-size bound ends the
	// stream and the caller must limit output to the decompressed size.
	eos := symbolCode{value: inodes[maxLevel] + len(t[maxLevel]), length: maxLevel + 1}
	if eos.value < 1<<eos.length && reachable(inodes, eos) {
		bw.write(eos.value, eos.length)
	}

	buf.Write(bw.bytes())
	return buf.Bytes()
}

// reachable reports whether every prefix of the code keeps the decoder
// descending rather than hitting a leaf early.
func reachable(inodes []int, c symbolCode) bool {
	for l := 0; l < c.length-1; l++ {
		if c.value>>(c.length-1-l) >= inodes[l] {
			return false
		}
	}
	return true
}

type bitWriter struct {
	buf  []byte
	cur  byte
	nbit int
}

func (w *bitWriter) write(value, length int) {
	for i := length - 1; i >= 0; i-- {
		w.cur = w.cur<<1 | byte(value>>i&1)
		w.nbit++
		if w.nbit == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.nbit = 0, 0
		}
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbit > 0 {
		w.buf = append(w.buf, w.cur<<(8-w.nbit))
		w.cur, w.nbit = 0, 0
	}
	return w.buf
}
