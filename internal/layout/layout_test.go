package layout

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileHeader(t *testing.T) {
	t.Parallel()

	in := FileHeader{
		Magic:       FileMagic,
		Checksum:    0xDEADBEEF,
		CurrentDate: 1_700_000_000,
	}
	copy(in.DiskName[:], "hdisk0")
	copy(in.Username[:], "root")

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, in))
	require.Equal(t, FileHeaderSize, buf.Len())

	out, err := ReadFileHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "hdisk0", CString(out.DiskName[:]))
	assert.Equal(t, "root", CString(out.Username[:]))
}

func TestReadFileHeaderShortInput(t *testing.T) {
	t.Parallel()

	_, err := ReadFileHeader(bytes.NewReader(make([]byte, FileHeaderSize-1)))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadFileHeader(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

func TestReadRecordHeader(t *testing.T) {
	t.Parallel()

	in := RecordHeader{
		Sentinel:       RecordSentinel,
		Magic:          MagicHuffman,
		Mode:           ModeTypeReg | 0o644,
		UID:            201,
		GID:            7,
		Size:           4096,
		MTime:          1_600_000_000,
		CompressedSize: 1024,
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, in))
	require.Equal(t, RecordHeaderSize, buf.Len())

	out, err := ReadRecordHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRecordTrailerSize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, RecordTrailer{}))
	require.Equal(t, RecordTrailerSize, buf.Len())

	_, err := ReadRecordTrailer(&buf)
	require.NoError(t, err)
}

func TestKnownRecordMagic(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownRecordMagic(MagicRaw))
	assert.True(t, KnownRecordMagic(MagicHuffman))
	assert.True(t, KnownRecordMagic(MagicRawAlt))
	assert.False(t, KnownRecordMagic(0))
	assert.False(t, KnownRecordMagic(0xEA6E))
}

func TestReadAlignedString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    []byte
		want     string
		consumed int
	}{
		{"short name", []byte("abc\x00pad.TRAILING"), "abc", 8},
		{"exact chunk", []byte("sevench\x00NEXT....."), "sevench", 8},
		{"spans chunks", []byte("usr/lpp/bos\x00....MORE"), "usr/lpp/bos", 16},
		{"empty name", []byte("\x00.......X"), "", 8},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := bytes.NewReader(tc.input)
			got, err := ReadAlignedString(r)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.consumed, len(tc.input)-r.Len())
		})
	}
}

// A name cut off by the end of the archive yields the bytes collected so
// far; the scanner notices the truncation at the following trailer.
func TestReadAlignedStringTruncated(t *testing.T) {
	t.Parallel()

	got, err := ReadAlignedString(bytes.NewReader([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	got, err = ReadAlignedString(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAlign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), Align(0))
	assert.Equal(t, int64(8), Align(1))
	assert.Equal(t, int64(8), Align(8))
	assert.Equal(t, int64(16), Align(9))
	assert.Equal(t, int64(1024), Align(1024))
}

func TestCString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bos", CString([]byte("bos\x00\x00\x00\x00\x00")))
	assert.Equal(t, "noterm", CString([]byte("noterm")))
	assert.Empty(t, CString([]byte{0}))
	assert.Empty(t, CString(nil))
}
