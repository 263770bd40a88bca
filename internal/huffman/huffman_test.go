package huffman

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/bff/internal/bfftest"
)

// terminatedTable admits an end-of-stream code (001), so decoding stops
// exactly at the encoded data.
var terminatedTable = bfftest.Table{{'a'}, {'b'}, {'c'}}

// openTable fills its code space completely; streams encoded with it end
// only when the input runs out.
var openTable = bfftest.Table{{'a'}, {'b'}, {'c', 'd'}}

func TestReaderRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"single symbol", "a"},
		{"all symbols", "abc"},
		{"repeats", "aaabbbcccaaa"},
		{"long run", "abcabcabcabcabcabcabcabcabcabc"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := terminatedTable.Encode([]byte(tc.data))
			dec, err := NewReader(bytes.NewReader(payload))
			require.NoError(t, err)

			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			assert.Equal(t, tc.data, string(got))
		})
	}
}

func TestReaderSmallBuffers(t *testing.T) {
	t.Parallel()

	data := "abcabcaaabbbccc"
	payload := terminatedTable.Encode([]byte(data))

	for _, size := range []int{1, 2, 3, 7, 64} {
		dec, err := NewReader(bytes.NewReader(payload))
		require.NoError(t, err)

		var got []byte
		buf := make([]byte, size)
		for {
			n, err := dec.Read(buf)
			got = append(got, buf[:n]...)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}
		assert.Equal(t, data, string(got), "buffer size %d", size)
	}
}

// A one-bit code means a single input byte can decode to eight symbols;
// reads smaller than that must buffer the excess without losing bytes.
func TestReaderBuffersOverflowSymbols(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("a"), 16)
	payload := terminatedTable.Encode(data)
	dec, err := NewReader(bytes.NewReader(payload))
	require.NoError(t, err)

	got := make([]byte, len(data))
	for i := range got {
		n, err := dec.Read(got[i : i+1])
		require.NoError(t, err)
		require.Equal(t, 1, n)
	}
	assert.Equal(t, data, got)
}

// Without a reachable end-of-stream code the stream ends when the input
// does, and the padding bits of the final byte may decode to stray
// symbols. Callers bound the output by the decompressed size.
func TestReaderStopsAtInputEnd(t *testing.T) {
	t.Parallel()

	data := "abcd"
	payload := openTable.Encode([]byte(data))
	dec, err := NewReader(bytes.NewReader(payload))
	require.NoError(t, err)

	got := make([]byte, len(data))
	_, err = io.ReadFull(dec, got)
	require.NoError(t, err)
	assert.Equal(t, data, string(got))

	rest, err := io.ReadAll(dec)
	require.NoError(t, err)
	for _, b := range rest {
		assert.Contains(t, []byte("abcd"), b, "padding artifacts decode to table symbols")
	}
}

func TestReaderEOFIsSticky(t *testing.T) {
	t.Parallel()

	payload := terminatedTable.Encode([]byte("ab"))
	dec, err := NewReader(bytes.NewReader(payload))
	require.NoError(t, err)

	_, err = io.ReadAll(dec)
	require.NoError(t, err)

	var buf [4]byte
	n, err := dec.Read(buf[:])
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestNewReaderRejectsBadTables(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload []byte
		err     error
	}{
		{"empty payload", nil, io.ErrUnexpectedEOF},
		{"zero levels", []byte{0x00}, ErrBadSymbolTable},
		{"missing counts", []byte{0x03, 0x01}, io.ErrUnexpectedEOF},
		{"oversized alphabet", []byte{0x02, 0xFF, 0xFF}, ErrBadSymbolTable},
		{"truncated symbols", []byte{0x02, 0x01, 0x01, 'a'}, io.ErrUnexpectedEOF},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReader(bytes.NewReader(tc.payload))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestReaderEmptyRead(t *testing.T) {
	t.Parallel()

	payload := terminatedTable.Encode([]byte("abc"))
	dec, err := NewReader(bytes.NewReader(payload))
	require.NoError(t, err)

	n, err := dec.Read(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
