package bff

import (
	"io"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/bff/internal/bfftest"
)

func newTestFS(t *testing.T) *Archive {
	t.Helper()

	table := bfftest.Table{{'a'}, {'b'}, {'c', 'd'}}
	src := &bfftest.Archive{}
	src.Dir("usr", 0o755)
	src.Dir("usr/lpp", 0o755)
	src.File("usr/lpp/liblpp.a", 0o644, []byte("archive member"))
	src.Compressed("usr/lpp/packed.bin", 0o644, table.Encode([]byte("dcba")), 4)
	// No directory record for etc; it exists only as a path prefix.
	src.File("etc/motd", 0o644, []byte("welcome"))
	src.File("lpp_name", 0o644, []byte("bos.rte"))
	return newTestArchive(t, src)
}

func TestFSConformance(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)
	require.NoError(t, fstest.TestFS(a,
		"usr/lpp/liblpp.a",
		"usr/lpp/packed.bin",
		"etc/motd",
		"lpp_name",
	))
}

func TestFSOpenFile(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)
	f, err := a.Open("usr/lpp/liblpp.a")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "archive member", string(content))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "liblpp.a", info.Name())
	assert.Equal(t, int64(len("archive member")), info.Size())
	assert.False(t, info.IsDir())
}

func TestFSOpenErrors(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)

	_, err := a.Open("missing.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = a.Open("../escape")
	require.ErrorIs(t, err, fs.ErrInvalid)

	_, err = a.Open("usr/lpp/liblpp.a/below")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFSReadDirRoot(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)
	entries, err := a.ReadDir(".")
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"etc", "lpp_name", "usr"}, names)

	// etc is synthesized from a path prefix; usr is record backed.
	for _, e := range entries {
		if e.Name() != "lpp_name" {
			assert.True(t, e.IsDir(), e.Name())
		}
	}
}

func TestFSReadDirNested(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)
	entries, err := a.ReadDir("usr/lpp")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "liblpp.a", entries[0].Name())
	assert.Equal(t, "packed.bin", entries[1].Name())
}

func TestFSReadDirErrors(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)

	_, err := a.ReadDir("lpp_name")
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)

	_, err = a.ReadDir("does/not/exist")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFSDirHandle(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)
	f, err := a.Open("usr/lpp")
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "lpp", info.Name())

	_, err = f.Read(make([]byte, 1))
	require.Error(t, err)

	dir, ok := f.(fs.ReadDirFile)
	require.True(t, ok)

	first, err := dir.ReadDir(1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	rest, err := dir.ReadDir(-1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	_, err = dir.ReadDir(1)
	assert.Equal(t, io.EOF, err)
}

func TestFSStat(t *testing.T) {
	t.Parallel()

	src := &bfftest.Archive{}
	src.File("stamped.txt", 0o640, []byte("data"))
	src.Records[0].MTime = 1_600_000_000
	a := newTestArchive(t, src)

	info, err := a.Stat("stamped.txt")
	require.NoError(t, err)
	assert.Equal(t, "stamped.txt", info.Name())
	assert.Equal(t, int64(4), info.Size())
	assert.Equal(t, fs.FileMode(0o640), info.Mode())
	assert.True(t, info.ModTime().Equal(time.Unix(1_600_000_000, 0)))

	rec, ok := info.Sys().(*Record)
	require.True(t, ok)
	assert.Equal(t, "stamped.txt", rec.Name)

	// Synthesized directory.
	a2 := newTestFS(t)
	info, err = a2.Stat("etc")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFSReadFile(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)

	content, err := a.ReadFile("usr/lpp/packed.bin")
	require.NoError(t, err)
	assert.Equal(t, "dcba", string(content))

	_, err = a.ReadFile("usr")
	require.Error(t, err)
}

func TestFSWalk(t *testing.T) {
	t.Parallel()

	a := newTestFS(t)
	var files []string
	err := fs.WalkDir(a, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"etc/motd",
		"lpp_name",
		"usr/lpp/liblpp.a",
		"usr/lpp/packed.bin",
	}, files)
}
