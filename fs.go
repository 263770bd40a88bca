package bff

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Archive implements the read-only filesystem interfaces over cleaned
// record names. Directories that exist only as path prefixes are
// synthesized, and the first record wins when names collide.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
)

var (
	errIsDirectory  = errors.New("is a directory")
	errNotDirectory = errors.New("not a directory")
)

// Open opens the named file. Regular file records yield their decoded
// content; directory records and synthesized directories yield directory
// handles that support ReadDir.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if rec := a.fsRecord(name); rec != nil {
		switch {
		case rec.IsDir():
			return &dirFile{a: a, path: name, info: &fileInfo{name: path.Base(name), rec: rec}}, nil
		case rec.IsRegular():
			r, err := a.OpenRecord(rec)
			if err != nil {
				return nil, &fs.PathError{Op: "open", Path: name, Err: err}
			}
			return &recordFile{r: r, info: fileInfo{name: path.Base(name), rec: rec}}, nil
		default:
			return nil, &fs.PathError{Op: "open", Path: name, Err: ErrUnsupportedType}
		}
	}
	if name == "." || a.hasDirPrefix(name) {
		return &dirFile{a: a, path: name, info: &dirInfo{name: path.Base(name)}}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat returns file information for the named file without opening its
// content.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if rec := a.fsRecord(name); rec != nil {
		return &fileInfo{name: path.Base(name), rec: rec}, nil
	}
	if name == "." || a.hasDirPrefix(name) {
		return &dirInfo{name: path.Base(name)}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile returns the decoded content of the named regular file.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ReadDir returns the sorted entries of the named directory. Entries are
// deduplicated by name; a record-backed entry replaces a synthesized one.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	if rec := a.fsRecord(name); rec != nil && !rec.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errNotDirectory}
	} else if rec == nil && name != "." && !a.hasDirPrefix(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	type slot struct {
		entry  fs.DirEntry
		backed bool
	}
	children := make(map[string]slot)
	for i := range a.records {
		rec := &a.records[i]
		p := cleanName(rec.Name)
		if !fs.ValidPath(p) || p == "." {
			continue
		}
		child, exact := childOf(name, p)
		if child == "" {
			continue
		}
		prev, seen := children[child]
		switch {
		case exact && !prev.backed:
			children[child] = slot{entry: fs.FileInfoToDirEntry(&fileInfo{name: child, rec: rec}), backed: true}
		case !seen:
			children[child] = slot{entry: fs.FileInfoToDirEntry(&dirInfo{name: child})}
		}
	}

	entries := make([]fs.DirEntry, 0, len(children))
	for _, s := range children {
		entries = append(entries, s.entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// fsRecord returns the first record whose cleaned name matches the fs
// path name.
func (a *Archive) fsRecord(name string) *Record {
	if name == "." {
		name = ""
	}
	for i := range a.records {
		rec := &a.records[i]
		p := cleanName(rec.Name)
		if name == "" {
			if rec.Name != "" && p == "." && rec.IsDir() {
				return rec
			}
			continue
		}
		if p == name && fs.ValidPath(p) {
			return rec
		}
	}
	return nil
}

// hasDirPrefix reports whether any record lives beneath name.
func (a *Archive) hasDirPrefix(name string) bool {
	prefix := name + "/"
	for i := range a.records {
		p := cleanName(a.records[i].Name)
		if fs.ValidPath(p) && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// childOf returns the first path element of p below dir, or "" when p is
// not beneath dir. exact reports that p names the child itself rather
// than something deeper.
func childOf(dir, p string) (child string, exact bool) {
	if dir != "." {
		rest, ok := strings.CutPrefix(p, dir+"/")
		if !ok {
			return "", false
		}
		p = rest
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], false
	}
	return p, true
}

// fileInfo describes a record-backed file.
type fileInfo struct {
	name string
	rec  *Record
}

func (f *fileInfo) Name() string       { return f.name }
func (f *fileInfo) Size() int64        { return int64(f.rec.Size) }
func (f *fileInfo) Mode() fs.FileMode  { return f.rec.Mode }
func (f *fileInfo) ModTime() time.Time { return f.rec.ModTime }
func (f *fileInfo) IsDir() bool        { return f.rec.IsDir() }
func (f *fileInfo) Sys() any           { return f.rec }

// dirInfo describes a directory synthesized from record path prefixes.
type dirInfo struct {
	name string
}

func (d *dirInfo) Name() string       { return d.name }
func (d *dirInfo) Size() int64        { return 0 }
func (d *dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (d *dirInfo) ModTime() time.Time { return time.Time{} }
func (d *dirInfo) IsDir() bool        { return true }
func (d *dirInfo) Sys() any           { return nil }

// recordFile is an open regular file record.
type recordFile struct {
	r    io.Reader
	info fileInfo
}

func (f *recordFile) Stat() (fs.FileInfo, error) { return &f.info, nil }
func (f *recordFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *recordFile) Close() error               { return nil }

// dirFile is an open directory handle; entries are loaded lazily on the
// first ReadDir call.
type dirFile struct {
	a       *Archive
	path    string
	info    fs.FileInfo
	entries []fs.DirEntry
	loaded  bool
	offset  int
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dirFile) Close() error               { return nil }

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: errIsDirectory}
}

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.loaded {
		entries, err := d.a.ReadDir(d.path)
		if err != nil {
			return nil, err
		}
		d.entries = entries
		d.loaded = true
	}
	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n:n], nil
}
