package bff

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/meigma/bff/internal/platform"
)

// Extract writes the selected records under destDir, creating it if
// needed. Directory records become directories; regular file records are
// decoded and written; parent directories are created as required.
//
// Records with an empty name or whose attributes cannot be restored are
// logged and skipped. Everything else aborts the extraction: unsupported
// record types, names that escape destDir, I/O failures, and corrupt
// compressed payloads.
func (a *Archive) Extract(destDir string, opts ...ExtractOption) error {
	cfg := defaultExtractConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, pattern := range cfg.globs {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("bff: glob %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	for i := range a.records {
		rec := &a.records[i]
		if !cfg.selects(rec) {
			continue
		}
		if err := a.extractRecord(rec, destDir, &cfg); err != nil {
			if skippable(err) {
				a.log().Warn("skipping record", "name", rec.Name, "error", err)
				continue
			}
			return err
		}
	}
	return nil
}

// ExtractFile extracts the first record named name to destPath. Unlike
// Extract, every failure is returned, including attribute errors.
func (a *Archive) ExtractFile(name, destPath string, opts ...ExtractOption) error {
	rec, ok := a.Record(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	cfg := defaultExtractConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return a.extractTo(rec, destPath, &cfg)
}

// selects reports whether the record passes the configured filter and
// glob patterns.
func (cfg *extractConfig) selects(rec *Record) bool {
	if cfg.filter != nil && !cfg.filter(rec) {
		return false
	}
	if len(cfg.globs) == 0 {
		return true
	}
	name := cleanName(rec.Name)
	for _, pattern := range cfg.globs {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// skippable reports whether a per-record failure should be logged and
// absorbed rather than abort the extraction.
func skippable(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrMissingParent) ||
		errors.Is(err, ErrAttributes)
}

func (a *Archive) extractRecord(rec *Record, destDir string, cfg *extractConfig) error {
	if rec.Name == "" {
		return ErrEmptyName
	}
	name := cleanName(rec.Name)
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "extract", Path: rec.Name, Err: fs.ErrInvalid}
	}
	return a.extractTo(rec, filepath.Join(destDir, filepath.FromSlash(name)), cfg)
}

func (a *Archive) extractTo(rec *Record, target string, cfg *extractConfig) error {
	switch {
	case rec.IsDir():
		if err := makeDirAll(target); err != nil {
			return fmt.Errorf("bff: create directory: %w", err)
		}
	case rec.IsRegular():
		parent := filepath.Dir(target)
		if parent == target {
			return fmt.Errorf("%w: %s", ErrMissingParent, target)
		}
		if err := makeDirAll(parent); err != nil {
			return fmt.Errorf("bff: create parent directory: %w", err)
		}
		if err := a.writeRecord(rec, target); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, rec.Name, rec.Mode.Type())
	}
	if err := applyAttributes(target, rec, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrAttributes, err)
	}
	return nil
}

func (a *Archive) writeRecord(rec *Record, target string) error {
	src, err := a.OpenRecord(rec)
	if err != nil {
		return err
	}
	f, err := os.Create(target) //nolint:gosec // Target derives from a validated record name
	if err != nil {
		return fmt.Errorf("bff: create file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("bff: write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("bff: close %s: %w", target, err)
	}
	return nil
}

// makeDirAll creates dir and its parents. A non-directory already at dir
// is removed first so later records can populate the directory.
func makeDirAll(dir string) error {
	if info, err := os.Lstat(dir); err == nil {
		if info.IsDir() {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return err
		}
	}
	return os.MkdirAll(dir, 0o755)
}

// applyAttributes restores the configured attributes in the order the
// record decodes them: timestamps, ownership, permissions. Ownership runs
// before permissions so a chown cannot strip setuid bits afterwards.
func applyAttributes(target string, rec *Record, cfg *extractConfig) error {
	if cfg.timestamps {
		if err := os.Chtimes(target, rec.AccessTime, rec.ModTime); err != nil {
			return err
		}
	}
	if cfg.owners {
		if err := platform.Chown(target, rec.UID, rec.GID); err != nil {
			return err
		}
	}
	if cfg.permissions {
		if err := platform.Chmod(target, unixPerm(rec.Mode)); err != nil {
			return err
		}
	}
	return nil
}
