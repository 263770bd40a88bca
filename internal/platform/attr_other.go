//go:build !unix

package platform

// Chown is a no-op on platforms without numeric file ownership. The owners
// attribute is accepted but has no effect.
func Chown(path string, uid, gid uint32) error {
	return nil
}

// Chmod is a no-op on platforms without Unix permission bits. The
// permissions attribute is accepted but has no effect.
func Chmod(path string, mode uint32) error {
	return nil
}
