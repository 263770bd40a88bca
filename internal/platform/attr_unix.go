//go:build unix

package platform

import "golang.org/x/sys/unix"

// Chown sets the owner and group of the file at path.
func Chown(path string, uid, gid uint32) error {
	return unix.Chown(path, int(uid), int(gid))
}

// Chmod sets the full mode bits of the file at path, including the
// setuid/setgid/sticky bits.
func Chmod(path string, mode uint32) error {
	return unix.Chmod(path, mode&0o7777)
}
