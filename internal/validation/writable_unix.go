//go:build unix

package validation

import "golang.org/x/sys/unix"

// writable asks the kernel whether the current user may write to path, so
// that ACLs, read-only mounts and ownership are all taken into account.
func writable(path string) error {
	return unix.Access(path, unix.W_OK)
}
