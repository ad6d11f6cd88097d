//go:build !unix

package validation

import (
	"errors"
	"os"
)

var errReadOnly = errors.New("permission denied")

func writable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o200 == 0 {
		return errReadOnly
	}
	return nil
}
