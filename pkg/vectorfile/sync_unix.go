//go:build unix

package vectorfile

import (
	"golang.org/x/sys/unix"

	"github.com/calvinalkan/vectorfile/pkg/fs"
)

// datasync commits the file's contents to stable storage.
func datasync(f fs.File) error {
	for {
		err := unix.Fsync(int(f.Fd()))
		if err != unix.EINTR {
			return err
		}
	}
}
