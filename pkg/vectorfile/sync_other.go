//go:build !unix

package vectorfile

import "github.com/calvinalkan/vectorfile/pkg/fs"

func datasync(f fs.File) error {
	return f.Sync()
}
