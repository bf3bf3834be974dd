package diagfmt

import (
	"path/filepath"

	"lintel/internal/source"
)

func displayPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	var path string
	switch mode {
	case PathModeAbsolute:
		path = f.FormatPath("absolute", "")
	case PathModeRelative:
		path = f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		path = f.FormatPath("basename", "")
	default:
		path = f.FormatPath("relative", fs.BaseDir())
		if len(path) >= 80 {
			path = f.FormatPath("auto", "")
		}
	}
	return filepath.ToSlash(path)
}
