package diagfmt

import (
	"io"

	"lintel/internal/diag"
	"lintel/internal/source"
)

// Short prints one line per offense: "severity cop path:line:col message".
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortOffenses(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
