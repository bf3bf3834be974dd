package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"lintel/internal/source"
)

// contextLines returns up to n lines preceding line, oldest first, with their
// line numbers.
func contextLines(f *source.File, line uint32, n int8) (first uint32, lines []string) {
	if n <= 0 || line <= 1 {
		return line, nil
	}
	from := uint32(1)
	if back := uint32(n); line > back {
		from = line - back
	}
	for l := from; l < line; l++ {
		lines = append(lines, strings.TrimRight(f.GetLine(l), "\r"))
	}
	return from, lines
}

// lineStartOffset returns the byte offset of the first byte of line.
func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}

// lineEndOffset returns the byte offset of the newline ending line, or the
// content length for the last line.
func lineEndOffset(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx]
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}
