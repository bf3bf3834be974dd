package diagfmt

import (
	"encoding/json"
	"io"

	"lintel/internal/diag"
	"lintel/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_column,omitempty"`
	EndLine   uint32 `json:"last_line,omitempty"`
	EndCol    uint32 `json:"last_column,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// OffenseJSON представляет offense в JSON формате
type OffenseJSON struct {
	Severity    string       `json:"severity"`
	Message     string       `json:"message"`
	CopName     string       `json:"cop_name"`
	Correctable bool         `json:"correctable"`
	Safe        bool         `json:"safe"`
	Location    LocationJSON `json:"location"`
	Notes       []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON groups the offenses of one file.
type FileJSON struct {
	Path     string        `json:"path"`
	Offenses []OffenseJSON `json:"offenses"`
}

// SummaryJSON holds the totals of a run.
type SummaryJSON struct {
	OffenseCount       int            `json:"offense_count"`
	InspectedFileCount int            `json:"inspected_file_count"`
	BySeverity         map[string]int `json:"by_severity,omitempty"`
	Truncated          bool           `json:"truncated,omitempty"`
}

// MetadataJSON describes the tool that produced the output.
type MetadataJSON struct {
	Version string `json:"lintel_version,omitempty"`
}

// OffensesOutput представляет корневую структуру JSON вывода
type OffensesOutput struct {
	Metadata MetadataJSON `json:"metadata"`
	Files    []FileJSON   `json:"files"`
	Summary  SummaryJSON  `json:"summary"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, includePositions bool) LocationJSON {
	loc := LocationJSON{
		StartByte: span.Start,
		EndByte:   span.End,
	}

	// Добавляем позиции строк/колонок если требуется
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}

	return loc
}

// BuildOffensesOutput формирует структуру JSON-вывода без сериализации.
// Files keep the order of opts.Files, followed by files that only appear in
// the bag, in order of first appearance.
func BuildOffensesOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) OffensesOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	byPath := make(map[string]int)
	var files []FileJSON
	fileFor := func(path string) *FileJSON {
		if i, ok := byPath[path]; ok {
			return &files[i]
		}
		byPath[path] = len(files)
		files = append(files, FileJSON{Path: path, Offenses: []OffenseJSON{}})
		return &files[len(files)-1]
	}
	for _, p := range opts.Files {
		if id, ok := fs.GetLatest(p); ok {
			fileFor(displayPath(fs, id, opts.PathMode))
		}
	}

	counts := make(map[string]int)
	for i := range maxItems {
		o := items[i]
		oj := OffenseJSON{
			Severity: o.Severity.String(),
			Message:  o.Message,
			CopName:  o.Cop,
			Safe:     o.Safe,
			Location: makeLocation(o.Primary, fs, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(o.Notes) > 0 {
			oj.Notes = make([]NoteJSON, len(o.Notes))
			for j, note := range o.Notes {
				oj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.IncludePositions),
				}
			}
		}
		counts[oj.Severity]++
		f := fileFor(displayPath(fs, o.Primary.File, opts.PathMode))
		f.Offenses = append(f.Offenses, oj)
	}

	if files == nil {
		files = []FileJSON{}
	}
	return OffensesOutput{
		Metadata: MetadataJSON{Version: opts.Version},
		Files:    files,
		Summary: SummaryJSON{
			OffenseCount:       maxItems,
			InspectedFileCount: len(files),
			BySeverity:         counts,
			Truncated:          bag.Truncated() || maxItems < len(items),
		},
	}
}

// JSON форматирует offenses в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildOffensesOutput(bag, fs, opts))
}
