package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xuri/excelize/v2"

	"retailpulse/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is a loaded input file before any type coercion. Every row has
// exactly len(Header) cells.
type RawTable struct {
	Header  []string
	Rows    [][]string
	Sources []string
}

// Loader reads transaction exports from disk.
type Loader struct {
	logger    *slog.Logger
	delimiter rune
}

// NewLoader creates a loader. An empty delimiter means it is inferred from
// the file extension: tab for .tsv, comma otherwise.
func NewLoader(logger *slog.Logger, delimiter string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger.With(slog.String("component", "loader"))}
	if delimiter != "" {
		l.delimiter = []rune(delimiter)[0]
	}
	return l
}

// Load reads every file matching pattern and concatenates them in lexical
// path order. A pattern without glob metacharacters is a plain path. All
// matched files must carry the same set of columns; rows of later files are
// reordered into the first file's column order.
func (l *Loader) Load(ctx context.Context, pattern string) (*RawTable, error) {
	paths, err := l.resolve(pattern)
	if err != nil {
		return nil, err
	}

	var combined *RawTable
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := l.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		if combined == nil {
			combined = table
			continue
		}
		if err := combined.appendTable(table); err != nil {
			return nil, err
		}
	}

	l.logger.InfoContext(ctx, "input loaded",
		slog.Int("files", len(paths)),
		slog.Int("rows", len(combined.Rows)),
		slog.Int("columns", len(combined.Header)))

	return combined, nil
}

func (l *Loader) resolve(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, errors.NewAppValidationError("input path is empty")
	}

	base, globPart := doublestar.SplitPattern(filepath.ToSlash(pattern))
	if !strings.ContainsAny(globPart, "*?[{") {
		if _, err := os.Stat(pattern); err != nil {
			return nil, errors.NewNotFoundError(fmt.Sprintf("input file %s", pattern)).
				WithContext("path", pattern)
		}
		return []string{pattern}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(base), globPart, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("invalid input pattern %q", pattern), err)
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("input files matching %s", pattern)).
			WithContext("pattern", pattern)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile reads a single delimited text or .xlsx file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*RawTable, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path)
	default:
		records, err = l.readDelimited(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("input file %s has no header row", path), nil)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, padRecord(rec, len(header)))
	}

	l.logger.DebugContext(ctx, "input file read",
		slog.String("path", path),
		slog.Int("rows", len(rows)))

	return &RawTable{Header: header, Rows: rows, Sources: []string{path}}, nil
}

func (l *Loader) readDelimited(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read input file %s", path), err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = l.delimiterFor(path)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) delimiterFor(path string) rune {
	if l.delimiter != 0 {
		return l.delimiter
	}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// readWorkbook returns the rows of the first sheet.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("workbook %s has no sheets", path), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q of %s", sheets[0], path), err)
	}
	return rows, nil
}

func (t *RawTable) appendTable(other *RawTable) error {
	index := make(map[string]int, len(other.Header))
	for i, h := range other.Header {
		index[h] = i
	}
	if len(index) != len(t.Header) {
		return errors.NewParsingError(fmt.Sprintf("%s does not share the columns of %s", other.Sources[0], t.Sources[0]), nil)
	}

	order := make([]int, len(t.Header))
	for i, h := range t.Header {
		j, ok := index[h]
		if !ok {
			return errors.NewParsingError(fmt.Sprintf("%s has no column %q", other.Sources[0], h), nil)
		}
		order[i] = j
	}

	for _, row := range other.Rows {
		aligned := make([]string, len(order))
		for i, j := range order {
			aligned[i] = row[j]
		}
		t.Rows = append(t.Rows, aligned)
	}
	t.Sources = append(t.Sources, other.Sources...)
	return nil
}

func padRecord(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
