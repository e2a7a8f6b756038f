package market

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"goldpredict/apperr"
)

const opLoadDataset = "load dataset"

var errEmptyTable = errors.New("no header row")

// Dataset holds the historical rows in file order. It is never modified
// after LoadDataset returns.
type Dataset struct {
	path     string
	columns  []string
	index    map[string]int
	rows     [][]string
	required []string
}

// LoadDataset reads the table at opts.Path and checks the required columns.
func LoadDataset(opts LoadOptions) (*Dataset, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(opts.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, apperr.Wrap(apperr.KindNotFound, opLoadDataset, opts.Path, err, "File not found: %s", opts.Path)
	case err != nil:
		return nil, apperr.Wrap(apperr.KindNotFound, opLoadDataset, opts.Path, err, "Cannot access file: %s", opts.Path)
	case info.IsDir():
		return nil, apperr.Wrap(apperr.KindNotFound, opLoadDataset, opts.Path, fs.ErrInvalid, "File not found: %s is a directory", opts.Path)
	}

	format, err := detectFormat(opts.Path, opts.Format)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSchema, opLoadDataset, opts.Path, err, "Unsupported dataset %s: %v", opts.Path, err)
	}

	var columns []string
	var rows [][]string
	switch format {
	case FormatCSV:
		columns, rows, err = readDelimited(opts.Path, opts.Delimiter, opts.Encoding)
	case FormatTSV:
		columns, rows, err = readDelimited(opts.Path, '\t', opts.Encoding)
	case FormatXLSX:
		columns, rows, err = readWorkbook(opts.Path, opts.Sheet)
	case FormatSQLite:
		columns, rows, err = readSQLite(opts.Path, opts.Table)
	}
	if err == nil && len(columns) == 0 {
		err = errEmptyTable
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSchema, opLoadDataset, opts.Path, err, "Failed to read dataset %s: %v", opts.Path, err)
	}

	rows, err = normalizeRows(columns, rows)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSchema, opLoadDataset, opts.Path, err, "Failed to read dataset %s: %v", opts.Path, err)
	}

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range opts.Required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.Wrap(apperr.KindSchema, opLoadDataset, opts.Path, nil,
			"Dataset must contain these columns: %s (missing: %s)",
			strings.Join(opts.Required, ", "), strings.Join(missing, ", "))
	}

	return &Dataset{
		path:     opts.Path,
		columns:  columns,
		index:    index,
		rows:     rows,
		required: opts.Required,
	}, nil
}

// Head returns the first n rows restricted to the required columns.
func (d *Dataset) Head(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	table := Table{
		Columns: append([]string(nil), d.required...),
		Rows:    make([][]string, 0, n),
	}
	for _, row := range d.rows[:n] {
		out := make([]string, len(d.required))
		for i, col := range d.required {
			out[i] = row[d.index[col]]
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

func (d *Dataset) Path() string {
	return d.path
}

func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

func (d *Dataset) Required() []string {
	return append([]string(nil), d.required...)
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Format == "" {
		o.Format = FormatAuto
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Table == "" {
		o.Table = "prices"
	}

	required := o.Required
	if len(required) == 0 {
		required = DefaultRequiredColumns()
	}
	seen := make(map[string]bool, len(required))
	o.Required = make([]string, 0, len(required))
	for _, col := range required {
		if !seen[col] {
			seen[col] = true
			o.Required = append(o.Required, col)
		}
	}
	return o
}

func detectFormat(path, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatCSV, FormatTSV, FormatXLSX, FormatSQLite:
		return strings.ToLower(format), nil
	case FormatAuto, "":
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("cannot infer format from extension %q", filepath.Ext(path))
	}
}

// normalizeRows pads short rows and rejects rows wider than the header.
func normalizeRows(columns []string, rows [][]string) ([][]string, error) {
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(columns))
		}
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			row = padded
		}
		out = append(out, row)
	}
	return out, nil
}
