package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"goldpredict/db"
)

// textDecoder returns a transformer to UTF-8 for the named charset. A byte
// order mark, when present, wins over the configured name.
func textDecoder(name string) (transform.Transformer, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

func readDelimited(path string, delimiter rune, encoding string) (columns []string, rows [][]string, err error) {
	decoder, err := textDecoder(encoding)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	reader := csv.NewReader(transform.NewReader(file, decoder))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	columns, err = reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errEmptyTable
	}
	if err != nil {
		return nil, nil, err
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, record)
	}
	return columns, rows, nil
}

func readWorkbook(path, sheet string) (columns []string, rows [][]string, err error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		err = multierr.Append(err, book.Close())
	}()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	all, err := book.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}

	for _, row := range all {
		if blankRow(row) {
			continue
		}
		if columns == nil {
			columns = row
			continue
		}
		rows = append(rows, row)
	}
	if columns == nil {
		return nil, nil, errEmptyTable
	}
	return columns, rows, nil
}

func readSQLite(path, table string) ([]string, [][]string, error) {
	return db.ReadTable(path, table)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
