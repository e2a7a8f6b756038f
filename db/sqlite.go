package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
)

// ErrTableNotFound is returned when the requested table or view is absent.
var ErrTableNotFound = errors.New("table not found")

// OpenReadOnly opens an existing SQLite database without creating it.
func OpenReadOnly(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(path))
	return sql.Open("sqlite3", dsn)
}

// ReadTable loads every row of table as strings, in storage order.
func ReadTable(path, table string) (columns []string, rows [][]string, err error) {
	database, err := OpenReadOnly(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	var name string
	err = database.QueryRow(`
        SELECT name FROM sqlite_master
        WHERE type IN ('table', 'view') AND name = ?`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if err != nil {
		return nil, nil, err
	}

	result, err := database.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdent(table)))
	if err != nil {
		return nil, nil, err
	}
	defer result.Close()

	columns, err = result.Columns()
	if err != nil {
		return nil, nil, err
	}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for result.Next() {
		if err := result.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
