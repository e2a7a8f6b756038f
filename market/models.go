package market

// Source formats understood by LoadDataset.
const (
	FormatAuto   = "auto"
	FormatCSV    = "csv"
	FormatTSV    = "tsv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// DefaultPreviewRows is the row count shown on the form.
const DefaultPreviewRows = 4

// DefaultRequiredColumns are the price fields the model is fed with.
func DefaultRequiredColumns() []string {
	return []string{"Open", "High", "Low"}
}

// LoadOptions describes where the historical rows live and how to read them.
type LoadOptions struct {
	Path      string
	Required  []string
	Format    string
	Delimiter rune
	Encoding  string
	Sheet     string
	Table     string
}

// Table is a read-only projection of a dataset.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Records returns the rows keyed by column name.
func (t Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}
