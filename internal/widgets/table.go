package widgets

import "sales-dashboard/internal/models"

// Table is the transaction grid as rendered: the file's columns and rows, untouched.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func NewTable(t models.TransactionTable) Table {
	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		copy(rows[i], row)
	}

	return Table{Columns: columns, Rows: rows}
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
