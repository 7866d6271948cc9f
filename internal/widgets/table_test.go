package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sales-dashboard/internal/models"
)

func TestNewTable(t *testing.T) {
	source := models.TransactionTable{
		Columns: []string{"Datum", "Kunde", "Betrag"},
		Rows: [][]string{
			{"2025-06-01", "Müller GmbH", "1899.00"},
			{"2025-06-02", "", "349.90"},
		},
	}

	table := NewTable(source)

	want := Table{Columns: source.Columns, Rows: source.Rows}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	if table.Empty() {
		t.Error("expected non-empty table")
	}

	source.Rows[0][1] = "changed"
	source.Columns[0] = "changed"
	if table.Rows[0][1] != "Müller GmbH" || table.Columns[0] != "Datum" {
		t.Error("NewTable should copy its input")
	}
}

func TestNewTable_HeaderOnly(t *testing.T) {
	table := NewTable(models.TransactionTable{Columns: []string{"A"}})

	if !table.Empty() {
		t.Error("expected empty table")
	}
	if len(table.Columns) != 1 {
		t.Errorf("expected header to survive, got %v", table.Columns)
	}
}
