package migrations

import (
	"strings"
	"testing"
)

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames error: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("migrations not sorted: %v", names)
		}
	}
}

func TestStatements_OnlyUpSection(t *testing.T) {
	stmts, err := Statements("0001_reservations.sql")
	if err != nil {
		t.Fatalf("Statements error: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("len(stmts) = %d, want 3", len(stmts))
	}
	for _, s := range stmts {
		if strings.Contains(strings.ToUpper(s), "DROP TABLE") {
			t.Fatalf("down statement leaked into up section: %q", s)
		}
	}
	if !strings.Contains(stmts[1], "WHERE status = 'CONFIRMED'") {
		t.Fatalf("expected partial unique index, got %q", stmts[1])
	}
}

func TestExtractGooseUp_MissingMarker(t *testing.T) {
	if _, err := extractGooseUp("CREATE TABLE x (id int);"); err == nil {
		t.Fatalf("expected error for missing up marker")
	}
}
