package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// TestInitDBCreatesSchema verifies InitDB creates the question bank tables and
// the join table carries both the surrogate id and the original number.
func TestInitDBCreatesSchema(t *testing.T) {
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	if err := InitDB(dbConn, SQLite); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	// Running migrations again must be a no-op.
	if err := InitDB(dbConn, SQLite); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	for _, table := range []string{"questions", "question_articles", "user_progress", "migration_runs"} {
		var name string
		if err := dbConn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}

	rows, err := dbConn.Query("PRAGMA table_info(question_articles)")
	if err != nil {
		t.Fatalf("pragmas: %v", err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	for _, c := range []string{"question_id", "original_question_number", "title_id", "article_number"} {
		if !cols[c] {
			t.Fatalf("expected %s in question_articles, got %v", c, cols)
		}
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"sqlite3", SQLite},
		{"SQLite", SQLite},
		{"postgres", Postgres},
		{"postgresql", Postgres},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Errorf("expected error for mysql")
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	if got := rebind(SQLite, q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	if got, want := rebind(Postgres, q), "SELECT * FROM t WHERE a = $1 AND b = $2"; got != want {
		t.Errorf("postgres rebind = %q; want %q", got, want)
	}
}
