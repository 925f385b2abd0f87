package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateTableAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cols := []Column{
		{Name: "date", Type: "date"},
		{Name: "score", Type: "integer"},
	}
	if err := s.CreateTable(ctx, "energy", cols); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	infos, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 table, got %d", len(infos))
	}

	info := infos[0]
	if info.Name != "energy" {
		t.Errorf("table name: got %q, want %q", info.Name, "energy")
	}
	if info.RowCount != 0 {
		t.Errorf("row count: got %d, want 0", info.RowCount)
	}

	// id and created_at are engine-managed; the user columns follow
	want := []Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "created_at", Type: "TEXT"},
		{Name: "date", Type: "TEXT"},
		{Name: "score", Type: "INTEGER"},
	}
	if len(info.Columns) != len(want) {
		t.Fatalf("columns: got %v, want %v", info.Columns, want)
	}
	for i, col := range info.Columns {
		if col.Name != want[i].Name || col.Type != want[i].Type {
			t.Errorf("column %d: got %v, want %v", i, col, want[i])
		}
	}
}

func TestCreateTableIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cols := []Column{{Name: "note", Type: "text"}}
	if err := s.CreateTable(ctx, "journal", cols); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := s.CreateTable(ctx, "journal", cols); err != nil {
		t.Errorf("identical re-create should be a no-op, got: %v", err)
	}
}

func TestCreateTableSchemaConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "journal", []Column{{Name: "note", Type: "text"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := s.CreateTable(ctx, "journal", []Column{{Name: "mood", Type: "integer"}})
	if !errors.Is(err, ErrSchemaConflict) {
		t.Errorf("expected ErrSchemaConflict, got: %v", err)
	}
}

func TestCreateTableValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		columns []Column
	}{
		{"invalid table name", "bad name!", []Column{{Name: "a", Type: "text"}}},
		{"sqlite prefix", "sqlite_foo", []Column{{Name: "a", Type: "text"}}},
		{"no columns", "empty", nil},
		{"invalid column name", "t", []Column{{Name: "drop table", Type: "text"}}},
		{"reserved column", "t", []Column{{Name: "id", Type: "integer"}}},
		{"duplicate column", "t", []Column{{Name: "a", Type: "text"}, {Name: "A", Type: "text"}}},
		{"unsupported type", "t", []Column{{Name: "a", Type: "json"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.CreateTable(ctx, tt.table, tt.columns); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestInsertRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "energy", []Column{
		{Name: "date", Type: "date"},
		{Name: "score", Type: "integer"},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	id, err := s.InsertRow(ctx, "energy", map[string]any{
		"date":  "2026-08-30",
		"score": 7,
	})
	if err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first row id: got %d, want 1", id)
	}

	// query immediately after insert returns that row
	result, err := s.QueryRows(ctx, "energy", nil, "", false, 0)
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row["date"] != "2026-08-30" {
		t.Errorf("date: got %v", row["date"])
	}
	if row["score"] != int64(7) {
		t.Errorf("score: got %v (%T)", row["score"], row["score"])
	}
	if row["created_at"] == nil || row["created_at"] == "" {
		t.Errorf("created_at should be filled automatically, got %v", row["created_at"])
	}
}

func TestInsertRowUnknownColumn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "energy", []Column{{Name: "score", Type: "integer"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := s.InsertRow(ctx, "energy", map[string]any{"mood": "fine"})
	if !errors.Is(err, ErrNoColumn) {
		t.Errorf("expected ErrNoColumn, got: %v", err)
	}
}

func TestInsertRowMissingTable(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertRow(context.Background(), "nope", map[string]any{"a": 1})
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable, got: %v", err)
	}
}

func TestInsertRowReservedColumn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "t", []Column{{Name: "a", Type: "text"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := s.InsertRow(ctx, "t", map[string]any{"id": 99}); err == nil {
		t.Errorf("setting id explicitly should fail")
	}
}

func TestQueryRowsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "energy", []Column{
		{Name: "date", Type: "date"},
		{Name: "score", Type: "integer"},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i, score := range []int{3, 7, 9} {
		if _, err := s.InsertRow(ctx, "energy", map[string]any{
			"date":  []string{"2026-08-28", "2026-08-29", "2026-08-30"}[i],
			"score": score,
		}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	tests := []struct {
		name       string
		conditions []Condition
		orderBy    string
		descending bool
		limit      int
		wantScores []int64
	}{
		{
			name:       "equality",
			conditions: []Condition{{Column: "score", Op: "=", Value: 7}},
			wantScores: []int64{7},
		},
		{
			name:       "range",
			conditions: []Condition{{Column: "score", Op: ">=", Value: 7}},
			orderBy:    "score",
			wantScores: []int64{7, 9},
		},
		{
			name: "conjunction",
			conditions: []Condition{
				{Column: "score", Op: ">", Value: 3},
				{Column: "date", Op: "<", Value: "2026-08-30"},
			},
			wantScores: []int64{7},
		},
		{
			name:       "like",
			conditions: []Condition{{Column: "date", Op: "like", Value: "2026-08-%"}},
			orderBy:    "score",
			descending: true,
			wantScores: []int64{9, 7, 3},
		},
		{
			name:       "limit",
			orderBy:    "score",
			limit:      2,
			wantScores: []int64{3, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.QueryRows(ctx, "energy", tt.conditions, tt.orderBy, tt.descending, tt.limit)
			if err != nil {
				t.Fatalf("QueryRows failed: %v", err)
			}
			if len(result.Rows) != len(tt.wantScores) {
				t.Fatalf("rows: got %d, want %d", len(result.Rows), len(tt.wantScores))
			}
			for i, want := range tt.wantScores {
				if got := result.Rows[i]["score"]; got != want {
					t.Errorf("row %d score: got %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestQueryRowsErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "t", []Column{{Name: "a", Type: "text"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := s.QueryRows(ctx, "missing", nil, "", false, 0); !errors.Is(err, ErrNoTable) {
		t.Errorf("unknown table: expected ErrNoTable, got %v", err)
	}

	if _, err := s.QueryRows(ctx, "t", []Condition{{Column: "nope", Op: "=", Value: 1}}, "", false, 0); !errors.Is(err, ErrNoColumn) {
		t.Errorf("unknown filter column: expected ErrNoColumn, got %v", err)
	}

	if _, err := s.QueryRows(ctx, "t", []Condition{{Column: "a", Op: "between", Value: 1}}, "", false, 0); err == nil {
		t.Errorf("unsupported operator should fail")
	}

	if _, err := s.QueryRows(ctx, "t", nil, "nope", false, 0); !errors.Is(err, ErrNoColumn) {
		t.Errorf("unknown order_by: expected ErrNoColumn, got %v", err)
	}
}

func TestListTablesSamples(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "journal", []Column{{Name: "note", Type: "text"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	long := strings.Repeat("x", 80)
	for _, note := range []string{"first", "second", long} {
		if _, err := s.InsertRow(ctx, "journal", map[string]any{"note": note}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	infos, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 table, got %d", len(infos))
	}

	info := infos[0]
	if info.RowCount != 3 {
		t.Errorf("row count: got %d, want 3", info.RowCount)
	}
	if len(info.Samples) != 2 {
		t.Fatalf("samples: got %d, want 2", len(info.Samples))
	}

	// newest first, long values truncated to 50 runes plus ellipsis
	got, ok := info.Samples[0]["note"].(string)
	if !ok {
		t.Fatalf("sample note missing: %v", info.Samples[0])
	}
	if len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Errorf("long sample not truncated: %q (len %d)", got, len(got))
	}
}

func TestListTablesCacheInvalidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ListTables(ctx); err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}

	// the write must invalidate the cached empty snapshot
	if err := s.CreateTable(ctx, "habits", []Column{{Name: "name", Type: "text"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	infos, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "habits" {
		t.Errorf("cache not invalidated, got %v", infos)
	}

	if _, err := s.InsertRow(ctx, "habits", map[string]any{"name": "run"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	infos, err = s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if infos[0].RowCount != 1 {
		t.Errorf("row count after insert: got %d, want 1", infos[0].RowCount)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"text", "TEXT", true},
		{"DATE", "TEXT", true},
		{"integer", "INTEGER", true},
		{"bool", "INTEGER", true},
		{"float", "REAL", true},
		{"blob", "BLOB", true},
		{"varchar(20)", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := NormalizeType(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("NormalizeType(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("NormalizeType(%q) should fail", tt.in)
		}
	}
}
