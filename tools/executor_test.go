package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dbchat/model"
	"dbchat/store"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewExecutor(s)
}

// call builds a tool call the way decoded JSON arguments arrive: numbers as
// float64, objects as map[string]any, arrays as []any.
func call(name string, args map[string]any) model.ToolCall {
	return model.ToolCall{Name: name, Arguments: args}
}

func TestExecuteCreateTable(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), call(ToolCreateTable, map[string]any{
		"name": "energy",
		"columns": []any{
			map[string]any{"name": "date", "type": "date"},
			map[string]any{"name": "score", "type": "integer"},
		},
	}))

	if strings.HasPrefix(result, "ERROR:") {
		t.Fatalf("create_table failed: %s", result)
	}
	if !strings.Contains(result, `"energy"`) {
		t.Errorf("result should name the table: %s", result)
	}
}

func TestExecuteCreateTableBadArgs(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing name", map[string]any{"columns": []any{}}},
		{"columns not array", map[string]any{"name": "t", "columns": "nope"}},
		{"column not object", map[string]any{"name": "t", "columns": []any{"nope"}}},
		{"column missing type", map[string]any{"name": "t", "columns": []any{map[string]any{"name": "a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Execute(ctx, call(ToolCreateTable, tt.args))
			if !strings.HasPrefix(result, "ERROR:") {
				t.Errorf("expected ERROR result, got: %s", result)
			}
		})
	}
}

func TestExecuteInsertAndQuery(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	e.Execute(ctx, call(ToolCreateTable, map[string]any{
		"name": "energy",
		"columns": []any{
			map[string]any{"name": "date", "type": "date"},
			map[string]any{"name": "score", "type": "integer"},
		},
	}))

	result := e.Execute(ctx, call(ToolInsertRow, map[string]any{
		"table":  "energy",
		"values": map[string]any{"date": "2026-08-30", "score": float64(7)},
	}))
	if !strings.Contains(result, "Inserted row 1") {
		t.Fatalf("unexpected insert result: %s", result)
	}

	result = e.Execute(ctx, call(ToolQueryRows, map[string]any{
		"table": "energy",
		"where": []any{
			map[string]any{"column": "score", "op": ">=", "value": float64(5)},
		},
		"order_by":   "date",
		"descending": true,
		"limit":      float64(10),
	}))
	if !strings.Contains(result, "1 row(s)") || !strings.Contains(result, `"score":7`) {
		t.Errorf("unexpected query result: %s", result)
	}
}

func TestExecuteInsertUnknownColumn(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	e.Execute(ctx, call(ToolCreateTable, map[string]any{
		"name":    "energy",
		"columns": []any{map[string]any{"name": "score", "type": "integer"}},
	}))

	result := e.Execute(ctx, call(ToolInsertRow, map[string]any{
		"table":  "energy",
		"values": map[string]any{"mood": "fine"},
	}))
	if !strings.HasPrefix(result, "ERROR:") || !strings.Contains(result, "column") {
		t.Errorf("expected column error, got: %s", result)
	}
}

func TestExecuteListTables(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	result := e.Execute(ctx, call(ToolListTables, nil))
	if result != "Database is empty. No tables exist yet." {
		t.Errorf("empty database message: got %q", result)
	}

	e.Execute(ctx, call(ToolCreateTable, map[string]any{
		"name":    "habits",
		"columns": []any{map[string]any{"name": "name", "type": "text"}},
	}))
	e.Execute(ctx, call(ToolInsertRow, map[string]any{
		"table":  "habits",
		"values": map[string]any{"name": "run"},
	}))

	result = e.Execute(ctx, call(ToolListTables, nil))
	for _, want := range []string{"habits (1 rows)", "id (INTEGER)", "created_at (TEXT)", "name (TEXT)", "recent:"} {
		if !strings.Contains(result, want) {
			t.Errorf("list_tables output missing %q:\n%s", want, result)
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), call("drop_database", nil))
	if !strings.HasPrefix(result, "ERROR: unknown tool") {
		t.Errorf("unexpected result: %s", result)
	}
}

func TestRenderRowsTruncation(t *testing.T) {
	result := &store.QueryResult{Columns: []string{"n"}}
	for i := 0; i < 25; i++ {
		result.Rows = append(result.Rows, map[string]any{"n": i})
	}

	out := renderRows("t", result)
	if !strings.Contains(out, "25 row(s)") {
		t.Errorf("missing total count: %s", out)
	}
	if !strings.Contains(out, "... and 15 more rows") {
		t.Errorf("missing truncation marker: %s", out)
	}
	if got := strings.Count(out, "- {"); got != 10 {
		t.Errorf("shown rows: got %d, want 10", got)
	}
}

func TestToolSchemas(t *testing.T) {
	all := All()
	if len(all) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(all))
	}

	names := make(map[string]bool)
	for _, tool := range all {
		names[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if tool.InputSchema.Type != "object" {
			t.Errorf("tool %s schema type: got %q", tool.Name, tool.InputSchema.Type)
		}
	}

	for _, want := range []string{ToolCreateTable, ToolInsertRow, ToolQueryRows, ToolListTables} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}
