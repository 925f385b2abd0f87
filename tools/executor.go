package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dbchat/model"
	"dbchat/store"
)

// Executor routes tool calls from the model to the table store and renders
// the outcome as text the model can read. Storage errors are part of the
// conversation, not process failures: they come back as error text so the
// model can correct itself and retry.
type Executor struct {
	store *store.Store
}

func NewExecutor(s *store.Store) *Executor {
	return &Executor{store: s}
}

// Execute runs one tool call and returns the result text.
func (e *Executor) Execute(ctx context.Context, call model.ToolCall) string {
	var result string
	var err error

	switch call.Name {
	case ToolCreateTable:
		result, err = e.createTable(ctx, call.Arguments)
	case ToolInsertRow:
		result, err = e.insertRow(ctx, call.Arguments)
	case ToolQueryRows:
		result, err = e.queryRows(ctx, call.Arguments)
	case ToolListTables:
		result, err = e.listTables(ctx)
	default:
		err = fmt.Errorf("unknown tool: %s", call.Name)
	}

	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	return result
}

func (e *Executor) createTable(ctx context.Context, args map[string]any) (string, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return "", err
	}

	rawCols, ok := args["columns"].([]any)
	if !ok {
		return "", fmt.Errorf("create_table: 'columns' must be an array")
	}

	columns := make([]store.Column, 0, len(rawCols))
	for _, raw := range rawCols {
		colMap, ok := raw.(map[string]any)
		if !ok {
			return "", fmt.Errorf("create_table: each column must be an object with 'name' and 'type'")
		}
		colName, err := stringArg(colMap, "name")
		if err != nil {
			return "", fmt.Errorf("create_table: %w", err)
		}
		colType, err := stringArg(colMap, "type")
		if err != nil {
			return "", fmt.Errorf("create_table: %w", err)
		}
		columns = append(columns, store.Column{Name: colName, Type: colType})
	}

	if err := e.store.CreateTable(ctx, name, columns); err != nil {
		return "", err
	}

	specs := make([]string, len(columns))
	for i, col := range columns {
		specs[i] = fmt.Sprintf("%s %s", col.Name, strings.ToUpper(col.Type))
	}
	return fmt.Sprintf("Table %q is ready (columns: %s).", name, strings.Join(specs, ", ")), nil
}

func (e *Executor) insertRow(ctx context.Context, args map[string]any) (string, error) {
	table, err := stringArg(args, "table")
	if err != nil {
		return "", err
	}

	values, ok := args["values"].(map[string]any)
	if !ok || len(values) == 0 {
		return "", fmt.Errorf("insert_row: 'values' must be a non-empty object")
	}

	id, err := e.store.InsertRow(ctx, table, values)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Inserted row %d into %q: %s", id, table, compactJSON(values)), nil
}

func (e *Executor) queryRows(ctx context.Context, args map[string]any) (string, error) {
	table, err := stringArg(args, "table")
	if err != nil {
		return "", err
	}

	var conditions []store.Condition
	if rawWhere, ok := args["where"].([]any); ok {
		for _, raw := range rawWhere {
			condMap, ok := raw.(map[string]any)
			if !ok {
				return "", fmt.Errorf("query_rows: each condition must be an object")
			}
			column, err := stringArg(condMap, "column")
			if err != nil {
				return "", fmt.Errorf("query_rows: %w", err)
			}
			op, err := stringArg(condMap, "op")
			if err != nil {
				return "", fmt.Errorf("query_rows: %w", err)
			}
			conditions = append(conditions, store.Condition{
				Column: column,
				Op:     op,
				Value:  condMap["value"],
			})
		}
	}

	orderBy, _ := args["order_by"].(string)
	descending, _ := args["descending"].(bool)
	limit := intArg(args, "limit")

	result, err := e.store.QueryRows(ctx, table, conditions, orderBy, descending, limit)
	if err != nil {
		return "", err
	}

	return renderRows(table, result), nil
}

func (e *Executor) listTables(ctx context.Context) (string, error) {
	infos, err := e.store.ListTables(ctx)
	if err != nil {
		return "", err
	}

	if len(infos) == 0 {
		return "Database is empty. No tables exist yet.", nil
	}

	blocks := make([]string, 0, len(infos))
	for _, info := range infos {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%d rows)\n", info.Name, info.RowCount)
		for _, col := range info.Columns {
			fmt.Fprintf(&sb, "  - %s (%s)\n", col.Name, col.Type)
		}
		for _, sample := range info.Samples {
			fmt.Fprintf(&sb, "  recent: %s\n", compactJSON(sample))
		}
		blocks = append(blocks, strings.TrimRight(sb.String(), "\n"))
	}

	return strings.Join(blocks, "\n\n"), nil
}

// renderRows formats a query result for the model. Large results are cut
// down so they don't flood the context window.
func renderRows(table string, result *store.QueryResult) string {
	if len(result.Rows) == 0 {
		return fmt.Sprintf("No rows found in %q.", table)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d row(s) from %q:\n", len(result.Rows), table)

	shown := result.Rows
	if len(shown) > 20 {
		shown = shown[:10]
	}
	for _, row := range shown {
		fmt.Fprintf(&sb, "- %s\n", compactJSON(row))
	}
	if len(result.Rows) > 20 {
		fmt.Fprintf(&sb, "... and %d more rows\n", len(result.Rows)-10)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func stringArg(args map[string]any, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("missing or invalid %q argument", key)
	}
	return strings.TrimSpace(value), nil
}

// intArg reads an integer argument. JSON numbers decode as float64.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

// compactJSON renders a value as single-line JSON. encoding/json sorts map
// keys, so the output is deterministic.
func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
