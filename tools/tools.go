// Package tools declares the database operations exposed to the model and
// dispatches the model's tool calls to the store.
package tools

import (
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const (
	ToolCreateTable = "create_table"
	ToolInsertRow   = "insert_row"
	ToolQueryRows   = "query_rows"
	ToolListTables  = "list_tables"
)

// All returns the fixed menu of callable database operations, as MCP tool
// definitions. Providers convert these to their own tool schema format.
func All() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name: ToolCreateTable,
			Description: "Create a new tracking table with the given columns. " +
				"Every table automatically gets an 'id' primary key and a 'created_at' timestamp, do not declare those. " +
				"Creating an existing table with the same columns is a no-op.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Table name, e.g. 'energy' or 'journal'",
					},
					"columns": map[string]any{
						"type":        "array",
						"description": "Ordered column definitions",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"name": map[string]any{
									"type":        "string",
									"description": "Column name",
								},
								"type": map[string]any{
									"type":        "string",
									"enum":        []any{"text", "integer", "real", "date", "boolean"},
									"description": "Column type. Use 'date' for ISO dates, 'text' for notes and tags.",
								},
							},
							"required": []any{"name", "type"},
						},
					},
				},
				Required: []string{"name", "columns"},
			},
		},
		{
			Name: ToolInsertRow,
			Description: "Insert one row into an existing table. Values map column names to scalar values. " +
				"The 'id' and 'created_at' columns are filled in automatically.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"table": map[string]any{
						"type":        "string",
						"description": "Target table name",
					},
					"values": map[string]any{
						"type":        "object",
						"description": "Column name to value mapping",
					},
				},
				Required: []string{"table", "values"},
			},
		},
		{
			Name: ToolQueryRows,
			Description: "Query rows from a table with an optional filter. " +
				"All filter conditions must hold (AND). Use this to answer questions about stored data.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"table": map[string]any{
						"type":        "string",
						"description": "Table to query",
					},
					"where": map[string]any{
						"type":        "array",
						"description": "Filter conditions, combined with AND",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"column": map[string]any{"type": "string"},
								"op": map[string]any{
									"type": "string",
									"enum": []any{"=", "!=", "<", "<=", ">", ">=", "like"},
								},
								"value": map[string]any{
									"description": "Comparison value",
								},
							},
							"required": []any{"column", "op", "value"},
						},
					},
					"order_by": map[string]any{
						"type":        "string",
						"description": "Column to sort by",
					},
					"descending": map[string]any{
						"type":        "boolean",
						"description": "Sort newest/highest first",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of rows to return",
					},
				},
				Required: []string{"table"},
			},
		},
		{
			Name: ToolListTables,
			Description: "List all existing tables with their columns, row counts and recent sample rows. " +
				"Use this first to decide whether to reuse an existing table or create a new one.",
			InputSchema: mcptypes.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
	}
}
