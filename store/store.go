// Package store implements the dynamic table store backing the assistant.
//
// Tables are created at runtime from model-issued tool calls, so the store
// validates every identifier and declared type itself instead of trusting
// the caller. All SQL is built from quoted identifiers and bound parameters.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	_ "modernc.org/sqlite" // register driver
)

var (
	// ErrNoTable is returned when an operation references a table that
	// does not exist.
	ErrNoTable = errors.New("table does not exist")

	// ErrNoColumn is returned when a row or filter references a column
	// that is not part of the table.
	ErrNoColumn = errors.New("column does not exist")

	// ErrSchemaConflict is returned when a table is created again with a
	// different column set. A table name, once created, maps to one fixed
	// column set for its lifetime.
	ErrSchemaConflict = errors.New("table already exists with a different schema")
)

// Column is a single column of a dynamically created table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableInfo describes one table: its columns, row count and a couple of
// recent sample rows so the model can orient itself before reusing or
// creating tables.
type TableInfo struct {
	Name     string           `json:"name"`
	Columns  []Column         `json:"columns"`
	RowCount int64            `json:"row_count"`
	Samples  []map[string]any `json:"samples,omitempty"`
}

// Condition is one conjunct of a row filter.
type Condition struct {
	Column string
	Op     string
	Value  any
}

// QueryResult holds rows in column order plus as name→value maps.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

// Store is a single-process accessor over one SQLite database file.
type Store struct {
	db    *sql.DB
	cache *gocache.Cache
}

const schemaCacheKey = "schema"

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer, single connection. The file is owned by this process.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	if _, err := sqldb.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{
		db:    sqldb,
		cache: gocache.New(30*time.Second, time.Minute),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether name is usable as a table or column name.
func ValidIdent(name string) bool {
	return identRe.MatchString(name) && !strings.HasPrefix(strings.ToLower(name), "sqlite_")
}

// quoteIdent quotes an identifier for SQLite. Enough for identifiers that
// already passed ValidIdent, but applied everywhere anyway.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// declaredTypes maps accepted declared types to their SQLite storage type.
// Dates are stored as TEXT in ISO format.
var declaredTypes = map[string]string{
	"TEXT":     "TEXT",
	"STRING":   "TEXT",
	"DATE":     "TEXT",
	"DATETIME": "TEXT",
	"TIME":     "TEXT",
	"INTEGER":  "INTEGER",
	"INT":      "INTEGER",
	"BOOLEAN":  "INTEGER",
	"BOOL":     "INTEGER",
	"REAL":     "REAL",
	"FLOAT":    "REAL",
	"DOUBLE":   "REAL",
	"NUMERIC":  "NUMERIC",
	"BLOB":     "BLOB",
}

// NormalizeType maps a declared column type to a SQLite storage type.
func NormalizeType(declared string) (string, error) {
	t, ok := declaredTypes[strings.ToUpper(strings.TrimSpace(declared))]
	if !ok {
		return "", fmt.Errorf("unsupported column type %q", declared)
	}
	return t, nil
}

// reservedColumns are added to every table and may not be declared by the
// caller: id INTEGER PRIMARY KEY AUTOINCREMENT and created_at.
var reservedColumns = map[string]bool{
	"id":         true,
	"created_at": true,
}

// CreateTable creates a table with the given user columns. Every table also
// gets an autoincrement id and a created_at timestamp column.
//
// Creating the same table again with the same columns is a no-op; creating
// it with different columns fails with ErrSchemaConflict.
func (s *Store) CreateTable(ctx context.Context, name string, columns []Column) error {
	if !ValidIdent(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %q needs at least one column", name)
	}

	normalized := make([]Column, len(columns))
	seen := make(map[string]bool, len(columns))
	for i, col := range columns {
		if !ValidIdent(col.Name) {
			return fmt.Errorf("invalid column name %q", col.Name)
		}
		lower := strings.ToLower(col.Name)
		if reservedColumns[lower] {
			return fmt.Errorf("column name %q is reserved", col.Name)
		}
		if seen[lower] {
			return fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[lower] = true

		typ, err := NormalizeType(col.Type)
		if err != nil {
			return err
		}
		normalized[i] = Column{Name: col.Name, Type: typ}
	}

	existing, err := s.tableColumns(ctx, name)
	if err != nil && !errors.Is(err, ErrNoTable) {
		return err
	}
	if err == nil {
		if sameUserColumns(existing, normalized) {
			return nil // idempotent re-create
		}
		return fmt.Errorf("%w: %q", ErrSchemaConflict, name)
	}

	defs := []string{
		"id INTEGER PRIMARY KEY AUTOINCREMENT",
		"created_at TEXT DEFAULT CURRENT_TIMESTAMP",
	}
	for _, col := range normalized {
		defs = append(defs, fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %q: %w", name, err)
	}

	s.cache.Delete(schemaCacheKey)
	return nil
}

// InsertRow inserts one row of column→value pairs into table. Values for id
// and created_at are supplied by the engine and may not be set here.
// Returns the new row's id.
func (s *Store) InsertRow(ctx context.Context, table string, values map[string]any) (int64, error) {
	if !ValidIdent(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("no values to insert into %q", table)
	}

	cols, err := s.tableColumns(ctx, table)
	if err != nil {
		return 0, err
	}

	var names []string
	var placeholders []string
	var args []any
	for name, value := range values {
		actual, ok := matchColumn(cols, name)
		if !ok {
			return 0, fmt.Errorf("%w: %q in table %q", ErrNoColumn, name, table)
		}
		if reservedColumns[strings.ToLower(actual)] {
			return 0, fmt.Errorf("column %q is set automatically", actual)
		}
		names = append(names, quoteIdent(actual))
		placeholders = append(placeholders, "?")
		args = append(args, value)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %q: %w", table, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row id: %w", err)
	}

	s.cache.Delete(schemaCacheKey)
	return id, nil
}

// filterOps maps accepted filter operators to their SQL spelling.
var filterOps = map[string]string{
	"=":    "=",
	"==":   "=",
	"!=":   "!=",
	"<>":   "!=",
	"<":    "<",
	"<=":   "<=",
	">":    ">",
	">=":   ">=",
	"like": "LIKE",
}

// QueryRows returns rows of table matching every condition. orderBy may be
// empty; limit <= 0 means no limit.
func (s *Store) QueryRows(ctx context.Context, table string, conditions []Condition, orderBy string, descending bool, limit int) (*QueryResult, error) {
	if !ValidIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	cols, err := s.tableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT * FROM %s", quoteIdent(table))

	if len(conditions) > 0 {
		clauses := make([]string, 0, len(conditions))
		for _, cond := range conditions {
			actual, ok := matchColumn(cols, cond.Column)
			if !ok {
				return nil, fmt.Errorf("%w: %q in table %q", ErrNoColumn, cond.Column, table)
			}
			op, ok := filterOps[strings.ToLower(strings.TrimSpace(cond.Op))]
			if !ok {
				return nil, fmt.Errorf("unsupported filter operator %q", cond.Op)
			}
			clauses = append(clauses, fmt.Sprintf("%s %s ?", quoteIdent(actual), op))
			args = append(args, cond.Value)
		}
		sb.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}

	if orderBy != "" {
		actual, ok := matchColumn(cols, orderBy)
		if !ok {
			return nil, fmt.Errorf("%w: order_by %q in table %q", ErrNoColumn, orderBy, table)
		}
		fmt.Fprintf(&sb, " ORDER BY %s", quoteIdent(actual))
		if descending {
			sb.WriteString(" DESC")
		}
	}

	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	return s.query(ctx, sb.String(), args...)
}

// ListTables returns every user table with columns, row count and up to two
// recent sample rows. The result is cached briefly; any write invalidates it.
func (s *Store) ListTables(ctx context.Context) ([]TableInfo, error) {
	if cached, ok := s.cache.Get(schemaCacheKey); ok {
		return cached.([]TableInfo), nil
	}

	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY lower(name);
	`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		info, err := s.describeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	s.cache.SetDefault(schemaCacheKey, infos)
	return infos, nil
}

func (s *Store) describeTable(ctx context.Context, name string) (TableInfo, error) {
	cols, err := s.tableColumns(ctx, name)
	if err != nil {
		return TableInfo{}, err
	}

	info := TableInfo{Name: name, Columns: cols}

	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name)))
	if err := row.Scan(&info.RowCount); err != nil {
		return TableInfo{}, fmt.Errorf("failed to count rows of %q: %w", name, err)
	}

	samples, err := s.query(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY rowid DESC LIMIT 2", quoteIdent(name)))
	if err != nil {
		return TableInfo{}, err
	}
	for _, sample := range samples.Rows {
		info.Samples = append(info.Samples, truncateValues(sample, 50))
	}

	return info, nil
}

// tableColumns returns the columns of table via PRAGMA table_info, or
// ErrNoTable if the table does not exist.
func (s *Store) tableColumns(ctx context.Context, table string) ([]Column, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s);", quoteIdent(table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: strings.ToUpper(ctype)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTable, table)
	}
	return cols, nil
}

// query runs an arbitrary SELECT and scans every row into a name→value map.
func (s *Store) query(ctx context.Context, stmt string, args ...any) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Columns: colNames}
	for rows.Next() {
		raw := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rowMap := make(map[string]any, len(colNames))
		for i, name := range colNames {
			if b, ok := raw[i].([]byte); ok {
				rowMap[name] = string(b)
			} else {
				rowMap[name] = raw[i]
			}
		}
		result.Rows = append(result.Rows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// matchColumn resolves a caller-supplied column name against the actual
// columns, case-insensitively. Returns the actual column name.
func matchColumn(cols []Column, name string) (string, bool) {
	for _, col := range cols {
		if strings.EqualFold(col.Name, name) {
			return col.Name, true
		}
	}
	return "", false
}

// userColumns strips the engine-managed id and created_at columns.
func userColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, col := range cols {
		if reservedColumns[strings.ToLower(col.Name)] {
			continue
		}
		out = append(out, col)
	}
	return out
}

func sameUserColumns(existing, wanted []Column) bool {
	existing = userColumns(existing)
	if len(existing) != len(wanted) {
		return false
	}
	for i := range existing {
		if !strings.EqualFold(existing[i].Name, wanted[i].Name) {
			return false
		}
		if !strings.EqualFold(existing[i].Type, wanted[i].Type) {
			return false
		}
	}
	return true
}

// truncateValues shortens long string values for schema sample display.
func truncateValues(row map[string]any, max int) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if s, ok := v.(string); ok {
			runes := []rune(s)
			if len(runes) > max {
				out[k] = string(runes[:max]) + "..."
				continue
			}
		}
		out[k] = v
	}
	return out
}
