package main

import (
	"strings"

	"github.com/xwb1989/sqlparser"
)

// Filter is the query's single supported WHERE predicate: an equality test
// against a string-literal threshold (quotes already stripped).
type Filter struct {
	Column    string
	Operator  string
	Threshold string
}

// Query is the abstract object the executor consumes, produced by parsing a
// restricted single-table SELECT.
type Query struct {
	TableName  string
	IsCount    bool
	Columns    []string // ignored when IsCount is true
	Filter     *Filter  // nil if the SELECT has no WHERE clause
}

// normalizeSQLiteToMySQL reshapes SQLite DDL/DML just enough for the
// MySQL-dialect sqlparser to accept it: SQLite's double-quoted identifiers
// and "primary key autoincrement" phrasing have no MySQL equivalent token
// sequence sqlparser recognizes directly.
func normalizeSQLiteToMySQL(sql string) string {
	normalized := strings.ReplaceAll(sql, `"`, "")
	normalized = strings.ReplaceAll(normalized, "primary key autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "PRIMARY KEY AUTOINCREMENT", "AUTO_INCREMENT PRIMARY KEY")
	return strings.TrimSpace(normalized)
}

// ParseSelect tokenizes a restricted single-table SELECT into a Query,
// rejecting anything the engine's non-goals exclude (joins, ORDER BY,
// GROUP BY, LIMIT, subqueries, multiple WHERE predicates, operators other
// than '=').
func ParseSelect(sql string) (*Query, error) {
	stmt, err := sqlparser.Parse(normalizeSQLiteToMySQL(sql))
	if err != nil {
		return nil, queryErrorf("ParseSelect", map[string]interface{}{"sql": sql}, "failed to parse SQL: %v", err)
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, queryErrorf("ParseSelect", map[string]interface{}{"sql": sql}, "only SELECT statements are supported, got %T", stmt)
	}
	if len(sel.GroupBy) > 0 || len(sel.OrderBy) > 0 || !sel.Limit.IsEmpty() {
		return nil, queryErrorf("ParseSelect", nil, "GROUP BY, ORDER BY and LIMIT are not supported")
	}
	if len(sel.From) != 1 {
		return nil, queryErrorf("ParseSelect", nil, "exactly one table is required in FROM")
	}

	tableName, err := extractTableName(sel)
	if err != nil {
		return nil, err
	}

	query := &Query{TableName: tableName}

	for _, expr := range sel.SelectExprs {
		switch e := expr.(type) {
		case *sqlparser.StarExpr:
			return nil, queryErrorf("ParseSelect", nil, "SELECT * is not supported")
		case *sqlparser.AliasedExpr:
			switch inner := e.Expr.(type) {
			case *sqlparser.FuncExpr:
				if strings.ToLower(inner.Name.String()) != "count" {
					return nil, queryErrorf("ParseSelect", nil, "unsupported function: %s", inner.Name.String())
				}
				query.IsCount = true
			case *sqlparser.ColName:
				query.Columns = append(query.Columns, inner.Name.String())
			default:
				return nil, queryErrorf("ParseSelect", nil, "unsupported select expression: %T", inner)
			}
		default:
			return nil, queryErrorf("ParseSelect", nil, "unsupported select expression: %T", expr)
		}
	}

	if query.IsCount && len(query.Columns) > 0 {
		return nil, queryErrorf("ParseSelect", nil, "COUNT(*) cannot be combined with a column projection")
	}

	if sel.Where != nil {
		filter, err := extractFilter(sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		query.Filter = filter
	}

	return query, nil
}

func extractTableName(sel *sqlparser.Select) (string, error) {
	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", queryErrorf("ParseSelect", nil, "unsupported FROM expression: %T", sel.From[0])
	}
	tableName, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return "", queryErrorf("ParseSelect", nil, "unsupported FROM expression: %T", aliased.Expr)
	}
	return tableName.Name.String(), nil
}

// extractFilter supports at most one top-level equality comparison. Any
// other operator or any boolean combinator (AND/OR/parens) is rejected,
// matching the single-equality-predicate restriction.
func extractFilter(expr sqlparser.Expr) (*Filter, error) {
	comp, ok := expr.(*sqlparser.ComparisonExpr)
	if !ok {
		return nil, queryErrorf("ParseSelect", nil, "only a single equality WHERE predicate is supported")
	}
	if comp.Operator != sqlparser.EqualStr {
		return nil, queryErrorf("ParseSelect", nil, "operator not yet supported: %s", comp.Operator)
	}
	colName, ok := comp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, queryErrorf("ParseSelect", nil, "left side of WHERE must be a column name")
	}
	literal, ok := comp.Right.(*sqlparser.SQLVal)
	if !ok {
		return nil, queryErrorf("ParseSelect", nil, "right side of WHERE must be a literal")
	}
	return &Filter{
		Column:    colName.Name.String(),
		Operator:  comp.Operator,
		Threshold: string(literal.Val),
	}, nil
}

// ParseCreateTableColumns extracts the ordered column-name list from a
// CREATE TABLE statement, plus the position of the column that is an
// INTEGER PRIMARY KEY rowid alias (-1 if there is none).
//
// Column-name extraction goes through sqlparser's DDL parse (the reference
// implementation's approach). Rowid-alias detection is done with a plain
// substring scan over the raw SQL instead of sqlparser's column-key
// metadata: that metadata type is unexported by the vendored parser
// package, and the raw-text scan also covers a bare "INTEGER PRIMARY KEY"
// column with no AUTOINCREMENT keyword, which the parser's own
// Autoincrement flag would miss.
func ParseCreateTableColumns(sql string) ([]string, int, error) {
	stmt, err := sqlparser.Parse(normalizeSQLiteToMySQL(sql))
	if err != nil {
		return nil, -1, formatErrorf("ParseCreateTableColumns", map[string]interface{}{"sql": sql}, "failed to parse CREATE TABLE: %v", err)
	}
	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return nil, -1, formatErrorf("ParseCreateTableColumns", map[string]interface{}{"sql": sql}, "expected a CREATE TABLE statement")
	}

	columns := make([]string, len(ddl.TableSpec.Columns))
	for i, col := range ddl.TableSpec.Columns {
		columns[i] = col.Name.String()
	}

	rowIDIndex := findIntegerPrimaryKeyColumn(sql, columns)
	return columns, rowIDIndex, nil
}

// findIntegerPrimaryKeyColumn scans the raw column-definition text for an
// "integer primary key" column and returns its position, or -1 if none.
func findIntegerPrimaryKeyColumn(sql string, columns []string) int {
	open := strings.Index(sql, "(")
	closeParen := strings.LastIndex(sql, ")")
	if open == -1 || closeParen == -1 || closeParen <= open {
		return -1
	}
	body := sql[open+1 : closeParen]
	for _, def := range strings.Split(body, ",") {
		lower := strings.ToLower(def)
		if !strings.Contains(lower, "integer") || !strings.Contains(lower, "primary key") {
			continue
		}
		fields := strings.Fields(strings.TrimSpace(def))
		if len(fields) == 0 {
			continue
		}
		name := strings.Trim(fields[0], `"`+"`")
		for i, c := range columns {
			if strings.EqualFold(c, name) {
				return i
			}
		}
	}
	return -1
}

