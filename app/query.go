package main

import (
	"fmt"
	"strings"
)

// Executor resolves a parsed Query against a catalog and an open database,
// choosing an index-assisted scan over a full table scan when possible.
type Executor struct {
	reader  *ByteReader
	pageSize int
	catalog *Catalog
}

func NewExecutor(reader *ByteReader, pageSize int, catalog *Catalog) *Executor {
	return &Executor{reader: reader, pageSize: pageSize, catalog: catalog}
}

// Execute runs q and returns one formatted output line per result row
// (or a single line holding the COUNT(*) result).
func (ex *Executor) Execute(q *Query) ([]string, error) {
	table, ok := ex.catalog.Table(q.TableName)
	if !ok {
		return nil, NewDatabaseError("Execute", ErrTableNotFound, map[string]interface{}{"table": q.TableName})
	}

	columnNames, rowIDIndex, err := ParseCreateTableColumns(table.SQL)
	if err != nil {
		return nil, err
	}
	schema := buildSchema(columnNames, rowIDIndex)

	if q.IsCount {
		count, err := CountTableRows(ex.reader, ex.pageSize, table.RootPage)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%d", count)}, nil
	}

	for _, col := range q.Columns {
		if _, ok := schema.IndexOf(col); !ok {
			return nil, NewDatabaseError("Execute", ErrColumnNotFound, map[string]interface{}{"column": col, "table": q.TableName})
		}
	}

	cells, err := ex.scanCells(q, table)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, cell := range cells {
		rowid := cell.Rowid
		values, err := DecodeRecord(ex.reader, cell.RecordOffset, &rowid)
		if err != nil {
			return nil, err
		}
		row := &Row{Schema: schema, Values: values}

		if q.Filter != nil {
			matched, err := applyFilter(q.Filter, row, schema)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}

		lines = append(lines, projectRow(row, q.Columns))
	}

	return lines, nil
}

// scanCells decides between an index-assisted scan and a full table scan:
// a WHERE predicate whose column has an idx_<table>_<column> index prunes
// the table walk to exactly the rowids the index reports.
func (ex *Executor) scanCells(q *Query, table *ObjectInfo) ([]LeafTableCell, error) {
	if q.Filter == nil {
		return WalkTable(ex.reader, ex.pageSize, table.RootPage, nil)
	}

	idx, ok := ex.catalog.IndexForColumn(q.TableName, q.Filter.Column)
	if !ok {
		return WalkTable(ex.reader, ex.pageSize, table.RootPage, nil)
	}

	rowids, err := WalkIndex(ex.reader, ex.pageSize, idx.RootPage, TextValue(q.Filter.Threshold))
	if err != nil {
		return nil, err
	}
	if len(rowids) == 0 {
		return nil, nil
	}
	return WalkTable(ex.reader, ex.pageSize, table.RootPage, rowids)
}

func buildSchema(columnNames []string, rowIDIndex int) *Schema {
	columns := make([]Column, len(columnNames))
	for i, name := range columnNames {
		columns[i] = Column{Name: name, Index: i, IsRowIDAlias: i == rowIDIndex}
	}
	return NewSchema(columns)
}

// applyFilter implements the engine's only predicate shape: a case-folded,
// whitespace-trimmed equality test. A Null or empty stored value never
// matches. A stored value that isn't Text/Blob can't be meaningfully
// compared against a string threshold and is a TypeError, not a silent
// false.
func applyFilter(f *Filter, row *Row, schema *Schema) (bool, error) {
	idx, ok := schema.IndexOf(f.Column)
	if !ok {
		return false, NewDatabaseError("applyFilter", ErrColumnNotFound, map[string]interface{}{"column": f.Column})
	}
	val, err := row.Get(idx)
	if err != nil {
		return false, err
	}
	if val.IsNull() {
		return false, nil
	}
	if val.Kind() != KindText && val.Kind() != KindBlob {
		return false, typeErrorf("applyFilter", map[string]interface{}{"column": f.Column, "value_kind": val.Kind().String()}, "value type does not match threshold type")
	}

	stored := strings.ToLower(strings.TrimSpace(string(val.Bytes())))
	if stored == "" {
		return false, nil
	}
	threshold := strings.ToLower(strings.TrimSpace(f.Threshold))

	switch f.Operator {
	case "=":
		return stored == threshold, nil
	default:
		return false, NewDatabaseError("applyFilter", ErrUnsupportedOperator, map[string]interface{}{"operator": f.Operator})
	}
}

// projectRow renders the requested columns of row, '|'-joined, in the
// order requested. Null values print as the empty string.
func projectRow(row *Row, columns []string) string {
	parts := make([]string, len(columns))
	for i, name := range columns {
		idx, _ := row.Schema.IndexOf(name)
		val, _ := row.Get(idx)
		parts[i] = val.String()
	}
	return strings.Join(parts, "|")
}
