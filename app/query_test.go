package main

import (
	"bytes"
	"testing"
)

// buildRecord assembles a record body from a small DSL: nil -> Null column,
// string -> Text column, int -> a 1-byte signed integer column. It mirrors
// the two-pass header/body shape DecodeRecord expects, reusing encodeVarint
// (defined in reader_test.go) for every varint field.
func buildRecord(fields ...interface{}) []byte {
	var serialBytes []byte
	var body []byte
	for _, f := range fields {
		switch v := f.(type) {
		case nil:
			serialBytes = append(serialBytes, encodeVarint(0)...)
		case string:
			st := uint64(13 + 2*len(v))
			serialBytes = append(serialBytes, encodeVarint(st)...)
			body = append(body, []byte(v)...)
		case int:
			serialBytes = append(serialBytes, encodeVarint(1)...)
			body = append(body, byte(int8(v)))
		default:
			panic("buildRecord: unsupported field type")
		}
	}
	headerLen := len(serialBytes) + 1
	for len(encodeVarint(uint64(headerLen))) != headerLen-len(serialBytes) {
		headerLen++
	}
	header := append(encodeVarint(uint64(headerLen)), serialBytes...)
	return append(header, body...)
}

func buildLeafCell(rowid int64, record []byte) []byte {
	out := encodeVarint(uint64(len(record)))
	out = append(out, encodeVarint(uint64(rowid))...)
	return append(out, record...)
}

// buildQueryFixture assembles a two-page database: page 1 is the schema
// (one "apples" table), page 2 is its table B-tree with two rows.
func buildQueryFixture(pageSize int) []byte {
	buf := make([]byte, pageSize*2)

	createSQL := "CREATE TABLE apples (id INTEGER PRIMARY KEY, name TEXT, color TEXT)"
	schemaRecord := buildRecord("table", "apples", "apples", 2, createSQL)
	schemaCell := buildLeafCell(1, schemaRecord)

	buf[100] = PageTypeLeafTable
	buf[103], buf[104] = 0x00, 0x01
	buf[108] = byte(120 >> 8)
	buf[109] = byte(120)
	copy(buf[120:], schemaCell)

	row1 := buildLeafCell(1, buildRecord(nil, "Fuji", "Red"))
	row2 := buildLeafCell(2, buildRecord(nil, "Golden", "Yellow"))

	page2 := buf[pageSize:]
	page2[0] = PageTypeLeafTable
	page2[3], page2[4] = 0x00, 0x02
	page2[8], page2[9] = 0x00, 0x14 // -> 20
	page2[10], page2[11] = 0x00, 0x3C // -> 60
	copy(page2[20:], row1)
	copy(page2[60:], row2)

	return buf
}

func TestExecutorCount(t *testing.T) {
	pageSize := 300
	reader := NewByteReader(bytes.NewReader(buildQueryFixture(pageSize)))
	catalog, err := LoadCatalog(reader, pageSize)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	executor := NewExecutor(reader, pageSize, catalog)

	q, err := ParseSelect("SELECT COUNT(*) FROM apples")
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}
	lines, err := executor.Execute(q)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(lines) != 1 || lines[0] != "2" {
		t.Errorf("got %v, want [2]", lines)
	}
}

func TestExecutorProjection(t *testing.T) {
	pageSize := 300
	reader := NewByteReader(bytes.NewReader(buildQueryFixture(pageSize)))
	catalog, err := LoadCatalog(reader, pageSize)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	executor := NewExecutor(reader, pageSize, catalog)

	q, err := ParseSelect("SELECT name FROM apples")
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}
	lines, err := executor.Execute(q)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"Fuji", "Golden"}
	if len(lines) != len(want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExecutorFilter(t *testing.T) {
	pageSize := 300
	reader := NewByteReader(bytes.NewReader(buildQueryFixture(pageSize)))
	catalog, err := LoadCatalog(reader, pageSize)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	executor := NewExecutor(reader, pageSize, catalog)

	q, err := ParseSelect("SELECT name, color FROM apples WHERE color = 'red'")
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}
	lines, err := executor.Execute(q)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(lines) != 1 || lines[0] != "Fuji|Red" {
		t.Errorf("got %v, want [Fuji|Red]", lines)
	}
}

func TestExecutorUnknownColumn(t *testing.T) {
	pageSize := 300
	reader := NewByteReader(bytes.NewReader(buildQueryFixture(pageSize)))
	catalog, err := LoadCatalog(reader, pageSize)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	executor := NewExecutor(reader, pageSize, catalog)

	q, err := ParseSelect("SELECT bogus FROM apples")
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}
	if _, err := executor.Execute(q); err == nil {
		t.Fatal("expected an error for an unknown column")
	}
}

func TestExecutorUnknownTable(t *testing.T) {
	pageSize := 300
	reader := NewByteReader(bytes.NewReader(buildQueryFixture(pageSize)))
	catalog, err := LoadCatalog(reader, pageSize)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	executor := NewExecutor(reader, pageSize, catalog)

	q, err := ParseSelect("SELECT name FROM oranges")
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}
	if _, err := executor.Execute(q); err == nil {
		t.Fatal("expected an error for an unknown table")
	}
}
