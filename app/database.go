package main

import (
	"context"
	"os"
)

// Database is the single entry point for one command: it owns the file
// handle, the byte reader built on top of it, and the lazily-loaded schema
// catalog. It is opened once and held for the lifetime of one command.
type Database struct {
	file        *os.File
	reader      *ByteReader
	pageSize    int
	config      *DatabaseConfig
	resourceMgr *ResourceManager
	catalog     *Catalog
}

// OpenDatabase opens filePath, validates its file header, and returns a
// Database ready to serve schema and query requests. ctx is checked once,
// after the file header has been read; the walker performs no further
// context-aware work since a single command is one bounded sequential
// traversal.
func OpenDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	cfg := DefaultDatabaseConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, NewDatabaseError("OpenDatabase", ErrInvalidDatabase, map[string]interface{}{"path": filePath, "cause": err.Error()})
	}

	resourceMgr := NewResourceManager()
	resourceMgr.Add(file)

	reader := NewByteReader(file)
	pageSize, err := parseFileHeader(reader)
	if err != nil {
		resourceMgr.Close()
		return nil, err
	}

	select {
	case <-ctx.Done():
		resourceMgr.Close()
		return nil, NewDatabaseError("OpenDatabase", ctx.Err(), map[string]interface{}{"path": filePath})
	default:
	}

	return &Database{
		file:        file,
		reader:      reader,
		pageSize:    pageSize,
		config:      cfg,
		resourceMgr: resourceMgr,
	}, nil
}

// parseFileHeader reads the page size from offset 16 of the 100-byte file
// header. A stored value of 1 means a page size of 65536 (the value
// doesn't fit in a uint16 otherwise).
func parseFileHeader(reader *ByteReader) (int, error) {
	raw, err := reader.ReadU16BE(16)
	if err != nil {
		return 0, NewDatabaseError("parseFileHeader", ErrInvalidDatabase, map[string]interface{}{"cause": err.Error()})
	}
	if raw == 1 {
		return 65536, nil
	}
	if raw < 512 || (raw&(raw-1)) != 0 {
		return 0, NewDatabaseError("parseFileHeader", ErrInvalidDatabase, map[string]interface{}{"page_size": raw})
	}
	return int(raw), nil
}

// Close releases the database's resources via its ResourceManager (LIFO).
func (db *Database) Close() error {
	return db.resourceMgr.Close()
}

func (db *Database) PageSize() int {
	return db.pageSize
}

// Catalog returns the schema catalog, loading it from page 1 on first use.
func (db *Database) Catalog(ctx context.Context) (*Catalog, error) {
	if db.catalog != nil {
		return db.catalog, nil
	}
	select {
	case <-ctx.Done():
		return nil, NewDatabaseError("Catalog", ctx.Err(), nil)
	default:
	}
	catalog, err := LoadCatalog(db.reader, db.pageSize)
	if err != nil {
		return nil, err
	}
	db.catalog = catalog
	return catalog, nil
}

// RootPageCellCount returns the raw cell count of page 1, used verbatim by
// .dbinfo's "number of tables" line (it does not subtract sqlite_sequence).
func (db *Database) RootPageCellCount() (int, error) {
	page, err := OpenPage(db.reader, 1, db.pageSize, true)
	if err != nil {
		return 0, err
	}
	return int(page.CellCount), nil
}

// Executor builds a query Executor bound to this database's reader, page
// size and catalog.
func (db *Database) Executor(ctx context.Context) (*Executor, error) {
	catalog, err := db.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return NewExecutor(db.reader, db.pageSize, catalog), nil
}
