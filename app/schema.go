package main

// ObjectInfo is one row of the sqlite_schema table: a table, index,
// trigger or view descriptor. Only "table" and "index" rows participate in
// this engine's query planning; other types are retained in Catalog.Objects
// but never traversed, and .tables lists only "table" rows.
type ObjectInfo struct {
	Type     string
	Name     string
	TblName  string
	RootPage int
	SQL      string
}

// Catalog is the immutable, once-computed decoding of page 1.
type Catalog struct {
	Objects      []ObjectInfo
	tablesByName map[string]*ObjectInfo
	indexesByTbl map[string][]*ObjectInfo
}

// LoadCatalog reads page 1 as a LEAF_TABLE and decodes each cell into an
// ObjectInfo. A page 1 that is not a leaf page means the schema spans more
// than one page, which this engine does not support.
func LoadCatalog(reader *ByteReader, pageSize int) (*Catalog, error) {
	page, err := OpenPage(reader, 1, pageSize, true)
	if err != nil {
		return nil, err
	}
	if page.Type != PageTypeLeafTable {
		return nil, NewDatabaseError("LoadCatalog", ErrMultiPageSchema, map[string]interface{}{"page_type": page.Type})
	}

	cells, err := page.LeafTableCells(reader)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{
		tablesByName: make(map[string]*ObjectInfo),
		indexesByTbl: make(map[string][]*ObjectInfo),
	}
	for _, cell := range cells {
		values, err := DecodeRecord(reader, cell.RecordOffset, &cell.Rowid)
		if err != nil {
			return nil, err
		}
		obj, err := decodeObjectInfo(values)
		if err != nil {
			return nil, err
		}
		if obj.Name == "sqlite_sequence" {
			continue
		}
		catalog.Objects = append(catalog.Objects, obj)
	}

	for i := range catalog.Objects {
		obj := &catalog.Objects[i]
		switch obj.Type {
		case "table":
			catalog.tablesByName[obj.Name] = obj
		case "index":
			catalog.indexesByTbl[obj.TblName] = append(catalog.indexesByTbl[obj.TblName], obj)
		}
	}

	return catalog, nil
}

func decodeObjectInfo(values []Value) (ObjectInfo, error) {
	if len(values) < 5 {
		return ObjectInfo{}, formatErrorf("decodeObjectInfo", map[string]interface{}{"columns": len(values)}, "schema record has fewer than 5 columns")
	}
	rootPage, err := values[3].Int64()
	if err != nil {
		// sqlite_schema rows for views/triggers may carry a NULL rootpage.
		rootPage = 0
	}
	return ObjectInfo{
		Type:     values[0].String(),
		Name:     values[1].String(),
		TblName:  values[2].String(),
		RootPage: int(rootPage),
		SQL:      values[4].String(),
	}, nil
}

// Table looks up a table descriptor by name.
func (c *Catalog) Table(name string) (*ObjectInfo, bool) {
	obj, ok := c.tablesByName[name]
	return obj, ok
}

// IndexForColumn finds an index on tableName whose name follows the
// idx_<table>_<column> convention and targets the given column.
func (c *Catalog) IndexForColumn(tableName, columnName string) (*ObjectInfo, bool) {
	expected := "idx_" + tableName + "_" + columnName
	for _, idx := range c.indexesByTbl[tableName] {
		if idx.Name == expected {
			return idx, true
		}
	}
	return nil, false
}

// TableNames returns all table names in schema (file) order.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.Objects))
	for _, obj := range c.Objects {
		if obj.Type == "table" {
			names = append(names, obj.Name)
		}
	}
	return names
}
