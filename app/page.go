package main

const (
	PageTypeInteriorIndex byte = 0x02
	PageTypeInteriorTable byte = 0x05
	PageTypeLeafIndex     byte = 0x0A
	PageTypeLeafTable     byte = 0x0D
)

func isInteriorPageType(t byte) bool {
	return t == PageTypeInteriorIndex || t == PageTypeInteriorTable
}

// Page is a parsed page header plus its raw cell pointer array. Cell
// decoding is deferred to the typed accessors below, each of which only
// makes sense for the matching page type.
type Page struct {
	Type         byte
	CellCount    uint16
	RightChild   uint32 // only meaningful for interior pages
	CellPointers []uint16
	pageStart    int64 // absolute offset of the page's first byte in the file
}

// OpenPage reads and parses the header and cell pointer array of the page
// at the given 1-based pageIndex. isFirst must be true only for page 1,
// whose page header is offset by the 100-byte file header.
func OpenPage(reader *ByteReader, pageIndex int, pageSize int, isFirst bool) (*Page, error) {
	pageStart := int64(pageIndex-1) * int64(pageSize)
	headerStart := pageStart
	if isFirst {
		headerStart += 100
	}

	typeByte, err := reader.ReadAt(headerStart, 1)
	if err != nil {
		return nil, NewDatabaseError("OpenPage", err, map[string]interface{}{"page_index": pageIndex})
	}
	pageType := typeByte[0]
	if !isInteriorPageType(pageType) && pageType != PageTypeLeafIndex && pageType != PageTypeLeafTable {
		return nil, formatErrorf("OpenPage", map[string]interface{}{"page_index": pageIndex, "page_type": pageType}, "unrecognized page type")
	}

	cellCount, err := reader.ReadU16BE(headerStart + 3)
	if err != nil {
		return nil, NewDatabaseError("OpenPage", err, map[string]interface{}{"page_index": pageIndex})
	}

	headerSize := 8
	var rightChild uint32
	if isInteriorPageType(pageType) {
		headerSize = 12
		rightChild, err = reader.ReadU32BE(headerStart + 8)
		if err != nil {
			return nil, NewDatabaseError("OpenPage", err, map[string]interface{}{"page_index": pageIndex})
		}
	}

	pointerBytes, err := reader.ReadAt(headerStart+int64(headerSize), int(cellCount)*2)
	if err != nil {
		return nil, NewDatabaseError("OpenPage", err, map[string]interface{}{"page_index": pageIndex})
	}
	pointers := make([]uint16, cellCount)
	for i := range pointers {
		pointers[i] = uint16(pointerBytes[i*2])<<8 | uint16(pointerBytes[i*2+1])
	}

	return &Page{
		Type:         pageType,
		CellCount:    cellCount,
		RightChild:   rightChild,
		CellPointers: pointers,
		pageStart:    pageStart,
	}, nil
}

// LeafTableCell is a lazily-decodable row: the caller invokes DecodeRecord
// at RecordOffset (with Rowid for primary-key aliasing) only when the row's
// value is actually needed, so a COUNT(*) scan never decodes a record.
type LeafTableCell struct {
	Rowid        int64
	PayloadSize  uint64
	RecordOffset int64
}

func (p *Page) LeafTableCells(reader *ByteReader) ([]LeafTableCell, error) {
	if p.Type != PageTypeLeafTable {
		return nil, formatErrorf("LeafTableCells", map[string]interface{}{"page_type": p.Type}, "page is not a leaf-table page")
	}
	cells := make([]LeafTableCell, len(p.CellPointers))
	for i, ptr := range p.CellPointers {
		offset := p.pageStart + int64(ptr)
		payloadSize, n1, err := reader.ReadVarint(offset)
		if err != nil {
			return nil, err
		}
		rowid, n2, err := reader.ReadVarint(offset + int64(n1))
		if err != nil {
			return nil, err
		}
		cells[i] = LeafTableCell{
			Rowid:        int64(rowid),
			PayloadSize:  payloadSize,
			RecordOffset: offset + int64(n1) + int64(n2),
		}
	}
	return cells, nil
}

// InteriorTableCell is a child pointer with its subtree's boundary rowid,
// used by the filtered-scan partitioning algorithm.
type InteriorTableCell struct {
	ChildPage     uint32
	BoundaryRowid int64
}

func (p *Page) InteriorTableCells(reader *ByteReader) ([]InteriorTableCell, error) {
	if p.Type != PageTypeInteriorTable {
		return nil, formatErrorf("InteriorTableCells", map[string]interface{}{"page_type": p.Type}, "page is not an interior-table page")
	}
	cells := make([]InteriorTableCell, len(p.CellPointers))
	for i, ptr := range p.CellPointers {
		offset := p.pageStart + int64(ptr)
		childPage, err := reader.ReadU32BE(offset)
		if err != nil {
			return nil, err
		}
		rowid, _, err := reader.ReadVarint(offset + 4)
		if err != nil {
			return nil, err
		}
		cells[i] = InteriorTableCell{ChildPage: childPage, BoundaryRowid: int64(rowid)}
	}
	return cells, nil
}

// IndexEntry is one decoded index record: its indexed key and the rowid it
// references. The Page model decodes the record eagerly here because the
// walker needs both fields to make its traversal decision.
type IndexEntry struct {
	Key   Value
	Rowid int64
}

func (p *Page) LeafIndexCells(reader *ByteReader) ([]IndexEntry, error) {
	if p.Type != PageTypeLeafIndex {
		return nil, formatErrorf("LeafIndexCells", map[string]interface{}{"page_type": p.Type}, "page is not a leaf-index page")
	}
	entries := make([]IndexEntry, len(p.CellPointers))
	for i, ptr := range p.CellPointers {
		offset := p.pageStart + int64(ptr)
		_, n, err := reader.ReadVarint(offset)
		if err != nil {
			return nil, err
		}
		entry, err := decodeIndexEntry(reader, offset+int64(n))
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// InteriorIndexCell pairs a left-child pointer with the same decoded
// key/rowid an interior index record carries.
type InteriorIndexCell struct {
	LeftChild uint32
	IndexEntry
}

func (p *Page) InteriorIndexCells(reader *ByteReader) ([]InteriorIndexCell, error) {
	if p.Type != PageTypeInteriorIndex {
		return nil, formatErrorf("InteriorIndexCells", map[string]interface{}{"page_type": p.Type}, "page is not an interior-index page")
	}
	cells := make([]InteriorIndexCell, len(p.CellPointers))
	for i, ptr := range p.CellPointers {
		offset := p.pageStart + int64(ptr)
		leftChild, err := reader.ReadU32BE(offset)
		if err != nil {
			return nil, err
		}
		_, n, err := reader.ReadVarint(offset + 4)
		if err != nil {
			return nil, err
		}
		entry, err := decodeIndexEntry(reader, offset+4+int64(n))
		if err != nil {
			return nil, err
		}
		cells[i] = InteriorIndexCell{LeftChild: leftChild, IndexEntry: entry}
	}
	return cells, nil
}

// decodeIndexEntry decodes an index record (key column(s) followed by a
// trailing rowid column) and returns its first column as the key and its
// last column as the rowid, per the single-column-index convention this
// engine supports.
func decodeIndexEntry(reader *ByteReader, recordOffset int64) (IndexEntry, error) {
	values, err := DecodeRecord(reader, recordOffset, nil)
	if err != nil {
		return IndexEntry{}, err
	}
	if len(values) < 2 {
		return IndexEntry{}, formatErrorf("decodeIndexEntry", map[string]interface{}{"columns": len(values)}, "index record has fewer than 2 columns")
	}
	rowid, err := values[len(values)-1].Int64()
	if err != nil {
		return IndexEntry{}, formatErrorf("decodeIndexEntry", nil, "index record rowid column is not an integer: %v", err)
	}
	return IndexEntry{Key: values[0], Rowid: rowid}, nil
}
