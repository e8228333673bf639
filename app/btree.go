package main

import (
	"bytes"
	"sort"
	"strings"
)

// CountTableRows walks the table tree rooted at rootPage unfiltered and
// sums the cell count of every reached LEAF_TABLE page, without decoding
// any record. This is the fast path behind SELECT COUNT(*).
func CountTableRows(reader *ByteReader, pageSize int, rootPage int) (int64, error) {
	page, err := OpenPage(reader, rootPage, pageSize, rootPage == 1)
	if err != nil {
		return 0, err
	}
	switch page.Type {
	case PageTypeLeafTable:
		return int64(page.CellCount), nil
	case PageTypeInteriorTable:
		cells, err := page.InteriorTableCells(reader)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, c := range cells {
			n, err := CountTableRows(reader, pageSize, int(c.ChildPage))
			if err != nil {
				return 0, err
			}
			total += n
		}
		n, err := CountTableRows(reader, pageSize, int(page.RightChild))
		if err != nil {
			return 0, err
		}
		return total + n, nil
	default:
		return 0, formatErrorf("CountTableRows", map[string]interface{}{"root_page": rootPage, "page_type": page.Type}, "unexpected page type while counting rows")
	}
}

// WalkTable traverses the table tree rooted at rootPage and returns its
// leaf cells in tree order. If filterRowids is non-nil, only cells whose
// rowid appears in that sorted ascending slice are visited/returned,
// following the boundary-rowid partitioning algorithm so unneeded subtrees
// are never read.
func WalkTable(reader *ByteReader, pageSize int, rootPage int, filterRowids []int64) ([]LeafTableCell, error) {
	return walkTablePage(reader, pageSize, rootPage, filterRowids)
}

func walkTablePage(reader *ByteReader, pageSize int, pageIndex int, filterRowids []int64) ([]LeafTableCell, error) {
	page, err := OpenPage(reader, pageIndex, pageSize, pageIndex == 1)
	if err != nil {
		return nil, err
	}

	switch page.Type {
	case PageTypeLeafTable:
		cells, err := page.LeafTableCells(reader)
		if err != nil {
			return nil, err
		}
		if filterRowids == nil {
			return cells, nil
		}
		wanted := make(map[int64]bool, len(filterRowids))
		for _, r := range filterRowids {
			wanted[r] = true
		}
		filtered := cells[:0:0]
		for _, c := range cells {
			if wanted[c.Rowid] {
				filtered = append(filtered, c)
			}
		}
		return filtered, nil

	case PageTypeInteriorTable:
		interiorCells, err := page.InteriorTableCells(reader)
		if err != nil {
			return nil, err
		}
		var results []LeafTableCell

		if filterRowids == nil {
			for _, c := range interiorCells {
				childResults, err := walkTablePage(reader, pageSize, int(c.ChildPage), nil)
				if err != nil {
					return nil, err
				}
				results = append(results, childResults...)
			}
			rightResults, err := walkTablePage(reader, pageSize, int(page.RightChild), nil)
			if err != nil {
				return nil, err
			}
			return append(results, rightResults...), nil
		}

		i := 0
		for _, c := range interiorCells {
			var assigned []int64
			for i < len(filterRowids) && filterRowids[i] < c.BoundaryRowid {
				assigned = append(assigned, filterRowids[i])
				i++
			}
			if len(assigned) > 0 {
				childResults, err := walkTablePage(reader, pageSize, int(c.ChildPage), assigned)
				if err != nil {
					return nil, err
				}
				results = append(results, childResults...)
			}
		}
		if i < len(filterRowids) {
			remaining := filterRowids[i:]
			rightResults, err := walkTablePage(reader, pageSize, int(page.RightChild), remaining)
			if err != nil {
				return nil, err
			}
			results = append(results, rightResults...)
		}
		return results, nil

	default:
		return nil, formatErrorf("walkTablePage", map[string]interface{}{"page_index": pageIndex, "page_type": page.Type}, "unexpected page type while walking table tree")
	}
}

// WalkIndex returns the sorted, deduplicated list of rowids whose indexed
// column equals key.
func WalkIndex(reader *ByteReader, pageSize int, rootPage int, key Value) ([]int64, error) {
	rowids, err := walkIndexPage(reader, pageSize, rootPage, key)
	if err != nil {
		return nil, err
	}
	sort.Slice(rowids, func(i, j int) bool { return rowids[i] < rowids[j] })
	return dedupSortedInt64(rowids), nil
}

func walkIndexPage(reader *ByteReader, pageSize int, pageIndex int, key Value) ([]int64, error) {
	page, err := OpenPage(reader, pageIndex, pageSize, pageIndex == 1)
	if err != nil {
		return nil, err
	}

	switch page.Type {
	case PageTypeLeafIndex:
		entries, err := page.LeafIndexCells(reader)
		if err != nil {
			return nil, err
		}
		var rowids []int64
		for _, e := range entries {
			if !e.Key.IsNull() && equalKeys(e.Key, key) {
				rowids = append(rowids, e.Rowid)
			}
		}
		return rowids, nil

	case PageTypeInteriorIndex:
		cells, err := page.InteriorIndexCells(reader)
		if err != nil {
			return nil, err
		}

		var rowids []int64
		boundaryFound := false
		prevLess := false
		for _, c := range cells {
			if c.Key.IsNull() {
				prevLess = false
				continue
			}
			cmp := compareKeys(c.Key, key)
			switch {
			case cmp == 0:
				rowids = append(rowids, c.Rowid)
				childRowids, err := walkIndexPage(reader, pageSize, int(c.LeftChild), key)
				if err != nil {
					return nil, err
				}
				rowids = append(rowids, childRowids...)
				prevLess = false
			case cmp > 0:
				if prevLess && !boundaryFound {
					childRowids, err := walkIndexPage(reader, pageSize, int(c.LeftChild), key)
					if err != nil {
						return nil, err
					}
					rowids = append(rowids, childRowids...)
					boundaryFound = true
				}
				prevLess = false
			default: // cmp < 0
				prevLess = true
			}
		}

		if !boundaryFound {
			if len(cells) > 0 && !cells[0].Key.IsNull() && compareKeys(cells[0].Key, key) > 0 {
				childRowids, err := walkIndexPage(reader, pageSize, int(cells[0].LeftChild), key)
				if err != nil {
					return nil, err
				}
				rowids = append(rowids, childRowids...)
			} else {
				childRowids, err := walkIndexPage(reader, pageSize, int(page.RightChild), key)
				if err != nil {
					return nil, err
				}
				rowids = append(rowids, childRowids...)
			}
		}
		return rowids, nil

	default:
		return nil, formatErrorf("walkIndexPage", map[string]interface{}{"page_index": pageIndex, "page_type": page.Type}, "unexpected page type while walking index tree")
	}
}

func dedupSortedInt64(sorted []int64) []int64 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// normalizeForCompare applies the engine's only collation: trim surrounding
// whitespace and lowercase with strings.ToLower, which folds non-ASCII
// letters as well as ASCII ones, matching the filter layer's text
// comparison semantics.
func normalizeForCompare(b []byte) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(string(b))))
}

// compareKeys orders two values: Null < numeric < text/blob, numerics
// compared by value, text/blob compared byte-wise after normalization.
func compareKeys(a, b Value) int {
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return 0
	case 1:
		af, _ := a.Float64()
		bf, _ := b.Float64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	default:
		return bytes.Compare(normalizeForCompare(a.Bytes()), normalizeForCompare(b.Bytes()))
	}
}

func equalKeys(a, b Value) bool {
	return compareKeys(a, b) == 0
}

func keyRank(v Value) int {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindInt, KindFloat:
		return 1
	default:
		return 2
	}
}
