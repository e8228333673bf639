package main

import (
	"encoding/binary"
	"math"
)

// DecodeRecord decodes a SQLite record payload starting at offset, returning
// one Value per serial type declared in the record header.
//
// rowID, when non-nil, triggers INTEGER PRIMARY KEY aliasing: the first
// column's decoded value is replaced with Int(*rowID) iff it decoded to
// Null. The source's implementation substitutes unconditionally; this is a
// deliberate narrowing so an aliasing request never corrupts a row whose
// first column is not actually the primary key.
func DecodeRecord(reader *ByteReader, offset int64, rowID *int64) ([]Value, error) {
	headerSize, headerSizeLen, err := reader.ReadVarint(offset)
	if err != nil {
		return nil, NewDatabaseError("DecodeRecord", err, map[string]interface{}{"offset": offset})
	}

	serialTypes := make([]uint64, 0, 4)
	consumed := int64(headerSizeLen)
	cursor := offset + int64(headerSizeLen)
	for consumed < int64(headerSize) {
		st, n, err := reader.ReadVarint(cursor)
		if err != nil {
			return nil, NewDatabaseError("DecodeRecord", err, map[string]interface{}{"offset": offset})
		}
		serialTypes = append(serialTypes, st)
		cursor += int64(n)
		consumed += int64(n)
	}
	if consumed != int64(headerSize) {
		return nil, formatErrorf("DecodeRecord", map[string]interface{}{"offset": offset, "header_size": headerSize}, "record header size mismatch")
	}

	bodyCursor := offset + int64(headerSize)
	values := make([]Value, len(serialTypes))
	for i, st := range serialTypes {
		size := serialTypeBodySize(st)
		if size < 0 {
			return nil, formatErrorf("DecodeRecord", map[string]interface{}{"serial_type": st}, "reserved or invalid serial type")
		}
		body, err := reader.ReadAt(bodyCursor, size)
		if err != nil {
			return nil, NewDatabaseError("DecodeRecord", err, map[string]interface{}{"offset": bodyCursor, "serial_type": st})
		}
		v, err := decodeSerialValue(st, body)
		if err != nil {
			return nil, NewDatabaseError("DecodeRecord", err, map[string]interface{}{"serial_type": st})
		}
		values[i] = v
		bodyCursor += int64(size)
	}

	if rowID != nil && len(values) > 0 && values[0].IsNull() {
		values[0] = IntValue(*rowID)
	}

	return values, nil
}

// serialTypeBodySize returns the number of body bytes a serial type
// occupies, or -1 for reserved/unknown types (10, 11, and anything not in
// the defined ranges).
func serialTypeBodySize(st uint64) int {
	switch st {
	case 0, 8, 9:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 3
	case 4:
		return 4
	case 5:
		return 6
	case 6, 7:
		return 8
	case 10, 11:
		return -1
	default:
		if st >= 12 && st%2 == 0 {
			return int((st - 12) / 2)
		}
		if st >= 13 && st%2 == 1 {
			return int((st - 13) / 2)
		}
		return -1
	}
}

// decodeSerialValue decodes a single column body given its serial type,
// per the serial-type table: signed big-endian integers with correct
// sign extension for the 24- and 48-bit widths, an IEEE-754 double via
// math.Float64frombits (never a raw numeric cast), and BLOB/TEXT slices.
func decodeSerialValue(st uint64, body []byte) (Value, error) {
	switch st {
	case 0:
		return NullValue(), nil
	case 1:
		return IntValue(int64(int8(body[0]))), nil
	case 2:
		return IntValue(int64(int16(binary.BigEndian.Uint16(body)))), nil
	case 3:
		return IntValue(signExtend(uint64(body[0])<<16|uint64(body[1])<<8|uint64(body[2]), 24)), nil
	case 4:
		return IntValue(int64(int32(binary.BigEndian.Uint32(body)))), nil
	case 5:
		v := uint64(binary.BigEndian.Uint32(body[:4]))<<16 | uint64(binary.BigEndian.Uint16(body[4:6]))
		return IntValue(signExtend(v, 48)), nil
	case 6:
		return IntValue(int64(binary.BigEndian.Uint64(body))), nil
	case 7:
		return FloatValue(math.Float64frombits(binary.BigEndian.Uint64(body))), nil
	case 8:
		return IntValue(0), nil
	case 9:
		return IntValue(1), nil
	default:
		if st >= 12 && st%2 == 0 {
			return BlobValue(body), nil
		}
		if st >= 13 && st%2 == 1 {
			return TextBytesValue(body), nil
		}
		return Value{}, ErrInvalidSerialType
	}
}

// signExtend interprets the low `bits` bits of v as a two's-complement
// signed integer of that width and sign-extends it to int64.
func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}
