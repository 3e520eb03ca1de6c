package tup

import (
	"encoding/binary"
	"math"
)

// validateAndStore checks wireData (the tuple's raw bytes for this elem,
// already bounds-checked by the caller) against elem's validation rule and,
// on success, writes the native-width value into dest[elem.Offset:]. dest
// must have at least elem.Offset+elemDataSize(elem) bytes.
//
// This is the Go counterpart of unpack.c's elem_insert_data switch: one
// branch per TupleDataType, range/mask/length checked before the value ever
// reaches the destination record.
func validateAndStore(elem Elem, wireData []byte, dest []byte) error {
	off := elem.Offset

	// Mirrors elem_insert_data's overflow check, but against the
	// destination record rather than the original's ctx->src.size - offset
	// is a dest-record concept, and spec.md 4.4's DestOverflow check is
	// defined in terms of dest_cap.
	if uint64(off)+uint64(elemDataSize(elem)) > uint64(len(dest)) {
		return newErr(ErrCodeDestOverflow, "elem %d at offset %d needs %d bytes, dest has %d", elem.ID, off, elemDataSize(elem), len(dest))
	}

	switch elem.Type {
	case TypeInt8:
		v := int8(int16(binary.LittleEndian.Uint16(wireData)))
		if int64(v) < int64(int8(elem.Value1)) || int64(v) > int64(int8(elem.Value2)) {
			return newErr(ErrCodeRangeViolation, "int8 %d out of range [%d,%d]", v, int8(elem.Value1), int8(elem.Value2))
		}
		dest[off] = byte(v)

	case TypeUint8:
		v := uint8(binary.LittleEndian.Uint16(wireData))
		if uint64(v) < elem.Value1 || uint64(v) > elem.Value2 {
			return newErr(ErrCodeRangeViolation, "uint8 %d out of range [%d,%d]", v, elem.Value1, elem.Value2)
		}
		dest[off] = v

	case TypeUint8Mask:
		v := uint8(binary.LittleEndian.Uint16(wireData))
		if v & ^uint8(elem.Value1) != 0 {
			return newErr(ErrCodeMaskViolation, "uint8 mask value 0x%x invalid for mask 0x%x", v, elem.Value1)
		}
		dest[off] = v

	case TypeInt16:
		v := int16(binary.LittleEndian.Uint16(wireData))
		if int64(v) < int64(int16(elem.Value1)) || int64(v) > int64(int16(elem.Value2)) {
			return newErr(ErrCodeRangeViolation, "int16 %d out of range [%d,%d]", v, int16(elem.Value1), int16(elem.Value2))
		}
		binary.LittleEndian.PutUint16(dest[off:], uint16(v))

	case TypeUint16:
		v := binary.LittleEndian.Uint16(wireData)
		if uint64(v) < elem.Value1 || uint64(v) > elem.Value2 {
			return newErr(ErrCodeRangeViolation, "uint16 %d out of range [%d,%d]", v, elem.Value1, elem.Value2)
		}
		binary.LittleEndian.PutUint16(dest[off:], v)

	case TypeUint16Mask:
		v := binary.LittleEndian.Uint16(wireData)
		if v & ^uint16(elem.Value1) != 0 {
			return newErr(ErrCodeMaskViolation, "uint16 mask value 0x%x invalid for mask 0x%x", v, elem.Value1)
		}
		binary.LittleEndian.PutUint16(dest[off:], v)

	case TypeBoolean:
		v := binary.LittleEndian.Uint16(wireData)
		if v != 0 && v != 1 {
			return newErr(ErrCodeRangeViolation, "boolean value %d not in {0,1}", v)
		}
		binary.LittleEndian.PutUint16(dest[off:], v)

	case TypeInt32:
		v := int32(binary.LittleEndian.Uint32(wireData))
		if int64(v) < int64(int32(elem.Value1)) || int64(v) > int64(int32(elem.Value2)) {
			return newErr(ErrCodeRangeViolation, "int32 %d out of range [%d,%d]", v, int32(elem.Value1), int32(elem.Value2))
		}
		binary.LittleEndian.PutUint32(dest[off:], uint32(v))

	case TypeUint32:
		v := binary.LittleEndian.Uint32(wireData)
		if uint64(v) < elem.Value1 || uint64(v) > elem.Value2 {
			return newErr(ErrCodeRangeViolation, "uint32 %d out of range [%d,%d]", v, elem.Value1, elem.Value2)
		}
		binary.LittleEndian.PutUint32(dest[off:], v)

	case TypeEnum:
		v := binary.LittleEndian.Uint32(wireData)
		if uint64(v) < elem.Value1 || uint64(v) > elem.Value2 {
			return newErr(ErrCodeRangeViolation, "enum %d out of range [%d,%d]", v, elem.Value1, elem.Value2)
		}
		binary.LittleEndian.PutUint32(dest[off:], v)

	case TypeUint32Mask:
		v := binary.LittleEndian.Uint32(wireData)
		if v & ^uint32(elem.Value1) != 0 {
			return newErr(ErrCodeMaskViolation, "uint32 mask value 0x%x invalid for mask 0x%x", v, elem.Value1)
		}
		binary.LittleEndian.PutUint32(dest[off:], v)

	case TypeFloat:
		bits := binary.LittleEndian.Uint32(wireData)
		v := math.Float32frombits(bits)
		min := math.Float32frombits(uint32(elem.Value1))
		max := math.Float32frombits(uint32(elem.Value2))
		if v < min || v > max {
			return newErr(ErrCodeRangeViolation, "float %v out of range [%v,%v]", v, min, max)
		}
		binary.LittleEndian.PutUint32(dest[off:], bits)

	case TypeInt64:
		v := int64(binary.LittleEndian.Uint64(wireData))
		if v < int64(elem.Value1) || v > int64(elem.Value2) {
			return newErr(ErrCodeRangeViolation, "int64 %d out of range [%d,%d]", v, int64(elem.Value1), int64(elem.Value2))
		}
		binary.LittleEndian.PutUint64(dest[off:], uint64(v))

	case TypeUint64:
		v := binary.LittleEndian.Uint64(wireData)
		if v < elem.Value1 || v > elem.Value2 {
			return newErr(ErrCodeRangeViolation, "uint64 %d out of range [%d,%d]", v, elem.Value1, elem.Value2)
		}
		binary.LittleEndian.PutUint64(dest[off:], v)

	case TypeUint64Mask:
		v := binary.LittleEndian.Uint64(wireData)
		if v & ^elem.Value1 != 0 {
			return newErr(ErrCodeMaskViolation, "uint64 mask value 0x%x invalid for mask 0x%x", v, elem.Value1)
		}
		binary.LittleEndian.PutUint64(dest[off:], v)

	case TypeDouble:
		bits := binary.LittleEndian.Uint64(wireData)
		v := math.Float64frombits(bits)
		min := math.Float64frombits(elem.Value1)
		max := math.Float64frombits(elem.Value2)
		if v < min || v > max {
			return newErr(ErrCodeRangeViolation, "double %v out of range [%v,%v]", v, min, max)
		}
		binary.LittleEndian.PutUint64(dest[off:], bits)

	case TypeUUID:
		copy(dest[off:off+16], wireData[:16])

	case TypeString, TypeData:
		maxLen := uint32(elem.Value2)
		if uint32(len(wireData)) > maxLen {
			return newErr(ErrCodeBufferOverflow, "%s length %d exceeds max %d", elem.Type, len(wireData), maxLen)
		}
		n := copy(dest[off:off+maxLen], wireData)
		for i := n; i < int(maxLen); i++ {
			dest[off+uint32(i)] = 0
		}

	default:
		return newErr(ErrCodeInvalidArgument, "unknown elem type %d", elem.Type)
	}

	return nil
}
