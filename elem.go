package tup

// TupleDataType is the small type tag a schema attaches to a field,
// matching enum ipct_tuple_data_type in the original ABI builder header.
type TupleDataType uint8

const (
	TypeInt8 TupleDataType = iota
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat
	TypeDouble
	TypeUint8Mask
	TypeUint16Mask
	TypeUint32Mask
	TypeUint64Mask
	TypeEnum
	TypeBoolean
	TypeString
	TypeUUID
	TypeData
)

func (t TupleDataType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeUint8:
		return "uint8"
	case TypeInt16:
		return "int16"
	case TypeUint16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUint64:
		return "uint64"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeUint8Mask:
		return "uint8_mask"
	case TypeUint16Mask:
		return "uint16_mask"
	case TypeUint32Mask:
		return "uint32_mask"
	case TypeUint64Mask:
		return "uint64_mask"
	case TypeEnum:
		return "enum"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeUUID:
		return "uuid"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}

// Elem binds one in-memory field to a tuple id, type, and validation rule.
// value1/value2 are min/max for numeric values, a permitted-bit mask for
// masks (value1 only), or a max length for strings/data (value2 only).
type Elem struct {
	ID     uint16
	Type   TupleDataType
	Offset uint32
	Value1 uint64
	Value2 uint64
}

// shapeForType reports which tuple shape (STD-family vs MICRO-family)
// carries this elem's type, per spec.md 4.3.a and the original builder's
// ipct_get_type: 8/16-bit scalars, masks and booleans are MICRO; everything
// else (32/64-bit scalars, float/double, enum, uuid, string, data) is STD.
func shapeForType(t TupleDataType) TupleKind {
	switch t {
	case TypeInt8, TypeUint8, TypeUint8Mask,
		TypeInt16, TypeUint16, TypeUint16Mask,
		TypeBoolean:
		return KindMicro
	default:
		return KindStd
	}
}

// elemDataSize returns the number of bytes this elem occupies in the
// source/destination record. For STD-family types this is also its wire
// width; MICRO-family 8-bit types are wider on the wire (see wireSlotSize).
func elemDataSize(e Elem) uint32 {
	switch e.Type {
	case TypeInt8, TypeUint8, TypeUint8Mask:
		return 1
	case TypeInt16, TypeUint16, TypeUint16Mask, TypeBoolean:
		return 2
	case TypeInt32, TypeUint32, TypeUint32Mask, TypeEnum, TypeFloat:
		return 4
	case TypeInt64, TypeUint64, TypeUint64Mask, TypeDouble:
		return 8
	case TypeUUID:
		return 16
	case TypeString, TypeData:
		return uint32(e.Value2)
	default:
		return 0
	}
}

// wireSlotSize is the width a single elem occupies in a MICRO/MICRO_ARRAY
// tuple slot on the wire: 8-bit and boolean values travel inside a 16-bit
// payload slot, per spec.md 4.6 - the widening is part of the wire type,
// not a bug.
func wireSlotSize(e Elem) uint32 {
	if shapeForType(e.Type) == KindMicro {
		return 2
	}
	return elemDataSize(e)
}
