package tup

import "testing"

func TestShapeForType(t *testing.T) {
	micro := []TupleDataType{TypeInt8, TypeUint8, TypeUint8Mask, TypeInt16, TypeUint16, TypeUint16Mask, TypeBoolean}
	std := []TupleDataType{TypeInt32, TypeUint32, TypeInt64, TypeUint64, TypeFloat, TypeDouble, TypeEnum, TypeUUID, TypeString, TypeData}

	for _, ty := range micro {
		if got := shapeForType(ty); got != KindMicro {
			t.Errorf("shapeForType(%s) = %s, want MICRO", ty, got)
		}
	}
	for _, ty := range std {
		if got := shapeForType(ty); got != KindStd {
			t.Errorf("shapeForType(%s) = %s, want STD", ty, got)
		}
	}
}

func TestWireSlotSizeWidensMicroFamily(t *testing.T) {
	e := Elem{Type: TypeUint8}
	if got := wireSlotSize(e); got != 2 {
		t.Errorf("wireSlotSize(uint8) = %d, want 2 (widened to MICRO slot)", got)
	}
	if got := elemDataSize(e); got != 1 {
		t.Errorf("elemDataSize(uint8) = %d, want 1 (native width)", got)
	}
}

func TestWireSlotSizeStdFamilyMatchesNative(t *testing.T) {
	e := Elem{Type: TypeUint64}
	if got := wireSlotSize(e); got != 8 {
		t.Errorf("wireSlotSize(uint64) = %d, want 8", got)
	}
	if got := elemDataSize(e); got != 8 {
		t.Errorf("elemDataSize(uint64) = %d, want 8", got)
	}
}

func TestElemDataSizeString(t *testing.T) {
	e := Elem{Type: TypeString, Value2: 32}
	if got := elemDataSize(e); got != 32 {
		t.Errorf("elemDataSize(string, max=32) = %d, want 32", got)
	}
}
