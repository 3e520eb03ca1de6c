package tup

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestValidateAndStoreRange(t *testing.T) {
	elem := Elem{Type: TypeUint16, Offset: 0, Value1: 10, Value2: 20}
	dest := make([]byte, 2)

	wire := make([]byte, 2)
	binary.LittleEndian.PutUint16(wire, 15)
	if err := validateAndStore(elem, wire, dest); err != nil {
		t.Fatalf("validateAndStore(15 in [10,20]): %v", err)
	}
	if got := binary.LittleEndian.Uint16(dest); got != 15 {
		t.Fatalf("dest = %d, want 15", got)
	}

	binary.LittleEndian.PutUint16(wire, 25)
	if err := validateAndStore(elem, wire, dest); err == nil {
		t.Fatal("validateAndStore(25 out of [10,20]): expected error, got nil")
	}
}

func TestValidateAndStoreMask(t *testing.T) {
	elem := Elem{Type: TypeUint8Mask, Offset: 0, Value1: 0b0101}
	dest := make([]byte, 2)

	wire := make([]byte, 2)
	binary.LittleEndian.PutUint16(wire, 0b0101)
	if err := validateAndStore(elem, wire, dest); err != nil {
		t.Fatalf("mask subset: %v", err)
	}

	binary.LittleEndian.PutUint16(wire, 0b1000)
	if err := validateAndStore(elem, wire, dest); err == nil {
		t.Fatal("mask with disallowed bit: expected error, got nil")
	}
}

func TestValidateAndStoreBoolean(t *testing.T) {
	elem := Elem{Type: TypeBoolean, Offset: 0}
	dest := make([]byte, 2)
	wire := make([]byte, 2)

	binary.LittleEndian.PutUint16(wire, 1)
	if err := validateAndStore(elem, wire, dest); err != nil {
		t.Fatalf("boolean(1): %v", err)
	}

	binary.LittleEndian.PutUint16(wire, 2)
	if err := validateAndStore(elem, wire, dest); err == nil {
		t.Fatal("boolean(2): expected error, got nil")
	}
}

func TestValidateAndStoreFloat(t *testing.T) {
	elem := Elem{
		Type:   TypeFloat,
		Offset: 0,
		Value1: uint64(math.Float32bits(0)),
		Value2: uint64(math.Float32bits(1)),
	}
	dest := make([]byte, 4)
	wire := make([]byte, 4)
	binary.LittleEndian.PutUint32(wire, math.Float32bits(0.5))

	if err := validateAndStore(elem, wire, dest); err != nil {
		t.Fatalf("float in range: %v", err)
	}

	binary.LittleEndian.PutUint32(wire, math.Float32bits(2))
	if err := validateAndStore(elem, wire, dest); err == nil {
		t.Fatal("float out of range: expected error, got nil")
	}
}

func TestValidateAndStoreStringPadsToMaxLen(t *testing.T) {
	elem := Elem{Type: TypeString, Offset: 0, Value2: 8}
	dest := make([]byte, 8)
	wire := []byte{'h', 'i', 0, 0, 0, 0, 0, 0}

	if err := validateAndStore(elem, wire, dest); err != nil {
		t.Fatalf("validateAndStore(string): %v", err)
	}
	if string(dest) != "hi\x00\x00\x00\x00\x00\x00" {
		t.Fatalf("dest = %q, want zero-padded %q", dest, "hi\x00\x00\x00\x00\x00\x00")
	}
}
