package tup

import (
	"encoding/binary"
	"testing"
)

// contiguousRunRegistry declares three uint32 fields (ids 0-2, eligible for
// STD_ARRAY collapsing) and two uint8 fields (ids 5-6, eligible for
// MICRO_ARRAY collapsing), so Pack should emit exactly two wire tuples for
// five logical elems.
func contiguousRunRegistry() *Registry {
	desc := &ActionStructDesc{
		Size: 16,
		Mandatory: []Elem{
			{ID: 0, Type: TypeUint32, Offset: 0, Value1: 0, Value2: ^uint64(0)},
			{ID: 1, Type: TypeUint32, Offset: 4, Value1: 0, Value2: ^uint64(0)},
			{ID: 2, Type: TypeUint32, Offset: 8, Value1: 0, Value2: ^uint64(0)},
			{ID: 5, Type: TypeUint8, Offset: 12, Value1: 0, Value2: 255},
			{ID: 6, Type: TypeUint8, Offset: 13, Value1: 0, Value2: 255},
		},
	}
	return &Registry{Classes: []Class{{ID: 0, Subclasses: []Subclass{{ID: 0, Actions: []ActionDef{{ActionID: 0, Desc: desc}}}}}}}
}

func TestPackCollapsesContiguousRuns(t *testing.T) {
	reg := contiguousRunRegistry()

	src := make([]byte, 16)
	binary.LittleEndian.PutUint32(src[0:], 10)
	binary.LittleEndian.PutUint32(src[4:], 20)
	binary.LittleEndian.PutUint32(src[8:], 30)
	src[12] = 40
	src[13] = 50

	dest := make([]byte, 64)
	n, err := Pack(reg, 0, src, dest, 0, 0)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	h, err := readHeader(dest[:n])
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if h.Elems.NumTuples != 2 {
		t.Fatalf("NumTuples = %d, want 2 (one STD_ARRAY + one MICRO_ARRAY)", h.Elems.NumTuples)
	}

	out := make([]byte, 16)
	if _, _, err := Unpack(reg, dest[:n], out); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if binary.LittleEndian.Uint32(out[0:]) != 10 ||
		binary.LittleEndian.Uint32(out[4:]) != 20 ||
		binary.LittleEndian.Uint32(out[8:]) != 30 ||
		out[12] != 40 || out[13] != 50 {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestPackUnknownAction(t *testing.T) {
	reg := contiguousRunRegistry()
	src := make([]byte, 16)
	dest := make([]byte, 64)
	if _, err := Pack(reg, actionID(9, 9, 9), src, dest, 0, 0); err == nil {
		t.Fatal("Pack with unknown action: expected error, got nil")
	}
}

func TestPackSrcTooSmall(t *testing.T) {
	reg := contiguousRunRegistry()
	dest := make([]byte, 64)
	if _, err := Pack(reg, 0, make([]byte, 4), dest, 0, 0); err == nil {
		t.Fatal("Pack with undersized src: expected error, got nil")
	}
}

func TestPackDestTooSmall(t *testing.T) {
	reg := contiguousRunRegistry()
	src := make([]byte, 16)
	if _, err := Pack(reg, 0, src, make([]byte, 2), 0, 0); err == nil {
		t.Fatal("Pack with undersized dest: expected error, got nil")
	}
}

func TestPackRoutedBroadcast(t *testing.T) {
	reg := contiguousRunRegistry()
	src := make([]byte, 16)
	dest := make([]byte, 64)

	n, err := PackRouted(reg, 0, src, dest, FlagBroadcast, 0, 42)
	if err != nil {
		t.Fatalf("PackRouted: %v", err)
	}

	h, err := readHeader(dest[:n])
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if !h.Route.Broadcast() {
		t.Fatalf("header route = %+v, want broadcast receiver", h.Route)
	}
	if h.Route.Sender != 42 {
		t.Fatalf("header sender = %d, want 42", h.Route.Sender)
	}
}

func TestPackSingularStdKeepsWideTypesSeparate(t *testing.T) {
	// int64 and uint64 are STD-shaped but never STD_ARRAY-eligible: even
	// though contiguous, each must stay its own tuple.
	desc := &ActionStructDesc{
		Size: 16,
		Mandatory: []Elem{
			{ID: 0, Type: TypeInt64, Offset: 0, Value1: 0, Value2: 1 << 62},
			{ID: 1, Type: TypeUint64, Offset: 8, Value1: 0, Value2: ^uint64(0)},
		},
	}
	reg := &Registry{Classes: []Class{{ID: 0, Subclasses: []Subclass{{ID: 0, Actions: []ActionDef{{ActionID: 0, Desc: desc}}}}}}}

	src := make([]byte, 16)
	binary.LittleEndian.PutUint64(src[0:], 123)
	binary.LittleEndian.PutUint64(src[8:], 456)

	dest := make([]byte, 64)
	n, err := Pack(reg, 0, src, dest, 0, 0)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	h, err := readHeader(dest[:n])
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if h.Elems.NumTuples != 2 {
		t.Fatalf("NumTuples = %d, want 2 (int64/uint64 must not collapse)", h.Elems.NumTuples)
	}

	out := make([]byte, 16)
	if _, _, err := Unpack(reg, dest[:n], out); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if binary.LittleEndian.Uint64(out[0:]) != 123 || binary.LittleEndian.Uint64(out[8:]) != 456 {
		t.Fatalf("round trip mismatch: %v", out)
	}
}
