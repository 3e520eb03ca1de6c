package schemagen

import (
	"testing"

	"github.com/liamg-sof/tup"
)

func TestActionBuilder(t *testing.T) {
	desc := NewActionBuilder(12).
		Field(Field{ID: 0, Type: tup.TypeUint32, Offset: 0, Min: 0, Max: 100}).
		Field(Field{ID: 1, Type: tup.TypeUint32, Offset: 4, Min: 0, Max: 100}).
		Field(Field{ID: 5, Type: tup.TypeUint8, Offset: 8, Optional: true}).
		Build()

	if desc.Size != 12 {
		t.Fatalf("Size = %d, want 12", desc.Size)
	}
	if len(desc.Mandatory) != 2 || len(desc.Optional) != 1 {
		t.Fatalf("mandatory=%d optional=%d, want 2/1", len(desc.Mandatory), len(desc.Optional))
	}

	e := desc.Mandatory[1]
	if e.Type != tup.TypeUint32 || e.Offset != 4 {
		t.Fatalf("Mandatory[1] = %+v", e)
	}
}

func TestActionBuilderStringMaxLen(t *testing.T) {
	desc := NewActionBuilder(8).
		Field(Field{ID: 0, Type: tup.TypeString, Offset: 0, MaxLen: 8}).
		Build()

	e := desc.Mandatory[0]
	if e.Value2 != 8 {
		t.Fatalf("string elem Value2 = %d, want 8", e.Value2)
	}
}

func TestActionBuilderMaskValue1(t *testing.T) {
	desc := NewActionBuilder(4).
		Field(Field{ID: 0, Type: tup.TypeUint32Mask, Offset: 0, Min: 0x0F}).
		Build()

	e := desc.Mandatory[0]
	if e.Value1 != 0x0F {
		t.Fatalf("mask elem Value1 = %#x, want 0xf", e.Value1)
	}
}

func TestActionBuilderChildren(t *testing.T) {
	child := NewActionBuilder(2).
		Field(Field{ID: 0, Type: tup.TypeUint16, Offset: 0}).
		Build()

	parent := NewActionBuilder(0).
		Child(child).
		Build()

	if len(parent.Children) != 1 {
		t.Fatalf("Children len = %d, want 1", len(parent.Children))
	}
	if len(parent.Children[0].Mandatory) != 1 {
		t.Fatal("child descriptor missing its own elem 0")
	}
}

func TestRegistryBuilder(t *testing.T) {
	desc := NewActionBuilder(4).
		Field(Field{ID: 0, Type: tup.TypeUint32, Offset: 0}).
		Build()

	reg := NewRegistryBuilder().
		Action(1, 2, 3, desc).
		Build()

	def, err := reg.GetActionDef(tupActionID(1, 2, 3))
	if err != nil {
		t.Fatalf("GetActionDef: %v", err)
	}
	if def.Desc.Size != 4 {
		t.Fatalf("GetActionDef returned wrong descriptor: %+v", def)
	}
}

func TestRegistryBuilderMultipleActionsSameSubclass(t *testing.T) {
	d1 := NewActionBuilder(4).Build()
	d2 := NewActionBuilder(8).Build()

	reg := NewRegistryBuilder().
		Action(1, 1, 1, d1).
		Action(1, 1, 2, d2).
		Build()

	got1, err := reg.GetActionDef(tupActionID(1, 1, 1))
	if err != nil || got1.Desc.Size != 4 {
		t.Fatalf("action 1 = (%+v, %v)", got1, err)
	}
	got2, err := reg.GetActionDef(tupActionID(1, 1, 2))
	if err != nil || got2.Desc.Size != 8 {
		t.Fatalf("action 2 = (%+v, %v)", got2, err)
	}
}

// tupActionID mirrors the unexported tup.actionID composition rule (class
// in the low byte, action in the high byte) since schemagen lives outside
// package tup and tests the registry only through its exported surface.
func tupActionID(class, subclass, action uint8) uint32 {
	return uint32(class) | uint32(subclass)<<8 | uint32(action)<<16
}
