// Package schemagen builds tup.Registry trees from a declarative field list
// instead of hand-assembling []tup.Elem/tup.ActionStructDesc literals.
// Grounded on the teacher's cmd/glint/structgenerator.go, which accumulates
// a struct definition field-by-field from a source schema and then emits
// it; schemagen accumulates an ActionStructDesc the same way, but emits a
// runtime *tup.ActionStructDesc rather than generated Go source, since
// TUP's schema is fixed at compile time by the application (there is no
// wire-carried schema to introspect the way glint's PrinterSchema has).
package schemagen

import "github.com/liamg-sof/tup"

// Field describes one elem in a declarative action/sub-action layout.
type Field struct {
	ID       uint16
	Type     tup.TupleDataType
	Offset   uint32
	Min, Max uint64 // numeric range, or permitted mask (Min only) for *Mask types
	MaxLen   uint64 // TypeString/TypeData only
	Optional bool
}

func (f Field) toElem() tup.Elem {
	e := tup.Elem{ID: f.ID, Type: f.Type, Offset: f.Offset, Value1: f.Min, Value2: f.Max}
	switch f.Type {
	case tup.TypeString, tup.TypeData:
		e.Value2 = f.MaxLen
	case tup.TypeUint8Mask, tup.TypeUint16Mask, tup.TypeUint32Mask, tup.TypeUint64Mask:
		e.Value1 = f.Min // permitted-bit mask lives in Value1 only
	}
	return e
}

// ActionBuilder accumulates a single action (or nested sub-action)
// descriptor field by field, mirroring structGenerator.generateField's
// one-field-at-a-time construction.
type ActionBuilder struct {
	size      uint32
	offset    uint32
	mandatory []tup.Elem
	optional  []tup.Elem
	children  []*tup.ActionStructDesc
}

// NewActionBuilder starts a descriptor for a structure of the given byte
// size (the record Pack reads from / Unpack writes into).
func NewActionBuilder(structSize uint32) *ActionBuilder {
	return &ActionBuilder{size: structSize}
}

// Field adds one elem, mandatory unless f.Optional is set.
func (b *ActionBuilder) Field(f Field) *ActionBuilder {
	e := f.toElem()
	if f.Optional {
		b.optional = append(b.optional, e)
	} else {
		b.mandatory = append(b.mandatory, e)
	}
	return b
}

// Child appends a nested sub-action descriptor (reached when a TUPLE_ARRAY
// tuple's own elems resolve into it). Unpack/Walk never pick a child by the
// array tuple's wire id - every nested tuple's id is looked up against the
// whole descriptor tree (this action's own elems first, then each child's,
// recursively), so children may be added in any order.
func (b *ActionBuilder) Child(desc *tup.ActionStructDesc) *ActionBuilder {
	b.children = append(b.children, desc)
	return b
}

// Build emits the finished descriptor.
func (b *ActionBuilder) Build() *tup.ActionStructDesc {
	return &tup.ActionStructDesc{
		Size:      b.size,
		Offset:    b.offset,
		Mandatory: b.mandatory,
		Optional:  b.optional,
		Children:  b.children,
	}
}

// RegistryBuilder accumulates a process-wide schema tree class by class,
// the same incremental-accumulate-then-emit shape as ActionBuilder, one
// level up.
type RegistryBuilder struct {
	classes map[uint8]*classBuilder
	order   []uint8
}

type classBuilder struct {
	subclasses map[uint8]*subclassBuilder
	order      []uint8
}

type subclassBuilder struct {
	actions []tup.ActionDef
}

// NewRegistryBuilder starts an empty registry.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{classes: make(map[uint8]*classBuilder)}
}

// Action registers desc under the given class/subclass/action identifier
// triple, creating intermediate class/subclass nodes on first use.
func (r *RegistryBuilder) Action(class, subclass, action uint8, desc *tup.ActionStructDesc) *RegistryBuilder {
	c, ok := r.classes[class]
	if !ok {
		c = &classBuilder{subclasses: make(map[uint8]*subclassBuilder)}
		r.classes[class] = c
		r.order = append(r.order, class)
	}
	s, ok := c.subclasses[subclass]
	if !ok {
		s = &subclassBuilder{}
		c.subclasses[subclass] = s
		c.order = append(c.order, subclass)
	}
	s.actions = append(s.actions, tup.ActionDef{ActionID: action, Desc: desc})
	return r
}

// Build emits the finished registry, with classes and subclasses ordered
// by first insertion (lookup within Registry is linear scan by id, so
// ordering doesn't affect correctness, only diagnostic output order).
func (r *RegistryBuilder) Build() *tup.Registry {
	reg := &tup.Registry{}
	for _, cid := range r.order {
		cb := r.classes[cid]
		class := tup.Class{ID: cid}
		for _, sid := range cb.order {
			sb := cb.subclasses[sid]
			class.Subclasses = append(class.Subclasses, tup.Subclass{ID: sid, Actions: sb.actions})
		}
		reg.Classes = append(reg.Classes, class)
	}
	return reg
}
