package tup

// ActionStructDesc is a schema tree node describing one action, or one
// nested sub-record within an action, matching ipct_action_struct_desc in
// the original builder header.
type ActionStructDesc struct {
	// Size is the size in bytes of the C/Go structure this descriptor maps.
	Size uint32

	// Offset is this descriptor's byte offset within its parent structure,
	// meaningful only when this descriptor appears as a child (sub-action).
	// Pack and Unpack never read it: every Elem.Offset is already absolute
	// from the top-level record's base.
	Offset uint32

	// ArrayElems is the repeat count when this descriptor describes an
	// element of a fixed-length inline array, or 0 when singular.
	ArrayElems int

	Mandatory []Elem
	Optional  []Elem

	Children []*ActionStructDesc
}

// allElems iterates mandatory then optional, matching get_tuple_elem's
// "mandatory first, then optional" search order - the wire allows any
// ordering, the schema is the source of ordering for Pack only.
func (d *ActionStructDesc) allElems(yield func(Elem) bool) {
	for _, e := range d.Mandatory {
		if !yield(e) {
			return
		}
	}
	for _, e := range d.Optional {
		if !yield(e) {
			return
		}
	}
}

// lookupElem searches mandatory then optional for elem.id == id, then
// descends into each child descriptor. Returns ok=false (not an error) if
// nothing matches - unknown ids are dropped during Unpack for forward
// compatibility.
func (d *ActionStructDesc) lookupElem(id uint16) (Elem, bool) {
	var found Elem
	var ok bool
	d.allElems(func(e Elem) bool {
		if e.ID == id {
			found, ok = e, true
			return false
		}
		return true
	})
	if ok {
		return found, true
	}
	for _, child := range d.Children {
		if e, ok := child.lookupElem(id); ok {
			return e, true
		}
	}
	return Elem{}, false
}

// firstElem returns the lowest-id elem across mandatory and optional, or
// ok=false if the descriptor declares none, mirroring get_first_elem.
func (d *ActionStructDesc) firstElem() (Elem, bool) {
	var first Elem
	id := uint16(TupleMaxID) + 1
	found := false
	d.allElems(func(e Elem) bool {
		if e.ID < id {
			first, id, found = e, e.ID, true
		}
		return true
	})
	return first, found
}

// nextElem returns the lowest-id elem strictly greater than current.ID, or
// ok=false if current was the last, mirroring get_next_elem.
func (d *ActionStructDesc) nextElem(current Elem) (Elem, bool) {
	var next Elem
	nextID := uint16(TupleMaxID) + 1
	found := false
	d.allElems(func(e Elem) bool {
		if e.ID > current.ID && e.ID < nextID {
			next, nextID, found = e, e.ID, true
		}
		return true
	})
	return next, found
}

// ActionDef names a descriptor under a 24-bit action identifier's low
// 8 bits (the action byte; class and subclass select the parent nodes).
type ActionDef struct {
	ActionID uint8
	Desc     *ActionStructDesc
}

// Subclass groups actions under an 8-bit subclass id.
type Subclass struct {
	ID      uint8
	Actions []ActionDef
}

// Class groups subclasses under an 8-bit class id.
type Class struct {
	ID         uint8
	Subclasses []Subclass
}

// Registry is the process-wide, read-only schema tree: class -> subclass ->
// action -> descriptor. Build one Registry per process (or per test) and
// never mutate it after Pack/Unpack calls begin - see spec.md 5 and
// DESIGN.md's "handle passed at call time" resolution of the "avoid a
// mutable singleton" design note.
type Registry struct {
	Classes []Class
}

func (r *Registry) getClass(id uint8) (*Class, error) {
	for i := range r.Classes {
		if r.Classes[i].ID == id {
			return &r.Classes[i], nil
		}
	}
	return nil, newErr(ErrCodeUnknownClass, "class %d not in registry", id)
}

func (c *Class) getSubclass(id uint8) (*Subclass, error) {
	for i := range c.Subclasses {
		if c.Subclasses[i].ID == id {
			return &c.Subclasses[i], nil
		}
	}
	return nil, newErr(ErrCodeUnknownSubclass, "subclass %d not in class %d", id, c.ID)
}

func (s *Subclass) getAction(id uint8) (*ActionDef, error) {
	for i := range s.Actions {
		if s.Actions[i].ActionID == id {
			return &s.Actions[i], nil
		}
	}
	return nil, newErr(ErrCodeUnknownAction, "action %d not in subclass %d", id, s.ID)
}

// GetActionDef composes getClass/getSubclass/getAction to resolve a full
// action identifier to its descriptor, matching get_action_def.
func (r *Registry) GetActionDef(id uint32) (*ActionDef, error) {
	classByte, subclassByte, actionByte := splitActionID(id)

	class, err := r.getClass(classByte)
	if err != nil {
		return nil, err
	}
	subclass, err := class.getSubclass(subclassByte)
	if err != nil {
		return nil, err
	}
	return subclass.getAction(actionByte)
}
