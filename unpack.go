package tup

// Unpack parses a TUP message from src (fully untrusted wire bytes) into
// dest, a zeroed record matching the registry's descriptor for the
// message's action. It returns the action identifier and route receiver
// (0 if no route sub-header was present, broadcastReceiver if the message
// was addressed to everyone).
func Unpack(reg *Registry, src []byte, dest []byte) (actionID uint32, destAddr uint32, err error) {
	h, receiver, _, err := unpackInto(reg, src, dest)
	if err != nil {
		return 0, 0, err
	}
	return h.ActionID(), receiver, nil
}

// UnpackRoute is Unpack but also reports the sender half of the route
// sub-header (0 if the message carried no route).
func UnpackRoute(reg *Registry, src []byte, dest []byte) (actionID uint32, receiver uint32, sender uint32, err error) {
	h, recv, send, err := unpackInto(reg, src, dest)
	if err != nil {
		return 0, 0, 0, err
	}
	return h.ActionID(), recv, send, nil
}

func unpackInto(reg *Registry, src []byte, dest []byte) (Header, uint32, uint32, error) {
	h, err := readHeader(src)
	if err != nil {
		return Header{}, 0, 0, err
	}
	if !h.ElemsPresent {
		return Header{}, 0, 0, newErr(ErrCodeMalformedHeader, "elems sub-header missing")
	}
	if h.Elems.NumTuples == 0 || h.Elems.Size == 0 {
		return Header{}, 0, 0, newErr(ErrCodeMalformedHeader, "elems sub-header declares %d tuples in %d words", h.Elems.NumTuples, h.Elems.Size)
	}

	actionDef, err := reg.GetActionDef(h.ActionID())
	if err != nil {
		return Header{}, 0, 0, err
	}
	if uint32(len(dest)) < actionDef.Desc.Size {
		return Header{}, 0, 0, newErr(ErrCodeBufferTooSmall, "dest has %d bytes, descriptor needs %d", len(dest), actionDef.Desc.Size)
	}

	bodyStart := h.byteLen()
	limit := len(src)
	if h.ElemsPresent {
		limit = bodyStart + int(h.Elems.Size)*4
		if limit > len(src) {
			return Header{}, 0, 0, newErr(ErrCodeTruncatedTuple, "elems size %d words exceeds message (%d bytes available)", h.Elems.Size, len(src)-bodyStart)
		}
	}

	remaining := uint32(0)
	if h.ElemsPresent {
		remaining = h.Elems.NumTuples
	}

	if _, err := unpackTuples(actionDef.Desc, src, bodyStart, limit, dest, &remaining, 0); err != nil {
		return Header{}, 0, 0, err
	}

	return h, h.Route.Receiver, h.Route.Sender, nil
}

// unpackTuples walks tuples from off to limit, dispatching each id to the
// descriptor (or its children, for nested sub-actions) and decrementing
// *remaining. It mirrors unpack.c's tuple_for_each/tuple_unpack: a
// TUPLE_ARRAY recurses back into unpackTuples through dispatchTuple, with
// an explicit depth counter threaded through every call in place of the
// original's single global cursor, so a malformed message cannot recurse
// past MaxDepth regardless of how its TUPLE_ARRAY nesting is shaped.
func unpackTuples(desc *ActionStructDesc, src []byte, off, limit int, dest []byte, remaining *uint32, depth int) (int, error) {
	if depth > MaxDepth {
		return off, newErr(ErrCodeTooDeep, "tuple nesting exceeds max depth %d", MaxDepth)
	}

	for off < limit {
		if *remaining == 0 {
			break
		}

		v, err := readTupleAt(src, off, limit)
		if err != nil {
			return off, err
		}

		if err := dispatchTuple(desc, v, src, limit, dest, remaining, depth); err != nil {
			return off, err
		}

		off += v.Size
		*remaining--
	}

	return off, nil
}

// dispatchTuple resolves one tuple's id against desc (searching child
// descriptors too) and validates/stores its data elements. Unknown ids are
// silently skipped per spec.md 4.4's forward-compatibility rule. A
// TUPLE_ARRAY carries no id lookup of its own (tuple_for_each never
// consults get_tuple_elem for it): it recurses into the tuples that start
// at its data offset, bounded by its count and the same end-of-message
// limit, using the same desc, so the nested tuples resolve against desc's
// mandatory/optional/children exactly as top-level tuples do.
func dispatchTuple(desc *ActionStructDesc, v TupleView, src []byte, limit int, dest []byte, remaining *uint32, depth int) error {
	if v.Kind == KindTupleArray {
		sub := uint32(v.Count)
		if _, err := unpackTuples(desc, src, v.dataOff, limit, dest, &sub, depth+1); err != nil {
			return err
		}
		return nil
	}

	elem, ok := desc.lookupElem(v.ID)
	if !ok {
		return nil // unknown tuple id: skip for forward compatibility
	}

	want := shapeForType(elem.Type)
	if v.Kind != want && arrayShapeOf(want) != v.Kind {
		return newErr(ErrCodeTypeMismatch, "elem %d expects shape %s, got %s", elem.ID, want, v.Kind)
	}

	if !v.Kind.IsArray() {
		// A singular STD tuple's declared size field counts word-rounded
		// payload bytes, which may include trailing padding beyond the
		// elem's own schema-declared width (e.g. a fixed-length string
		// whose max length isn't a multiple of 4) - slice by the elem's
		// width, not the tuple's rounded total. For every other type the
		// wire's declared width must match the elem's exactly: this is the
		// Go counterpart of unpack.c's elem_insert_data comparing
		// type_data_size to elem_data_size before ever touching the value.
		width := int(wireSlotSize(elem))
		avail := v.dataWidth()
		switch elem.Type {
		case TypeString, TypeData:
			if width > avail {
				return newErr(ErrCodeTypeMismatch, "elem %d needs up to %d bytes, tuple declares %d", elem.ID, width, avail)
			}
		default:
			if width != avail {
				return newErr(ErrCodeTypeMismatch, "elem %d expects %d bytes, tuple declares %d", elem.ID, width, avail)
			}
		}
		if v.dataOff+width > len(src) {
			return newErr(ErrCodeTruncatedTuple, "elem %d needs %d bytes, tuple has %d", elem.ID, width, avail)
		}
		slot := src[v.dataOff : v.dataOff+width]
		return validateAndStore(elem, slot, dest)
	}

	// An array tuple covers a contiguous run of ids starting at v.ID; each
	// data element maps back to lookupElem(v.ID + i). Every array slot has
	// the same fixed wire width (4 bytes for STD_ARRAY, 2 for MICRO_ARRAY)
	// regardless of which elem occupies it, so an elem whose own width
	// disagrees - an 8/16-byte or variable-length STD-shaped type matched
	// against a STD_ARRAY tuple, say - must be rejected before elemAt hands
	// its fixed-width slot to validateAndStore; otherwise a wider type's
	// decode reads past the slot.
	for i := 0; i < int(v.Count); i++ {
		e, ok := desc.lookupElem(v.ID + uint16(i))
		if !ok {
			continue
		}
		if int(wireSlotSize(e)) != v.dataWidth() {
			return newErr(ErrCodeTypeMismatch, "elem %d expects %d bytes, array slot is %d", e.ID, wireSlotSize(e), v.dataWidth())
		}
		slot, err := v.elemAt(src, i)
		if err != nil {
			return err
		}
		if err := validateAndStore(e, slot, dest); err != nil {
			return err
		}
	}
	return nil
}

func arrayShapeOf(singular TupleKind) TupleKind {
	k, _ := arrayKindOf(singular)
	return k
}
