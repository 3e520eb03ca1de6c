package tup

import "encoding/binary"

// run describes one contiguous group of same-shape elems that pack into a
// single tuple (length 1 for a non-continuous elem). Deciding the shape
// up-front from a run, rather than mutating a tuple's type in place as
// later elems arrive, is the re-architecture spec.md 9 calls for: it
// removes both the 2-byte MICRO->MICRO_ARRAY growth special case and the
// self-modifying-wire idiom of the original tuple_inc_elems.
type run struct {
	shape TupleKind // KindStd or KindMicro - the *singular* shape
	elems []Elem
}

// stdArrayEligible reports whether t's wire width (4 bytes) matches
// STD_ARRAY's fixed per-element slot. int64/double/uuid/string/data are
// STD-shaped as singular tuples (their own tuple carries its own byte
// count) but can never join a multi-element run: STD_ARRAY has no
// per-element width field, so only the uniform 4-byte family may collapse.
func stdArrayEligible(t TupleDataType) bool {
	switch t {
	case TypeInt32, TypeUint32, TypeUint32Mask, TypeEnum, TypeFloat:
		return true
	default:
		return false
	}
}

// buildRuns walks a descriptor's combined mandatory+optional elems in
// ascending id order and groups maximal contiguous same-shape runs,
// mirroring get_first_elem/get_next_elem/continuous_elems's traversal.
func buildRuns(desc *ActionStructDesc) []run {
	var runs []run

	current, ok := desc.firstElem()
	if !ok {
		return nil
	}

	r := run{shape: shapeForType(current.Type), elems: []Elem{current}}

	for {
		next, ok := desc.nextElem(current)
		if !ok {
			break
		}
		contiguous := next.ID == current.ID+1 && shapeForType(next.Type) == r.shape
		if contiguous && r.shape == KindStd {
			contiguous = stdArrayEligible(current.Type) && stdArrayEligible(next.Type)
		}
		if contiguous {
			r.elems = append(r.elems, next)
		} else {
			runs = append(runs, r)
			r = run{shape: shapeForType(next.Type), elems: []Elem{next}}
		}
		current = next
	}
	runs = append(runs, r)

	return runs
}

// Pack emits a self-describing byte stream for actionID into dest: a
// mandatory header followed by the tuples the registry's descriptor
// declares for src, collapsing contiguous same-shape/same-id-neighborhood
// elems into array tuples. flags maps caller hints onto the header per
// spec.md 6.2 - see DESIGN.md's flags-to-header-bit entry for the
// BROADCAST/REPLY_* resolution.
func Pack(reg *Registry, actionID uint32, src []byte, dest []byte, flags uint32, destAddr uint32) (int, error) {
	return packInto(reg, actionID, src, dest, flags, nil)
}

// PackRouted is Pack with an explicit route sub-header (receiver/sender).
// BROADCAST in flags forces receiver to the broadcast sentinel regardless
// of the receiver argument.
func PackRouted(reg *Registry, actionID uint32, src []byte, dest []byte, flags uint32, receiver, sender uint32) (int, error) {
	route := Route{Receiver: receiver, Sender: sender}
	if flags&FlagBroadcast != 0 {
		route.Receiver = broadcastReceiver
	}
	return packInto(reg, actionID, src, dest, flags, &route)
}

func packInto(reg *Registry, actionID uint32, src []byte, dest []byte, flags uint32, route *Route) (int, error) {
	actionDef, err := reg.GetActionDef(actionID)
	if err != nil {
		return 0, err
	}
	desc := actionDef.Desc

	if uint32(len(src)) < desc.Size {
		return 0, newErr(ErrCodeBufferTooSmall, "src has %d bytes, descriptor needs %d", len(src), desc.Size)
	}

	class, subclass, action := splitActionID(actionID)
	h := Header{
		Class:        class,
		Subclass:     subclass,
		Action:       action,
		Priority:     flags&FlagPriority != 0,
		Datagram:     flags&FlagDatagram != 0,
		ElemsPresent: true,
	}
	if flags&FlagReplyNack != 0 {
		h.Status = true
	} else if flags&FlagReplyAck != 0 {
		h.Status = false
	}

	if route != nil {
		h.RoutePresent = true
		h.Route = *route
	} else if flags&FlagBroadcast != 0 {
		h.RoutePresent = true
		h.Route = Route{Receiver: broadcastReceiver}
	}

	headerLen := h.byteLen()
	if len(dest) < headerLen {
		return 0, newErr(ErrCodeBufferTooSmall, "dest has %d bytes, header needs %d", len(dest), headerLen)
	}

	offset := headerLen
	tuples := uint32(0)

	for _, r := range buildRuns(desc) {
		n, err := packRun(r, src, dest, &offset)
		if err != nil {
			return 0, err
		}
		tuples += uint32(n)
	}

	if tuples == 0 {
		return 0, newErr(ErrCodeInvalidArgument, "action 0x%x has no elems to pack", actionID)
	}

	words := offset - headerLen
	if words%4 != 0 {
		return 0, newErr(ErrCodeInvalidArgument, "tuple region %d bytes is not word aligned", words)
	}
	sizeWords := words / 4
	if sizeWords >= 1<<24 {
		return 0, newErr(ErrCodeMessageTooLong, "packed size %d words exceeds 24-bit size field", sizeWords)
	}

	h.Elems = Elems{NumTuples: tuples, Remaining: 0, Size: uint32(sizeWords)}
	writeHeader(dest, h)

	return offset, nil
}

// packRun packs one contiguous same-shape run of elems starting at
// *offset, which must already be word-aligned (the header length is a
// multiple of 4 and each tuple's total is word-rounded, so every run
// starts aligned). It returns the tuple count contributed (always 1: a run becomes
// either one singular tuple or one array tuple, never more).
func packRun(r run, src []byte, dest []byte, offset *int) (int, error) {
	if *offset%4 != 0 {
		return 0, newErr(ErrCodeInvalidArgument, "run start %d is not word aligned", *offset)
	}

	first := r.elems[0]
	isArray := len(r.elems) > 1

	var kind TupleKind
	if isArray {
		kind, _ = arrayKindOf(r.shape)
	} else {
		kind = r.shape
	}

	width := wireSlotSize(first)
	headerLen := 4
	if kind == KindMicro {
		headerLen = 2
	}
	bodyLen := int(width) * len(r.elems)
	total := roundUpWord(headerLen + bodyLen)

	if *offset+total > len(dest) {
		return 0, newErr(ErrCodeBufferOverflow, "tuple for elem %d at offset %d overflows dest (%d bytes)", first.ID, *offset, len(dest))
	}

	// sizeWords is STD's payload-size-in-words field; trailing word-padding
	// bytes beyond the elem's declared width are included (and zeroed) but
	// are never part of the logical value - dispatchTuple slices by the
	// elem's own schema-declared width, not by this field.
	var sizeWords uint16
	if kind == KindStd {
		sizeWords = uint16((total - headerLen) / 4)
	}
	count := uint16(len(r.elems))
	writeTupleHeader(dest, *offset, kind, first.ID, sizeWords, count, 0)

	dataOff := *offset + headerLen
	for i, e := range r.elems {
		if uint64(e.Offset)+uint64(elemDataSize(e)) > uint64(len(src)) {
			return 0, newErr(ErrCodeBufferOverflow, "elem %d offset %d+%d overflows src (%d bytes)", e.ID, e.Offset, elemDataSize(e), len(src))
		}
		slot := dest[dataOff+i*int(width) : dataOff+(i+1)*int(width)]
		if err := encodeElem(e, src, slot); err != nil {
			return 0, err
		}
	}

	for i := dataOff + bodyLen; i < *offset+total; i++ {
		dest[i] = 0
	}

	*offset += total
	return 1, nil
}

// encodeElem writes one field's native-width value from src into its wire
// slot, widening 8-bit/boolean values into their 16-bit MICRO slot as
// spec.md 4.6 describes.
func encodeElem(e Elem, src []byte, slot []byte) error {
	off := e.Offset

	switch e.Type {
	case TypeInt8:
		binary.LittleEndian.PutUint16(slot, uint16(uint8(int8(src[off]))))
	case TypeUint8, TypeUint8Mask:
		binary.LittleEndian.PutUint16(slot, uint16(src[off]))
	case TypeInt16, TypeUint16, TypeUint16Mask, TypeBoolean:
		copy(slot, src[off:off+2])
	case TypeInt32, TypeUint32, TypeUint32Mask, TypeEnum, TypeFloat:
		copy(slot, src[off:off+4])
	case TypeInt64, TypeUint64, TypeUint64Mask, TypeDouble:
		copy(slot, src[off:off+8])
	case TypeUUID:
		copy(slot, src[off:off+16])
	case TypeString, TypeData:
		copy(slot, src[off:off+uint32(len(slot))])
	default:
		return newErr(ErrCodeInvalidArgument, "unknown elem type %d for id %d", e.Type, e.ID)
	}
	return nil
}
