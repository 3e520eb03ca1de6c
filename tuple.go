package tup

import "encoding/binary"

// TupleView is a parsed, bounds-checked view onto one tuple in a byte
// buffer: the tagged variant spec.md 4.1/4.3's design note asks for in
// place of the original's void* shape overlay.
type TupleView struct {
	Kind      TupleKind
	ID        uint16
	HeaderLen int // bytes from tuple start to first data byte
	Count     uint16
	ElemBytes uint16 // VAR_ARRAY / TUPLE_ARRAY only
	Size      int    // total bytes, header + payload
	dataOff   int    // absolute offset of first data byte within the buffer
}

// parseTupleDescriptor decodes the mandatory 2-byte {type:3|id:13} word.
func parseTupleDescriptor(word uint16) (TupleKind, uint16) {
	return TupleKind(word >> 13), word & TupleMaxID
}

func encodeTupleDescriptor(kind TupleKind, id uint16) uint16 {
	return uint16(kind)<<13 | (id & TupleMaxID)
}

// readTupleAt parses the tuple starting at byte offset off within buf,
// bounds-checking every shape-dependent field against limit (an exclusive
// byte offset, normally end-of-message) before trusting it. Never panics on
// adversarial input - the src buffer in Unpack is fully untrusted.
func readTupleAt(buf []byte, off, limit int) (TupleView, error) {
	if off < 0 || off+tupleDescSize > limit || off+tupleDescSize > len(buf) {
		return TupleView{}, newErr(ErrCodeTruncatedTuple, "tuple descriptor at %d exceeds message", off)
	}

	descWord := binary.LittleEndian.Uint16(buf[off : off+2])
	kind, id := parseTupleDescriptor(descWord)

	v := TupleView{Kind: kind, ID: id}

	switch kind {
	case KindStd:
		if err := need(buf, off, 4, limit); err != nil {
			return TupleView{}, err
		}
		words := binary.LittleEndian.Uint16(buf[off+2 : off+4])
		v.HeaderLen = 4
		v.Count = 1
		v.Size = 4 + int(words)*4

	case KindMicro:
		v.HeaderLen = 2
		v.Count = 1
		v.Size = 4 // micro tuples are still word-aligned as a whole

	case KindStdArray:
		if err := need(buf, off, 4, limit); err != nil {
			return TupleView{}, err
		}
		count := binary.LittleEndian.Uint16(buf[off+2 : off+4])
		v.HeaderLen = 4
		v.Count = count
		v.Size = 4 + int(count)*4

	case KindMicroArray:
		if err := need(buf, off, 4, limit); err != nil {
			return TupleView{}, err
		}
		count := binary.LittleEndian.Uint16(buf[off+2 : off+4])
		v.HeaderLen = 4
		v.Count = count
		v.Size = roundUpWord(4 + int(count)*2)

	case KindVarArray, KindTupleArray:
		if err := need(buf, off, 6, limit); err != nil {
			return TupleView{}, err
		}
		count := binary.LittleEndian.Uint16(buf[off+2 : off+4])
		elemBytes := binary.LittleEndian.Uint16(buf[off+4 : off+6])
		v.HeaderLen = 6
		v.Count = count
		v.ElemBytes = elemBytes
		// spec.md 9's Open Question: the C reference's tuple_size for
		// VAR_ARRAY/TUPLE_ARRAY is "sizeof(hdr) + count + elem_bytes",
		// dimensionally wrong. We adopt the corrected formula,
		// count * elem_bytes, word-rounded.
		v.Size = roundUpWord(6 + int(count)*int(elemBytes))

	default:
		return TupleView{}, newErr(ErrCodeTruncatedTuple, "reserved tuple type %d at %d", kind, off)
	}

	v.dataOff = off + v.HeaderLen

	if v.Size <= 0 || off+v.Size > limit || off+v.Size > len(buf) {
		return TupleView{}, newErr(ErrCodeTruncatedTuple, "tuple at %d (kind %s, size %d) exceeds message", off, kind, v.Size)
	}

	return v, nil
}

func need(buf []byte, off, n, limit int) error {
	if off+n > limit || off+n > len(buf) {
		return newErr(ErrCodeTruncatedTuple, "tuple header at %d needs %d bytes", off, n)
	}
	return nil
}

// dataWidth returns the byte width of one data element within this tuple.
// KindStd carries exactly one element whose width is whatever the wire
// declared in its size field - unlike KindStdArray, which always packs
// fixed 4-byte slots (see stdArrayEligible), a singular STD tuple may hold
// an 8-byte, 16-byte, or variable-length (string/data) payload.
func (v TupleView) dataWidth() int {
	switch v.Kind {
	case KindStd:
		return v.Size - v.HeaderLen
	case KindStdArray:
		return 4
	case KindMicro, KindMicroArray:
		return 2
	case KindVarArray, KindTupleArray:
		return int(v.ElemBytes)
	default:
		return 0
	}
}

// elemAt returns the byte slice for data element i (0-based) of this tuple,
// bounds-checked against buf.
func (v TupleView) elemAt(buf []byte, i int) ([]byte, error) {
	w := v.dataWidth()
	start := v.dataOff + i*w
	end := start + w
	if i < 0 || i >= int(v.Count) || start < 0 || end > len(buf) || end > v.dataOff+v.Size-v.HeaderLen {
		return nil, newErr(ErrCodeTruncatedTuple, "tuple data index %d out of range", i)
	}
	return buf[start:end], nil
}

// writeTupleHeader serializes a tuple's header (descriptor plus
// shape-specific size/count fields) at buf[off:], returning the header's
// byte length. size is the STD-shape payload size in words (ignored for
// other shapes); count is the STD_ARRAY/MICRO_ARRAY/VAR_ARRAY/TUPLE_ARRAY
// element count; elemBytes is the VAR_ARRAY/TUPLE_ARRAY element width.
func writeTupleHeader(buf []byte, off int, kind TupleKind, id uint16, size, count, elemBytes uint16) int {
	binary.LittleEndian.PutUint16(buf[off:off+2], encodeTupleDescriptor(kind, id))

	switch kind {
	case KindStd:
		binary.LittleEndian.PutUint16(buf[off+2:off+4], size)
		return 4
	case KindMicro:
		return 2
	case KindStdArray, KindMicroArray:
		binary.LittleEndian.PutUint16(buf[off+2:off+4], count)
		return 4
	case KindVarArray, KindTupleArray:
		binary.LittleEndian.PutUint16(buf[off+2:off+4], count)
		binary.LittleEndian.PutUint16(buf[off+4:off+6], elemBytes)
		return 6
	default:
		return 0
	}
}

// arrayKindOf returns the array-shaped sibling of a singular shape, or the
// kind itself if it is already an array shape (the VAR/TUPLE array family,
// which has no distinct singular form, returns itself with ok = true). Only
// the reserved kinds report ok = false.
func arrayKindOf(k TupleKind) (TupleKind, bool) {
	switch k {
	case KindStd:
		return KindStdArray, true
	case KindMicro:
		return KindMicroArray, true
	case KindStdArray, KindMicroArray, KindVarArray, KindTupleArray:
		return k, true
	default:
		return 0, false
	}
}
