package tup

// TupleVisitor receives callbacks as Walk traverses a message's tuples
// without needing a Registry - useful for diagnostic dumping of wire bytes
// whose schema the caller doesn't have to hand. Adapted from walker.go's
// Visitor idiom (VisitField/VisitArrayStart/VisitArrayEnd), generalized
// from a reflective struct-tag schema to TUP's small set of fixed tuple
// shapes.
type TupleVisitor interface {
	VisitHeader(h Header)
	// VisitTuple is called for every tuple in traversal order. Returning
	// skip=true stops Walk from descending into a TUPLE_ARRAY's nested
	// tuples (VisitTupleEnd is still called for it).
	VisitTuple(v TupleView, depth int) (skip bool)
	VisitTupleEnd(v TupleView, depth int)
}

// Walk parses src's header and tuples, calling visitor for each one found.
// It never consults a schema, so unknown tuple ids are visited exactly
// like known ones - Walk is for inspection, Unpack is for validation.
func Walk(src []byte, visitor TupleVisitor) error {
	h, err := readHeader(src)
	if err != nil {
		return err
	}
	visitor.VisitHeader(h)

	bodyStart := h.byteLen()
	limit := len(src)
	if h.ElemsPresent {
		limit = bodyStart + int(h.Elems.Size)*4
		if limit > len(src) {
			return newErr(ErrCodeTruncatedTuple, "elems size %d words exceeds message (%d bytes available)", h.Elems.Size, len(src)-bodyStart)
		}
	}

	// With no elems sub-header there is no declared tuple count to bound
	// the walk by; fall back to consuming every tuple up to limit, the
	// same behavior Walk had before elems-driven counting was added.
	remaining := ^uint32(0)
	if h.ElemsPresent {
		remaining = h.Elems.NumTuples
	}

	return walkTuples(src, bodyStart, limit, visitor, &remaining, 0)
}

// walkTuples mirrors unpack.c's tuple_for_each: a TUPLE_ARRAY's nested
// tuples share the same end-of-message bound as their parent, not a region
// computed from the array's own byte width, and are bounded by its own
// count rather than a fresh off/limit pair.
func walkTuples(src []byte, off, limit int, visitor TupleVisitor, remaining *uint32, depth int) error {
	if depth > MaxDepth {
		return newErr(ErrCodeTooDeep, "tuple nesting exceeds max depth %d", MaxDepth)
	}

	for off < limit {
		if *remaining == 0 {
			break
		}

		v, err := readTupleAt(src, off, limit)
		if err != nil {
			return err
		}

		skip := visitor.VisitTuple(v, depth)
		if !skip && v.Kind == KindTupleArray {
			sub := uint32(v.Count)
			if err := walkTuples(src, v.dataOff, limit, visitor, &sub, depth+1); err != nil {
				return err
			}
		}

		visitor.VisitTupleEnd(v, depth)
		off += v.Size
		*remaining--
	}

	return nil
}
