package tup

import "encoding/binary"

// Header is the mandatory 4-byte TUP header plus its optional sub-headers.
// All multi-byte fields are little-endian; the wire is 32-bit word aligned
// on both peers (spec Non-goals: no endianness negotiation).
type Header struct {
	Class    uint8
	Subclass uint8
	Action   uint8

	Status       bool  // false = ok, true = error
	Priority     bool  // real-time hint
	Datagram     bool  // no reply expected
	RoutePresent bool  // route sub-header follows
	ElemsPresent bool  // elems sub-header follows
	Vendor       uint8 // 3-bit vendor-defined field

	Route Route // valid iff RoutePresent
	Elems Elems // valid iff ElemsPresent
}

// Route is the optional 8-byte routing sub-header.
type Route struct {
	Receiver uint32
	Sender   uint32
}

// Broadcast reports whether this route targets every receiver.
func (r Route) Broadcast() bool { return r.Receiver == broadcastReceiver }

// Elems is the optional elems sub-header: how many tuples follow and how
// many 32-bit words their combined bodies occupy.
type Elems struct {
	NumTuples uint32
	Remaining uint8
	Size      uint32 // 24 bits: tuple-region length in 32-bit words
}

// ActionID returns the 24-bit composite action identifier.
func (h Header) ActionID() uint32 {
	return actionID(h.Class, h.Subclass, h.Action)
}

// byteLen returns the total size in bytes of the mandatory header plus
// whichever optional sub-headers are present.
func (h Header) byteLen() int {
	n := headerWordSize
	if h.RoutePresent {
		n += routeWordsSize
	}
	if h.ElemsPresent {
		n += elemsWordsSize
	}
	return n
}

// writeHeader serializes h into buf[0:], returning the number of bytes
// written. buf must have at least h.byteLen() bytes of room.
func writeHeader(buf []byte, h Header) int {
	word := uint32(h.Class) | uint32(h.Subclass)<<8 | uint32(h.Action)<<16

	if h.Status {
		word |= 1 << 24
	}
	if h.Priority {
		word |= 1 << 25
	}
	if h.Datagram {
		word |= 1 << 26
	}
	if h.RoutePresent {
		word |= 1 << 27
	}
	if h.ElemsPresent {
		word |= 1 << 28
	}
	word |= uint32(h.Vendor&0x7) << 29

	binary.LittleEndian.PutUint32(buf[0:4], word)
	off := headerWordSize

	if h.RoutePresent {
		binary.LittleEndian.PutUint32(buf[off:off+4], h.Route.Receiver)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], h.Route.Sender)
		off += routeWordsSize
	}

	if h.ElemsPresent {
		binary.LittleEndian.PutUint32(buf[off:off+4], h.Elems.NumTuples)
		remSize := uint32(h.Elems.Remaining) | (h.Elems.Size&0xFFFFFF)<<8
		binary.LittleEndian.PutUint32(buf[off+4:off+8], remSize)
		off += elemsWordsSize
	}

	return off
}

// readHeader parses a Header from the start of src. It validates only that
// enough bytes exist for whichever sub-headers the flag bits claim are
// present; field-level validation of num_tuples/size happens in Unpack.
func readHeader(src []byte) (Header, error) {
	if len(src) < headerWordSize {
		return Header{}, newErr(ErrCodeBufferTooSmall, "header needs %d bytes, got %d", headerWordSize, len(src))
	}

	word := binary.LittleEndian.Uint32(src[0:4])

	h := Header{
		Class:        uint8(word),
		Subclass:     uint8(word >> 8),
		Action:       uint8(word >> 16),
		Status:       word&(1<<24) != 0,
		Priority:     word&(1<<25) != 0,
		Datagram:     word&(1<<26) != 0,
		RoutePresent: word&(1<<27) != 0,
		ElemsPresent: word&(1<<28) != 0,
		Vendor:       uint8(word>>29) & 0x7,
	}

	off := headerWordSize

	if h.RoutePresent {
		if len(src) < off+routeWordsSize {
			return Header{}, newErr(ErrCodeMalformedHeader, "route sub-header truncated")
		}
		h.Route.Receiver = binary.LittleEndian.Uint32(src[off : off+4])
		h.Route.Sender = binary.LittleEndian.Uint32(src[off+4 : off+8])
		off += routeWordsSize
	}

	if h.ElemsPresent {
		if len(src) < off+elemsWordsSize {
			return Header{}, newErr(ErrCodeMalformedHeader, "elems sub-header truncated")
		}
		h.Elems.NumTuples = binary.LittleEndian.Uint32(src[off : off+4])
		remSize := binary.LittleEndian.Uint32(src[off+4 : off+8])
		h.Elems.Remaining = uint8(remSize)
		h.Elems.Size = (remSize >> 8) & 0xFFFFFF
		off += elemsWordsSize
	}

	return h, nil
}
