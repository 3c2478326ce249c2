package types

// A Variant selects one of the incompatible OMF dialects. Variants change how
// records are parsed (field sizes, extra fields, symbol-reference encodings);
// they are distinct from features, which add semantics without changing
// parsing.
type Variant uint8

const (
	// TISStandard is baseline OMF-86/286/386 per the TIS 1.1 specification.
	TISStandard Variant = iota
	// PharLap is Easy OMF-386, the 32-bit DOS-extender dialect with fixed
	// 4-byte offset fields.
	PharLap
	// IBMLink386 is the OS/2 2.x+ dialect with inline names in some records.
	IBMLink386
)

func (v Variant) String() string {
	switch v {
	case PharLap:
		return "PharLap Easy OMF-386"
	case IBMLink386:
		return "IBM LINK386"
	}
	return "TIS Standard"
}

// OffsetFieldSize returns the byte width of offset/displacement/length
// fields. TIS and IBM use 2 for 16-bit records and 4 for 32-bit records;
// PharLap always uses 4.
func (v Variant) OffsetFieldSize(is32bit bool) int {
	if v == PharLap {
		return 4
	}
	if is32bit {
		return 4
	}
	return 2
}

// LIDATARepeatCountSize returns the byte width of the LIDATA repeat count.
// PharLap keeps 2-byte repeat counts even in LIDATA32.
func (v Variant) LIDATARepeatCountSize(is32bit bool) int {
	if v == PharLap {
		return 2
	}
	if is32bit {
		return 4
	}
	return 2
}

// SegdefHasAccessByte reports whether SEGDEF carries a trailing access byte
// after the overlay name index (PharLap only).
func (v Variant) SegdefHasAccessByte() bool { return v == PharLap }

// ComdatUsesInlineName reports whether COMDAT stores its symbol as a
// length-prefixed name instead of an LNAMES index (IBM only).
func (v Variant) ComdatUsesInlineName() bool { return v == IBMLink386 }

// NbkpatUsesInlineName reports whether NBKPAT stores its symbol inline.
func (v Variant) NbkpatUsesInlineName() bool { return v == IBMLink386 }

// LinsymUsesInlineName reports whether LINSYM stores its symbol inline.
func (v Variant) LinsymUsesInlineName() bool { return v == IBMLink386 }
