package omf

// Decoders for the Microsoft extension records.

import (
	"github.com/HK47196/go-omf/types"
)

func init() {
	registerRecord(decodeComdef, nil, types.COMDEF, types.LCOMDEF)
	registerRecord(decodeComdat, nil, types.COMDAT, types.COMDAT32)
	registerRecord(decodeBakpat, nil, types.BAKPAT, types.BAKPAT32)
	registerRecord(decodeNbkpat, nil, types.NBKPAT, types.NBKPAT32)
	registerRecord(decodeLinsym, nil, types.LINSYM, types.LINSYM32)
}

// A ComDefSym is one communal definition. CommKind is "FAR", "NEAR", "Borland"
// (data type doubles as a segment index) or "Unknown".
type ComDefSym struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	TypeIndex int    `json:"type_index"`
	DataType  byte   `json:"data_type"`
	CommKind  string `json:"comm_kind"`

	// FAR: element count and size. NEAR/Borland/Unknown: Length.
	NumElements uint32 `json:"num_elements,omitempty"`
	ElementSize uint32 `json:"element_size,omitempty"`
	TotalSize   uint64 `json:"total_size,omitempty"`
	Length      uint32 `json:"length,omitempty"`

	SegIndex int `json:"seg_index,omitempty"`
}

// ComDef is a COMDEF/LCOMDEF communal names definition. Every name enters
// the shared external-name table: fixups reference communals and ordinary
// externals through one index space.
type ComDef struct {
	Local       bool        `json:"local"`
	Definitions []ComDefSym `json:"definitions"`
	Warnings    []string    `json:"warnings,omitempty"`
}

func (*ComDef) Kind() string { return "comdef" }

func decodeComdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &ComDef{Local: rec.Type == types.LCOMDEF}

	for cur.Remaining() > 0 {
		name := cur.Name()
		typeIdx := cur.Index()
		dataType, ok := cur.ReadByte()
		if !ok {
			p.Warnings = append(p.Warnings, "truncated COMDEF record")
			break
		}

		def := ComDefSym{Name: name, TypeIndex: typeIdx, DataType: dataType}
		switch {
		case dataType == types.ComdefFar:
			def.CommKind = "FAR"
			def.NumElements = cur.VarInt()
			def.ElementSize = cur.VarInt()
			def.TotalSize = uint64(def.NumElements) * uint64(def.ElementSize)
		case dataType == types.ComdefNear:
			def.CommKind = "NEAR"
			def.Length = cur.VarInt()
		case dataType >= 0x01 && dataType <= types.ComdefBorlandMax:
			def.CommKind = "Borland"
			def.SegIndex = int(dataType)
			def.Length = cur.VarInt()
		default:
			def.CommKind = "Unknown"
			def.Length = cur.VarInt()
		}

		def.Index = f.addExtdef(name)
		p.Definitions = append(p.Definitions, def)
	}
	return p, nil
}

// ComDat is a COMDAT/COMDAT32 initialized communal data record.
type ComDat struct {
	Is32Bit bool `json:"is_32bit"`

	Flags        byte `json:"flags"`
	Continuation bool `json:"continuation"`
	Iterated     bool `json:"iterated"`
	Local        bool `json:"local"`
	DataInCode   bool `json:"data_in_code"`

	Selection  types.ComdatSelection  `json:"selection"`
	Allocation types.ComdatAllocation `json:"allocation"`
	Alignment  types.ComdatAlign      `json:"alignment"`

	EnumOffset uint32 `json:"enum_offset"`
	TypeIndex  int    `json:"type_index"`

	// Base addressing, present only for explicit allocation.
	BaseGroupIndex   int    `json:"base_group_index,omitempty"`
	BaseSegmentIndex int    `json:"base_segment_index,omitempty"`
	BaseGroup        string `json:"base_group,omitempty"`
	BaseSegment      string `json:"base_segment,omitempty"`
	HasFrame         bool   `json:"has_frame,omitempty"`
	Frame            uint16 `json:"frame,omitempty"`

	Symbol string `json:"symbol"`

	DataOffset int    `json:"data_offset"`
	DataLength int    `json:"data_length"`
	Data       []byte `json:"-"`

	IteratedBlocks       []*LIDataBlock `json:"iterated_blocks,omitempty"`
	IteratedExpandedSize uint64         `json:"iterated_expanded_size,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*ComDat) Kind() string { return "comdat" }

func decodeComdat(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	flags, ok1 := cur.ReadByte()
	attrib, ok2 := cur.ReadByte()
	align, ok3 := cur.ReadByte()
	if !ok1 || !ok2 || !ok3 {
		return nil, &FormatError{rec.Offset, "truncated COMDAT header", nil}
	}

	p := &ComDat{
		Is32Bit:      is32,
		Flags:        flags,
		Continuation: flags&types.ComdatContinuation != 0,
		Iterated:     flags&types.ComdatIterated != 0,
		Local:        flags&types.ComdatLocal != 0,
		DataInCode:   flags&types.ComdatDataInCode != 0,
		Selection:    types.ComdatSelection(attrib >> 4),
		Allocation:   types.ComdatAllocation(attrib & 0x0F),
		Alignment:    types.ComdatAlign(align),
	}

	p.EnumOffset = cur.Numeric(cur.OffsetFieldSize(is32))
	p.TypeIndex = cur.Index()

	if p.Allocation == types.AllocExplicit {
		p.BaseGroupIndex = cur.Index()
		p.BaseSegmentIndex = cur.Index()
		p.BaseGroup = f.GetGrpdef(p.BaseGroupIndex)
		p.BaseSegment = f.GetSegdef(p.BaseSegmentIndex)
		if p.BaseGroupIndex == 0 && p.BaseSegmentIndex == 0 {
			p.HasFrame = true
			p.Frame = uint16(cur.Numeric(2))
		}
	}

	if f.activeVariant.ComdatUsesInlineName() {
		p.Symbol = cur.Name()
	} else {
		nameIdx := cur.Index()
		p.Symbol = f.GetLName(nameIdx)
	}

	p.DataOffset = rec.Offset + 3 + cur.Pos()
	p.Data = cur.Rest()
	p.DataLength = len(p.Data)

	if p.Iterated && p.DataLength > 0 {
		blocks, warnings := parseLIDataBlocks(cur, is32)
		p.IteratedBlocks = blocks
		p.Warnings = append(p.Warnings, warnings...)
		for _, b := range blocks {
			p.IteratedExpandedSize += b.computeExpandedSize()
		}
	}
	return p, nil
}

// A BackpatchEntry is one BAKPAT patch site.
type BackpatchEntry struct {
	SegmentIndex int                     `json:"segment_index"`
	Segment      string                  `json:"segment"`
	Location     types.BackpatchLocation `json:"location"`
	Offset       uint32                  `json:"offset"`
	Value        uint32                  `json:"value"`
}

// BakPat is a BAKPAT/BAKPAT32 backpatch record.
type BakPat struct {
	Is32Bit  bool             `json:"is_32bit"`
	Entries  []BackpatchEntry `json:"entries"`
	Warnings []string         `json:"warnings,omitempty"`
}

func (*BakPat) Kind() string { return "bakpat" }

func decodeBakpat(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	p := &BakPat{Is32Bit: is32}
	for cur.Remaining() > 0 {
		segIdx := cur.Index()
		locType, ok := cur.ReadByte()
		if !ok {
			p.Warnings = append(p.Warnings, "truncated BAKPAT record")
			break
		}

		// DWord patches appear in 16-bit records in the wild; the value is
		// still read at the 16-bit record width.
		if locType == 2 && rec.Type == types.BAKPAT {
			p.Warnings = append(p.Warnings, "location type 2 (DWord) only valid for BAKPAT32 records")
		}

		valSize := cur.OffsetFieldSize(is32)
		p.Entries = append(p.Entries, BackpatchEntry{
			SegmentIndex: segIdx,
			Segment:      f.GetSegdef(segIdx),
			Location:     types.BackpatchLocationFromRaw(locType, f.activeVariant),
			Offset:       cur.Numeric(valSize),
			Value:        cur.Numeric(valSize),
		})
	}
	return p, nil
}

// A NamedBackpatchEntry is one NBKPAT patch site, addressed by symbol.
type NamedBackpatchEntry struct {
	Location types.BackpatchLocation `json:"location"`
	Symbol   string                  `json:"symbol"`
	Offset   uint32                  `json:"offset"`
	Value    uint32                  `json:"value"`
}

// NBkPat is an NBKPAT/NBKPAT32 named backpatch record. Note the inverted
// pairing: 0xC8 is the 32-bit form.
type NBkPat struct {
	Is32Bit  bool                  `json:"is_32bit"`
	Entries  []NamedBackpatchEntry `json:"entries"`
	Warnings []string              `json:"warnings,omitempty"`
}

func (*NBkPat) Kind() string { return "nbkpat" }

func decodeNbkpat(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	p := &NBkPat{Is32Bit: is32}
	for cur.Remaining() > 0 {
		locType, ok := cur.ReadByte()
		if !ok {
			p.Warnings = append(p.Warnings, "truncated NBKPAT record")
			break
		}

		var symbol string
		if f.activeVariant.NbkpatUsesInlineName() {
			symbol = cur.Name()
		} else {
			nameIdx := cur.Index()
			symbol = f.GetLName(nameIdx)
		}

		valSize := cur.OffsetFieldSize(is32)
		p.Entries = append(p.Entries, NamedBackpatchEntry{
			Location: types.BackpatchLocationFromRaw(locType, f.activeVariant),
			Symbol:   symbol,
			Offset:   cur.Numeric(valSize),
			Value:    cur.Numeric(valSize),
		})
	}
	return p, nil
}

// LinSym is a LINSYM/LINSYM32 record: line numbers for a COMDAT symbol.
type LinSym struct {
	Is32Bit      bool        `json:"is_32bit"`
	Continuation bool        `json:"continuation"`
	Symbol       string      `json:"symbol"`
	Entries      []LineEntry `json:"entries"`
}

func (*LinSym) Kind() string { return "linsym" }

func decodeLinsym(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	flags, ok := cur.ReadByte()
	if !ok {
		return nil, &FormatError{rec.Offset, "truncated LINSYM header", nil}
	}

	p := &LinSym{
		Is32Bit:      is32,
		Continuation: flags&types.ComdatContinuation != 0,
	}

	if f.activeVariant.LinsymUsesInlineName() {
		p.Symbol = cur.Name()
	} else {
		nameIdx := cur.Index()
		p.Symbol = f.GetLName(nameIdx)
	}

	offSize := cur.OffsetFieldSize(is32)
	for cur.Remaining() >= 2+offSize {
		line := uint16(cur.Numeric(2))
		p.Entries = append(p.Entries, LineEntry{
			Line:          line,
			Offset:        cur.Numeric(offSize),
			EndOfFunction: line == 0,
		})
	}
	return p, nil
}
