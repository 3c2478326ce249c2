package omf

// Decoders for the standard TIS record set.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HK47196/go-omf/types"
)

func init() {
	registerRecord(decodeTheadr, nil, types.THEADR, types.LHEADR)
	registerRecord(decodeLNames, nil, types.LNAMES, types.LLNAMES)
	registerRecord(decodeSegdef, nil, types.SEGDEF, types.SEGDEF32)
	registerRecord(decodeGrpdef, nil, types.GRPDEF)
	registerRecord(decodePubdef, nil, types.PUBDEF, types.PUBDEF32, types.LPUBDEF, types.LPUBDEF32)
	registerRecord(decodeExtdef, nil, types.EXTDEF, types.LEXTDEF, types.LEXTDEF2)
	registerRecord(decodeCextdef, nil, types.CEXTDEF)
	registerRecord(decodeModend, nil, types.MODEND, types.MODEND32)
	registerRecord(decodeLinnum, nil, types.LINNUM, types.LINNUM32)
	registerRecord(decodeTypdef, nil, types.TYPDEF)
	registerRecord(decodeVernum, nil, types.VERNUM)
	registerRecord(decodeVendext, nil, types.VENDEXT)
	registerRecord(decodeLocsym, nil, types.LOCSYM)
	registerRecord(decodeAlias, nil, types.ALIAS)
}

// Theadr is a THEADR/LHEADR module header.
type Theadr struct {
	ModuleName string `json:"module_name"`
}

func (*Theadr) Kind() string { return "theadr" }

func decodeTheadr(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	return &Theadr{ModuleName: cur.Name()}, nil
}

// An LName is one entry added by an LNAMES/LLNAMES record.
type LName struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Reserved bool   `json:"reserved,omitempty"`
}

// LNames is an LNAMES/LLNAMES record.
type LNames struct {
	Local      bool    `json:"local"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Names      []LName `json:"names"`
}

func (*LNames) Kind() string { return "lnames" }

func decodeLNames(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &LNames{
		Local:      rec.Type == types.LLNAMES,
		StartIndex: len(f.lnames),
	}
	for cur.Remaining() > 0 {
		name := cur.Name()
		idx := f.addLName(name)
		p.Names = append(p.Names, LName{
			Index:    idx,
			Name:     name,
			Reserved: types.ReservedNames[name],
		})
	}
	p.EndIndex = len(f.lnames) - 1
	return p, nil
}

// SegDef is a SEGDEF/SEGDEF32 segment definition.
type SegDef struct {
	Is32Bit   bool               `json:"is_32bit"`
	ACBP      byte               `json:"acbp"`
	Alignment types.SegAlignment `json:"alignment"`
	Combine   types.SegCombine   `json:"combine"`
	Big       bool               `json:"big"`
	Use32     bool               `json:"use32"`

	// Absolute frame:offset, present only when alignment is Absolute.
	HasAbsolute    bool   `json:"has_absolute,omitempty"`
	AbsoluteFrame  uint16 `json:"absolute_frame,omitempty"`
	AbsoluteOffset byte   `json:"absolute_offset,omitempty"`

	Length uint64 `json:"length"`

	SegmentNameIndex int    `json:"segment_name_index"`
	ClassNameIndex   int    `json:"class_name_index"`
	OverlayNameIndex int    `json:"overlay_name_index"`
	SegmentName      string `json:"segment_name"`
	ClassName        string `json:"class_name"`
	OverlayName      string `json:"overlay_name"`

	// PharLap access byte. The U bit is authoritative for Use16/Use32.
	HasAccess bool            `json:"has_access,omitempty"`
	Access    types.SegAccess `json:"access,omitempty"`
	UseBit    bool            `json:"use_bit,omitempty"`

	ExtraByte *byte `json:"extra_byte,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*SegDef) Kind() string { return "segdef" }

func decodeSegdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	acbp, ok := cur.ReadByte()
	if !ok {
		return nil, &FormatError{rec.Offset, "missing ACBP byte in SEGDEF", nil}
	}

	alignRaw := (acbp >> 5) & 0x07
	p := &SegDef{
		Is32Bit:   is32,
		ACBP:      acbp,
		Alignment: types.SegAlignmentFromRaw(alignRaw, f.activeVariant),
		Combine:   types.SegCombine((acbp >> 2) & 0x07),
		Big:       acbp&0x02 != 0,
		Use32:     acbp&0x01 != 0,
	}

	if alignRaw == 0 {
		p.HasAbsolute = true
		p.AbsoluteFrame = uint16(cur.Numeric(2))
		b, _ := cur.ReadByte()
		p.AbsoluteOffset = b
	}

	length := uint64(cur.Numeric(cur.OffsetFieldSize(is32)))
	if p.Big && length == 0 {
		if is32 {
			length = types.SegSize4GB
		} else {
			length = types.SegSize64K
		}
	}
	p.Length = length

	p.SegmentNameIndex = cur.Index()
	p.ClassNameIndex = cur.Index()
	p.OverlayNameIndex = cur.Index()
	p.SegmentName = f.GetLName(p.SegmentNameIndex)
	p.ClassName = f.GetLName(p.ClassNameIndex)
	p.OverlayName = f.GetLName(p.OverlayNameIndex)

	if cur.Remaining() >= 1 {
		b, _ := cur.ReadByte()
		if f.activeVariant.SegdefHasAccessByte() {
			p.HasAccess = true
			p.Access = types.SegAccess(b & 0x03)
			p.UseBit = b&0x04 != 0
			p.Use32 = p.UseBit
		} else {
			p.ExtraByte = &b
			p.Warnings = append(p.Warnings, fmt.Sprintf("unexpected trailing byte 0x%02X", b))
		}
	}

	rawName := fmt.Sprintf("Seg#%d", len(f.segdefs))
	if p.SegmentNameIndex > 0 && p.SegmentNameIndex < len(f.lnames) {
		rawName = f.lnames[p.SegmentNameIndex]
	}
	f.addSegdef(rawName)
	return p, nil
}

// A GrpComponent is one component descriptor of a GRPDEF record.
type GrpComponent struct {
	// Kind is one of "segment", "external", "segdef_indices", "ltl",
	// "absolute", "unknown", or "truncated".
	Kind string `json:"kind"`

	SegmentIndex  int    `json:"segment_index,omitempty"`
	Segment       string `json:"segment,omitempty"`
	ExternalIndex int    `json:"external_index,omitempty"`
	External      string `json:"external,omitempty"`

	// SEGDEF-style triple for the obsolete 0xFD form.
	NameIndices []int `json:"name_indices,omitempty"`

	// LTL data for the obsolete 0xFB form.
	LTLData   byte   `json:"ltl_data,omitempty"`
	MaxLength uint16 `json:"max_length,omitempty"`
	GrpLength uint16 `json:"grp_length,omitempty"`

	// Absolute frame:offset for the obsolete 0xFA form.
	Frame       uint16 `json:"frame,omitempty"`
	FrameOffset byte   `json:"frame_offset,omitempty"`

	TypeByte byte `json:"type_byte"`
}

// GrpDef is a GRPDEF group definition.
type GrpDef struct {
	NameIndex  int            `json:"name_index"`
	Name       string         `json:"name"`
	IsFlat     bool           `json:"is_flat,omitempty"`
	Components []GrpComponent `json:"components,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

func (*GrpDef) Kind() string { return "grpdef" }

func decodeGrpdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &GrpDef{NameIndex: cur.Index()}
	p.Name = f.GetLName(p.NameIndex)

	rawName := ""
	if p.NameIndex > 0 && p.NameIndex < len(f.lnames) {
		rawName = f.lnames[p.NameIndex]
	}
	// FLAT is the virtual-zero pseudo-group used by 32-bit flat models.
	p.IsFlat = rawName == "FLAT"

loop:
	for cur.Remaining() > 0 {
		compType, _ := cur.ReadByte()
		comp := GrpComponent{TypeByte: compType}

		switch compType {
		case types.GrpCompSegmentIndex:
			if cur.Remaining() == 0 {
				comp.Kind = "truncated"
				p.Components = append(p.Components, comp)
				break loop
			}
			comp.Kind = "segment"
			comp.SegmentIndex = cur.Index()
			comp.Segment = f.GetSegdef(comp.SegmentIndex)
		case types.GrpCompExternalIndex:
			if cur.Remaining() == 0 {
				comp.Kind = "truncated"
				p.Components = append(p.Components, comp)
				break loop
			}
			comp.Kind = "external"
			comp.ExternalIndex = cur.Index()
			comp.External = f.GetExtdef(comp.ExternalIndex)
		case types.GrpCompSegdefIndices:
			if cur.Remaining() < 3 {
				comp.Kind = "truncated"
				p.Components = append(p.Components, comp)
				break loop
			}
			comp.Kind = "segdef_indices"
			comp.NameIndices = []int{cur.Index(), cur.Index(), cur.Index()}
		case types.GrpCompLTL:
			if cur.Remaining() < 5 {
				comp.Kind = "truncated"
				p.Components = append(p.Components, comp)
				break loop
			}
			comp.Kind = "ltl"
			b, _ := cur.ReadByte()
			comp.LTLData = b
			comp.MaxLength = uint16(cur.Numeric(2))
			comp.GrpLength = uint16(cur.Numeric(2))
		case types.GrpCompAbsolute:
			if cur.Remaining() < 3 {
				comp.Kind = "truncated"
				p.Components = append(p.Components, comp)
				break loop
			}
			comp.Kind = "absolute"
			comp.Frame = uint16(cur.Numeric(2))
			b, _ := cur.ReadByte()
			comp.FrameOffset = b
		default:
			comp.Kind = "unknown"
			p.Components = append(p.Components, comp)
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("unknown GRPDEF component type 0x%02X", compType))
			break loop
		}
		if comp.Kind != "truncated" && comp.Kind != "unknown" {
			p.Components = append(p.Components, comp)
		}
	}

	if rawName == "" {
		rawName = fmt.Sprintf("Grp#%d", len(f.grpdefs))
	}
	f.addGrpdef(rawName)
	return p, nil
}

// A PubSym is one symbol of a PUBDEF/LPUBDEF record.
type PubSym struct {
	Name      string `json:"name"`
	Offset    uint32 `json:"offset"`
	TypeIndex int    `json:"type_index"`
}

// PubDef is a PUBDEF/LPUBDEF public names definition.
type PubDef struct {
	Is32Bit bool `json:"is_32bit"`
	Local   bool `json:"local"`

	BaseGroupIndex   int    `json:"base_group_index"`
	BaseSegmentIndex int    `json:"base_segment_index"`
	BaseGroup        string `json:"base_group"`
	BaseSegment      string `json:"base_segment"`

	HasFrame bool   `json:"has_frame,omitempty"`
	Frame    uint16 `json:"frame,omitempty"`
	// FrameNote is informational: linkers ignore the frame when the base
	// group is set.
	FrameNote string `json:"frame_note,omitempty"`

	Symbols []PubSym `json:"symbols"`
}

func (*PubDef) Kind() string { return "pubdef" }

func decodePubdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	p := &PubDef{
		Is32Bit: is32,
		Local:   rec.Type == types.LPUBDEF || rec.Type == types.LPUBDEF32,
	}
	p.BaseGroupIndex = cur.Index()
	p.BaseSegmentIndex = cur.Index()
	p.BaseGroup = f.GetGrpdef(p.BaseGroupIndex)
	p.BaseSegment = f.GetSegdef(p.BaseSegmentIndex)

	if p.BaseSegmentIndex == 0 {
		p.HasFrame = true
		p.Frame = uint16(cur.Numeric(2))
		if p.BaseGroupIndex != 0 {
			p.FrameNote = "frame ignored by linker when base group != 0"
		}
	}

	for cur.Remaining() > 0 {
		name := cur.Name()
		offset := cur.Numeric(cur.OffsetFieldSize(is32))
		typeIdx := cur.Index()
		p.Symbols = append(p.Symbols, PubSym{Name: name, Offset: offset, TypeIndex: typeIdx})
	}
	return p, nil
}

// An ExtSym is one external of an EXTDEF/LEXTDEF record, carrying its
// 1-based index into the shared external-name table.
type ExtSym struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	TypeIndex int    `json:"type_index"`
}

// ExtDef is an EXTDEF/LEXTDEF external names definition.
type ExtDef struct {
	Local     bool     `json:"local"`
	Externals []ExtSym `json:"externals"`
}

func (*ExtDef) Kind() string { return "extdef" }

func decodeExtdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &ExtDef{Local: rec.Type == types.LEXTDEF || rec.Type == types.LEXTDEF2}

	for cur.Remaining() > 0 {
		name := cur.Name()
		typeIdx := cur.Index()
		idx := f.addExtdef(name)
		p.Externals = append(p.Externals, ExtSym{Index: idx, Name: name, TypeIndex: typeIdx})
	}
	return p, nil
}

// A CExtSym is one COMDAT external of a CEXTDEF record.
type CExtSym struct {
	Index     int    `json:"index"`
	NameIndex int    `json:"name_index"`
	Name      string `json:"name"`
	TypeIndex int    `json:"type_index"`
}

// CExtDef is a CEXTDEF record. The referenced LNAMEs enter the shared
// external-name table so COMDAT externs share the ordinary extern index
// space.
type CExtDef struct {
	Externals []CExtSym `json:"externals"`
}

func (*CExtDef) Kind() string { return "cextdef" }

func decodeCextdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &CExtDef{}

	for cur.Remaining() > 0 {
		nameIdx := cur.Index()
		typeIdx := cur.Index()
		name := fmt.Sprintf("LName#%d", nameIdx)
		if nameIdx >= 0 && nameIdx < len(f.lnames) {
			name = f.lnames[nameIdx]
		}
		idx := f.addExtdef(name)
		p.Externals = append(p.Externals, CExtSym{
			Index:     idx,
			NameIndex: nameIdx,
			Name:      name,
			TypeIndex: typeIdx,
		})
	}
	return p, nil
}

// A StartAddress is the optional start address of a MODEND record.
type StartAddress struct {
	FrameMethod   types.FrameMethod  `json:"frame_method"`
	FrameDatum    int                `json:"frame_datum,omitempty"`
	HasFrameDatum bool               `json:"has_frame_datum,omitempty"`
	TargetMethod  types.TargetMethod `json:"target_method"`
	TargetDatum   int                `json:"target_datum"`

	Displacement    uint32 `json:"displacement,omitempty"`
	HasDisplacement bool   `json:"has_displacement,omitempty"`
}

// ModEnd is a MODEND/MODEND32 module end.
type ModEnd struct {
	Is32Bit     bool `json:"is_32bit"`
	ModType     byte `json:"mod_type"`
	Main        bool `json:"main"`
	HasStart    bool `json:"has_start"`
	Relocatable bool `json:"relocatable"`

	Start *StartAddress `json:"start,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*ModEnd) Kind() string { return "modend" }

func decodeModend(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	modType, ok := cur.ReadByte()
	if !ok {
		return nil, &FormatError{rec.Offset, "missing module type byte in MODEND", nil}
	}

	p := &ModEnd{
		Is32Bit:     is32,
		ModType:     modType,
		Main:        modType&types.ModendMain != 0,
		HasStart:    modType&types.ModendHasStart != 0,
		Relocatable: modType&types.ModendRelocatable != 0,
	}
	if !p.HasStart {
		return p, nil
	}

	endData, ok := cur.ReadByte()
	if !ok {
		p.Warnings = append(p.Warnings, "truncated MODEND start address")
		return p, nil
	}

	frameMethod := types.FrameMethod((endData >> 4) & 0x07)
	pBit := (endData >> 2) & 0x01
	// The P bit acts as the high bit of the target method: methods 4-7
	// carry no displacement.
	targetMethod := types.TargetMethod(endData&0x03 | pBit<<2)

	if pBit != 0 {
		p.Warnings = append(p.Warnings, "MODEND P-bit set, must be 0 per spec")
	}

	start := &StartAddress{FrameMethod: frameMethod, TargetMethod: targetMethod}
	if frameMethod < 3 {
		start.FrameDatum = cur.Index()
		start.HasFrameDatum = true
	}
	start.TargetDatum = cur.Index()
	if targetMethod.HasDisplacement() {
		start.Displacement = cur.Numeric(cur.OffsetFieldSize(is32))
		start.HasDisplacement = true
	}
	p.Start = start
	return p, nil
}

// A LineEntry is one line-number entry. Line 0 marks the end of a function.
type LineEntry struct {
	Line          uint16 `json:"line"`
	Offset        uint32 `json:"offset"`
	EndOfFunction bool   `json:"end_of_function,omitempty"`
}

// LinNum is a LINNUM/LINNUM32 line-number record.
type LinNum struct {
	Is32Bit bool `json:"is_32bit"`

	BaseGroupIndex   int    `json:"base_group_index"`
	BaseSegmentIndex int    `json:"base_segment_index"`
	BaseGroup        string `json:"base_group"`
	BaseSegment      string `json:"base_segment"`

	Entries []LineEntry `json:"entries"`
}

func (*LinNum) Kind() string { return "linnum" }

func decodeLinnum(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	p := &LinNum{Is32Bit: is32}
	p.BaseGroupIndex = cur.Index()
	p.BaseSegmentIndex = cur.Index()
	p.BaseGroup = f.GetGrpdef(p.BaseGroupIndex)
	p.BaseSegment = f.GetSegdef(p.BaseSegmentIndex)

	offSize := cur.OffsetFieldSize(is32)
	for cur.Remaining() >= 2+offSize {
		line := uint16(cur.Numeric(2))
		offset := cur.Numeric(offSize)
		p.Entries = append(p.Entries, LineEntry{
			Line:          line,
			Offset:        offset,
			EndOfFunction: line == 0,
		})
	}
	return p, nil
}

// A TypeLeaf is one leaf descriptor of a TYPDEF record.
type TypeLeaf struct {
	LeafType byte   `json:"leaf_type"`
	Kind     string `json:"kind"` // "NEAR", "FAR", or "unknown"

	VarType     byte   `json:"var_type,omitempty"`
	VarTypeName string `json:"var_type_name,omitempty"`

	// NEAR: size in bits. FAR: element count and element type.
	SizeBits         uint32 `json:"size_bits,omitempty"`
	NumElements      uint32 `json:"num_elements,omitempty"`
	ElementTypeIndex int    `json:"element_type_index,omitempty"`

	Trailing []byte `json:"trailing,omitempty"`
}

// TypDef is a TYPDEF record, Microsoft stripped or Intel eight-leaf format.
// Most linkers ignore the actual types; each record claims one synthetic
// entry in the type table.
type TypDef struct {
	Obsolete bool       `json:"obsolete"`
	Name     string     `json:"name,omitempty"`
	EN       byte       `json:"en"`
	Format   string     `json:"format"` // "Microsoft" or "Intel"
	Leaves   []TypeLeaf `json:"leaves,omitempty"`
}

func (*TypDef) Kind() string { return "typdef" }

func decodeTypdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &TypDef{Obsolete: true, Name: cur.Name()}
	en, _ := cur.ReadByte()
	p.EN = en

	readLeaf := func() (TypeLeaf, bool) {
		leafType, ok := cur.ReadByte()
		if !ok {
			return TypeLeaf{}, false
		}
		leaf := TypeLeaf{LeafType: leafType}
		switch leafType {
		case types.TypdefLeafNear:
			leaf.Kind = "NEAR"
			vt, _ := cur.ReadByte()
			leaf.VarType = vt
			leaf.VarTypeName = types.TypdefVarName(vt)
			leaf.SizeBits = cur.VarInt()
		case types.TypdefLeafFar:
			leaf.Kind = "FAR"
			vt, _ := cur.ReadByte()
			leaf.VarType = vt
			leaf.VarTypeName = types.TypdefVarName(vt)
			leaf.NumElements = cur.VarInt()
			leaf.ElementTypeIndex = cur.Index()
		default:
			leaf.Kind = "unknown"
			leaf.Trailing = append([]byte(nil), cur.Rest()...)
			cur.ReadBytes(cur.Remaining())
		}
		return leaf, true
	}

	if en == 0 {
		p.Format = "Microsoft"
		if cur.Remaining() > 0 {
			if leaf, ok := readLeaf(); ok {
				p.Leaves = append(p.Leaves, leaf)
			}
		}
	} else {
		p.Format = "Intel"
		for i := 0; i < int(en) && cur.Remaining() > 0; i++ {
			leaf, ok := readLeaf()
			if !ok {
				break
			}
			p.Leaves = append(p.Leaves, leaf)
		}
	}

	f.addTypdef()
	return p, nil
}

// VerNum is a VERNUM OMF version record ("base.vendor.vendor_ver").
type VerNum struct {
	Version string `json:"version"`

	TISBase    string `json:"tis_base,omitempty"`
	VendorNum  string `json:"vendor_num,omitempty"`
	VendorVer  string `json:"vendor_ver,omitempty"`
	VendorName string `json:"vendor_name,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*VerNum) Kind() string { return "vernum" }

func decodeVernum(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &VerNum{Version: cur.Name()}
	parts := strings.Split(p.Version, ".")
	if len(parts) >= 3 {
		p.TISBase = parts[0]
		p.VendorNum = parts[1]
		p.VendorVer = parts[2]
		if n, err := strconv.Atoi(parts[1]); err == nil && n != 0 {
			name, ok := types.KnownVendors[uint16(n)]
			if !ok {
				name = "Unknown"
			}
			p.VendorName = name
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("non-TIS vendor extensions present (vendor %d: %s)", n, name))
		}
	}
	return p, nil
}

// VendExt is a VENDEXT vendor-extension record with an opaque payload.
type VendExt struct {
	VendorNum  uint16 `json:"vendor_num"`
	VendorName string `json:"vendor_name,omitempty"`
	Data       []byte `json:"data,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func (*VendExt) Kind() string { return "vendext" }

func decodeVendext(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &VendExt{VendorNum: uint16(cur.Numeric(2))}
	if name, ok := types.KnownVendors[p.VendorNum]; ok {
		p.VendorName = name
	} else {
		p.Warnings = append(p.Warnings, "unrecognized vendor number")
	}
	if cur.Remaining() > 0 {
		p.Data = append([]byte(nil), cur.Rest()...)
	}
	return p, nil
}

// LocSym is the obsolete LOCSYM record, same layout as PUBDEF.
type LocSym struct {
	Obsolete bool `json:"obsolete"`

	BaseGroupIndex   int    `json:"base_group_index"`
	BaseSegmentIndex int    `json:"base_segment_index"`
	BaseGroup        string `json:"base_group"`
	BaseSegment      string `json:"base_segment"`

	HasFrame  bool   `json:"has_frame,omitempty"`
	Frame     uint16 `json:"frame,omitempty"`
	FrameNote string `json:"frame_note,omitempty"`

	Symbols []PubSym `json:"symbols"`
}

func (*LocSym) Kind() string { return "locsym" }

func decodeLocsym(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &LocSym{Obsolete: true}
	p.BaseGroupIndex = cur.Index()
	p.BaseSegmentIndex = cur.Index()
	p.BaseGroup = f.GetGrpdef(p.BaseGroupIndex)
	p.BaseSegment = f.GetSegdef(p.BaseSegmentIndex)

	if p.BaseSegmentIndex == 0 {
		p.HasFrame = true
		p.Frame = uint16(cur.Numeric(2))
		if p.BaseGroupIndex != 0 {
			p.FrameNote = "frame ignored by linker when base group != 0"
		}
	}

	for cur.Remaining() > 0 {
		name := cur.Name()
		offset := cur.Numeric(2)
		typeIdx := cur.Index()
		p.Symbols = append(p.Symbols, PubSym{Name: name, Offset: offset, TypeIndex: typeIdx})
	}
	return p, nil
}

// An AliasEntry maps an alias name to its substitute.
type AliasEntry struct {
	Alias      string `json:"alias"`
	Substitute string `json:"substitute"`
}

// Alias is an ALIAS record.
type Alias struct {
	Aliases []AliasEntry `json:"aliases"`
}

func (*Alias) Kind() string { return "alias" }

func decodeAlias(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &Alias{}
	for cur.Remaining() > 0 {
		p.Aliases = append(p.Aliases, AliasEntry{
			Alias:      cur.Name(),
			Substitute: cur.Name(),
		})
	}
	return p, nil
}
