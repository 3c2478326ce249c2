package omf

// Decoders for the obsolete Intel 8086 records (TIS OMF 1.1 Appendix 3).
// These retain 16-bit field widths even in PharLap files; a diagnostic is
// attached when that mismatch occurs.

import (
	"fmt"

	"github.com/HK47196/go-omf/types"
)

func init() {
	registerRecord(decodeRheadr, nil, types.RHEADR)
	registerRecord(decodeRegint, nil, types.REGINT)
	registerRecord(decodeEnumeratedData, nil, types.REDATA, types.PEDATA)
	registerRecord(decodeIteratedData, nil, types.RIDATA, types.PIDATA)
	registerRecord(decodeOvldef, nil, types.OVLDEF)
	registerRecord(decodeEndrec, nil, types.ENDREC)
	registerRecord(decodeBlkdef, nil, types.BLKDEF)
	registerRecord(decodeBlkend, nil, types.BLKEND)
	registerRecord(decodeDebsym, nil, types.DEBSYM)
	registerRecord(decodeObsoleteLib, nil, types.LIBHED, types.LIBNAM, types.LIBLOC, types.LIBDIC)
}

// pharLapObsoleteWarning flags obsolete records occurring in PharLap files;
// their fields stay 16-bit regardless of the variant.
func pharLapObsoleteWarning(f *File, warnings []string) []string {
	if f.activeVariant == types.PharLap {
		return append(warnings, "obsolete record in a PharLap file; fields remain 16-bit")
	}
	return warnings
}

// RHeadr is the obsolete RHEADR record, emitted by LINK-86/LOCATE-86.
type RHeadr struct {
	Obsolete   bool   `json:"obsolete"`
	Name       string `json:"name,omitempty"`
	Attributes []byte `json:"attributes,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func (*RHeadr) Kind() string { return "rheadr" }

func decodeRheadr(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &RHeadr{Obsolete: true, Name: cur.Name()}
	if cur.Remaining() > 0 {
		p.Attributes = append([]byte(nil), cur.Rest()...)
	}
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// A RegisterInit is one initial register value from a REGINT record.
type RegisterInit struct {
	Register string `json:"register"`
	Value    uint16 `json:"value"`
}

// RegInt is the obsolete REGINT register initialization record.
type RegInt struct {
	Obsolete  bool           `json:"obsolete"`
	Registers []RegisterInit `json:"registers,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

func (*RegInt) Kind() string { return "regint" }

func decodeRegint(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &RegInt{Obsolete: true}
	for cur.Remaining() >= 3 {
		regType, _ := cur.ReadByte()
		name, ok := types.RegisterNames[regType]
		if !ok {
			name = fmt.Sprintf("Reg%d", regType)
		}
		p.Registers = append(p.Registers, RegisterInit{
			Register: name,
			Value:    uint16(cur.Numeric(2)),
		})
	}
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// EnumeratedData is the obsolete REDATA (relocatable) / PEDATA (physical)
// enumerated data record.
type EnumeratedData struct {
	Obsolete   bool   `json:"obsolete"`
	Relocatable bool  `json:"relocatable"`

	SegmentIndex int    `json:"segment_index,omitempty"`
	Segment      string `json:"segment,omitempty"`
	Frame        uint16 `json:"frame,omitempty"`
	Offset       uint16 `json:"offset"`
	// PhysicalAddress is frame<<4 + offset, for the PEDATA form.
	PhysicalAddress uint32 `json:"physical_address,omitempty"`

	DataLength int    `json:"data_length"`
	Data       []byte `json:"-"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*EnumeratedData) Kind() string { return "enumerated_data" }

func decodeEnumeratedData(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &EnumeratedData{Obsolete: true, Relocatable: rec.Type == types.REDATA}

	if p.Relocatable {
		p.SegmentIndex = cur.Index()
		p.Segment = f.GetSegdef(p.SegmentIndex)
		p.Offset = uint16(cur.Numeric(2))
	} else {
		p.Frame = uint16(cur.Numeric(2))
		p.Offset = uint16(cur.Numeric(2))
		p.PhysicalAddress = uint32(p.Frame)<<4 + uint32(p.Offset)
	}

	p.Data = cur.Rest()
	p.DataLength = len(p.Data)
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// IteratedData is the obsolete RIDATA / PIDATA iterated data record. The
// iterated blocks are left raw.
type IteratedData struct {
	Obsolete    bool `json:"obsolete"`
	Relocatable bool `json:"relocatable"`

	SegmentIndex int    `json:"segment_index,omitempty"`
	Segment      string `json:"segment,omitempty"`
	Frame        uint16 `json:"frame,omitempty"`
	Offset       uint16 `json:"offset"`
	PhysicalAddress uint32 `json:"physical_address,omitempty"`

	RemainingBytes int `json:"remaining_bytes"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*IteratedData) Kind() string { return "iterated_data" }

func decodeIteratedData(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &IteratedData{Obsolete: true, Relocatable: rec.Type == types.RIDATA}

	if p.Relocatable {
		p.SegmentIndex = cur.Index()
		p.Segment = f.GetSegdef(p.SegmentIndex)
		p.Offset = uint16(cur.Numeric(2))
	} else {
		p.Frame = uint16(cur.Numeric(2))
		p.Offset = uint16(cur.Numeric(2))
		p.PhysicalAddress = uint32(p.Frame)<<4 + uint32(p.Offset)
	}

	p.RemainingBytes = cur.Remaining()
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// OvlDef is the obsolete OVLDEF overlay definition.
type OvlDef struct {
	Obsolete     bool   `json:"obsolete"`
	OverlayName  string `json:"overlay_name"`
	Attribute    uint16 `json:"attribute,omitempty"`
	FileLocation uint32 `json:"file_location,omitempty"`
	Additional   []byte `json:"additional,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func (*OvlDef) Kind() string { return "ovldef" }

func decodeOvldef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &OvlDef{Obsolete: true, OverlayName: cur.Name()}
	if cur.Remaining() >= 2 {
		p.Attribute = uint16(cur.Numeric(2))
	}
	if cur.Remaining() >= 4 {
		p.FileLocation = cur.Numeric(4)
	}
	if cur.Remaining() > 0 {
		p.Additional = append([]byte(nil), cur.Rest()...)
	}
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// EndRec is the obsolete ENDREC record, closing a block or overlay.
type EndRec struct {
	Obsolete bool     `json:"obsolete"`
	Warnings []string `json:"warnings,omitempty"`
}

func (*EndRec) Kind() string { return "endrec" }

func decodeEndrec(f *File, rec *Record) (Payload, error) {
	return &EndRec{Obsolete: true, Warnings: pharLapObsoleteWarning(f, nil)}, nil
}

// BlkDef is the obsolete BLKDEF debug block definition.
type BlkDef struct {
	Obsolete bool `json:"obsolete"`

	BaseGroupIndex   int    `json:"base_group_index"`
	BaseSegmentIndex int    `json:"base_segment_index"`
	BaseGroup        string `json:"base_group"`
	BaseSegment      string `json:"base_segment"`
	HasFrame         bool   `json:"has_frame,omitempty"`
	Frame            uint16 `json:"frame,omitempty"`

	BlockName string `json:"block_name"`
	Offset    uint16 `json:"offset"`

	DebugLength uint16 `json:"debug_length,omitempty"`
	DebugData   []byte `json:"debug_data,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*BlkDef) Kind() string { return "blkdef" }

func decodeBlkdef(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &BlkDef{Obsolete: true}

	p.BaseGroupIndex = cur.Index()
	p.BaseSegmentIndex = cur.Index()
	p.BaseGroup = f.GetGrpdef(p.BaseGroupIndex)
	p.BaseSegment = f.GetSegdef(p.BaseSegmentIndex)
	if p.BaseSegmentIndex == 0 {
		p.HasFrame = true
		p.Frame = uint16(cur.Numeric(2))
	}

	p.BlockName = cur.Name()
	p.Offset = uint16(cur.Numeric(2))

	if cur.Remaining() > 0 {
		p.DebugLength = uint16(cur.Numeric(2))
		if p.DebugLength > 0 && cur.Remaining() > 0 {
			n := int(p.DebugLength)
			if n > cur.Remaining() {
				n = cur.Remaining()
			}
			data, _ := cur.ReadBytes(n)
			p.DebugData = append([]byte(nil), data...)
		}
	}
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// BlkEnd is the obsolete BLKEND record, closing a BLKDEF scope.
type BlkEnd struct {
	Obsolete bool     `json:"obsolete"`
	Warnings []string `json:"warnings,omitempty"`
}

func (*BlkEnd) Kind() string { return "blkend" }

func decodeBlkend(f *File, rec *Record) (Payload, error) {
	return &BlkEnd{Obsolete: true, Warnings: pharLapObsoleteWarning(f, nil)}, nil
}

// DebSym is the obsolete DEBSYM debug symbols record, left raw.
type DebSym struct {
	Obsolete bool     `json:"obsolete"`
	Data     []byte   `json:"data,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (*DebSym) Kind() string { return "debsym" }

func decodeDebsym(f *File, rec *Record) (Payload, error) {
	p := &DebSym{Obsolete: true}
	if len(rec.Content) > 0 {
		p.Data = append([]byte(nil), rec.Content...)
	}
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}

// ObsoleteLib covers the obsolete Intel library records LIBHED, LIBNAM,
// LIBLOC and LIBDIC. LIBHED collides with the EXESTR comment class byte but
// is distinguished by being a record type rather than a comment class.
type ObsoleteLib struct {
	Obsolete   bool     `json:"obsolete"`
	RecordName string   `json:"record_name"`
	Modules    []string `json:"modules,omitempty"`
	Locations  []uint32 `json:"locations,omitempty"`
	Data       []byte   `json:"data,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func (*ObsoleteLib) Kind() string { return "obsolete_lib" }

func decodeObsoleteLib(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	p := &ObsoleteLib{Obsolete: true, RecordName: rec.Name()}

	switch rec.Type {
	case types.LIBNAM:
		for cur.Remaining() > 0 {
			name := cur.Name()
			if name == "" {
				break
			}
			p.Modules = append(p.Modules, name)
		}
	case types.LIBLOC:
		for cur.Remaining() >= 4 {
			p.Locations = append(p.Locations, cur.Numeric(4))
		}
	default:
		if cur.Remaining() > 0 {
			p.Data = append([]byte(nil), cur.Rest()...)
		}
	}
	p.Warnings = pharLapObsoleteWarning(f, p.Warnings)
	return p, nil
}
