package omf

// Watcom COMENT class handlers: processor/model (9BH), disassembler
// directives (FDH) and the third-level linker-directive dispatch (FEH).

import (
	"fmt"
	"time"

	"github.com/HK47196/go-omf/types"
)

func init() {
	registerComent(handleWatProcModel, nil, types.ClassWatProcModel)
	registerComent(handleDisasmDirective, nil, types.ClassDisasmDirective)
	registerComent(handleLinkerDirective, nil, types.ClassLinkerDirective)
}

var procModelProcessors = map[byte]string{
	'0': "8086",
	'2': "80286",
	'3': "80386+",
}

var procModelMemModels = map[byte]string{
	's': "Small",
	'm': "Medium",
	'c': "Compact",
	'l': "Large",
	'h': "Huge",
	'f': "Flat",
}

var procModelFPModes = map[byte]string{
	'e': "Emulated inline",
	'c': "Emulator calls",
	'p': "80x87 inline",
}

// ComentProcModel is the processor/model comment shared by Watcom (9BH) and
// Microsoft (9DH): processor digit, memory-model letter, optimization flag,
// FP mode letter, optional 'i' for position-independent code.
type ComentProcModel struct {
	Processor    string `json:"processor"`
	ProcessorRaw string `json:"processor_raw,omitempty"`
	MemModel     string `json:"mem_model"`
	MemModelRaw  string `json:"mem_model_raw,omitempty"`
	Optimized    bool   `json:"optimized"`
	FPMode       string `json:"fp_mode"`
	FPModeRaw    string `json:"fp_mode_raw,omitempty"`
	PIC          bool   `json:"pic"`
}

func (*ComentProcModel) ComentKind() string { return "proc_model" }

func parseProcModel(text []byte) *ComentProcModel {
	if len(text) < 4 {
		return &ComentProcModel{Processor: "Unknown", MemModel: "Unknown", FPMode: "Unknown"}
	}

	lookup := func(table map[byte]string, c byte) string {
		if s, ok := table[c]; ok {
			return s
		}
		return fmt.Sprintf("Unknown(%c)", c)
	}

	return &ComentProcModel{
		Processor:    lookup(procModelProcessors, text[0]),
		ProcessorRaw: string(text[0]),
		MemModel:     lookup(procModelMemModels, text[1]),
		MemModelRaw:  string(text[1]),
		Optimized:    text[2] == 'O',
		FPMode:       lookup(procModelFPModes, text[3]),
		FPModeRaw:    string(text[3]),
		PIC:          len(text) >= 5 && text[4] == 'i',
	}
}

func handleWatProcModel(f *File, com *Coment, text []byte) ComentContent {
	return parseProcModel(text)
}

// ComentDisasmDirective is the Watcom disassembler directive (FDH). The 's'
// and 'S' subtypes bound a non-executable scan-table region within a code
// segment, at 16- and 32-bit offsets respectively.
type ComentDisasmDirective struct {
	Directive    string `json:"directive"`
	Is32Bit      bool   `json:"is_32bit,omitempty"`
	SegmentIndex int    `json:"segment_index,omitempty"`
	Segment      string `json:"segment,omitempty"`
	Start        uint32 `json:"start,omitempty"`
	End          uint32 `json:"end,omitempty"`
	Raw          []byte `json:"raw,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func (*ComentDisasmDirective) ComentKind() string { return "disasm_directive" }

func handleDisasmDirective(f *File, com *Coment, text []byte) ComentContent {
	if len(text) == 0 {
		return nil
	}
	p := &ComentDisasmDirective{Directive: string(text[0])}

	switch text[0] {
	case 's', 'S':
		p.Is32Bit = text[0] == 'S'
		cur := NewCursor(text[1:], f.activeVariant)
		p.SegmentIndex = cur.Index()
		p.Segment = f.GetSegdef(p.SegmentIndex)
		size := 2
		if p.Is32Bit {
			size = 4
		}
		p.Start = cur.Numeric(size)
		p.End = cur.Numeric(size)
	default:
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("unknown disassembler directive %q", text[0]))
		p.Raw = append([]byte(nil), text...)
	}
	return p
}

// LinkerDirContent is the decoded body of one Watcom linker directive.
type LinkerDirContent interface {
	DirectiveKind() string
}

// ComentLinkerDirective is the Watcom linker directive comment (FEH) with
// its directive-code dispatch.
type ComentLinkerDirective struct {
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Content  LinkerDirContent `json:"content,omitempty"`
	Raw      []byte           `json:"raw,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

func (*ComentLinkerDirective) ComentKind() string { return "linker_directive" }

var linkerDirectiveNames = map[byte]string{
	'D': "Source Language",
	'L': "Default Library",
	'O': "Optimize Far Calls",
	'U': "Optimization Unsafe",
	'V': "VF Table Definition",
	'P': "VF Pure Definition",
	'R': "VF Reference",
	'7': "Pack Far Data",
	'F': "Flat Addresses",
	'T': "Object Timestamp",
}

func handleLinkerDirective(f *File, com *Coment, text []byte) ComentContent {
	if len(text) == 0 {
		return nil
	}
	code := text[0]
	name, known := linkerDirectiveNames[code]
	if !known {
		name = fmt.Sprintf("Unknown(0x%02X)", code)
	}

	p := &ComentLinkerDirective{Code: string(code), Name: name}
	rest := text[1:]

	switch code {
	case 'D':
		p.Content = parseSourceLanguage(rest, p)
	case 'L':
		p.Content = parseDefaultLib(rest, p)
	case 'O':
		p.Content = parseOptFarCalls(f, rest)
	case 'U':
		p.Content = &DirOptUnsafe{}
	case 'V':
		p.Content = parseVFTableDef(f, rest, false)
	case 'P':
		p.Content = parseVFTableDef(f, rest, true)
	case 'R':
		p.Content = parseVFReference(f, rest)
	case '7':
		p.Content = parsePackData(rest, p)
	case 'F':
		p.Content = &DirFlatAddrs{}
	case 'T':
		p.Content = parseObjTimestamp(rest, p)
	default:
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("unknown linker directive code 0x%02X", code))
		p.Raw = append([]byte(nil), text...)
	}
	return p
}

// DirSourceLang is the 'D' directive: source language and version.
type DirSourceLang struct {
	MajorVersion int    `json:"major_version"`
	MinorVersion int    `json:"minor_version"`
	Language     string `json:"language"`
}

func (*DirSourceLang) DirectiveKind() string { return "source_language" }

func parseSourceLanguage(data []byte, p *ComentLinkerDirective) LinkerDirContent {
	if len(data) < 2 {
		p.Warnings = append(p.Warnings, "source language directive too short")
		return nil
	}
	return &DirSourceLang{
		MajorVersion: int(data[0]),
		MinorVersion: int(data[1]),
		Language:     asciiString(data[2:]),
	}
}

// DirDefaultLib is the 'L' directive: priority digit plus library name.
type DirDefaultLib struct {
	Priority int    `json:"priority"`
	Library  string `json:"library"`
}

func (*DirDefaultLib) DirectiveKind() string { return "default_library" }

func parseDefaultLib(data []byte, p *ComentLinkerDirective) LinkerDirContent {
	if len(data) < 2 {
		p.Warnings = append(p.Warnings, "default library directive too short")
		return nil
	}
	priority := int(data[0])
	if data[0] >= '0' && data[0] <= '9' {
		priority = int(data[0] - '0')
	} else {
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("non-digit priority character %q", data[0]))
	}
	return &DirDefaultLib{Priority: priority, Library: asciiString(data[1:])}
}

// DirOptFarCalls is the 'O' directive: far-call optimization for a segment.
type DirOptFarCalls struct {
	SegmentIndex int    `json:"segment_index"`
	Segment      string `json:"segment"`
}

func (*DirOptFarCalls) DirectiveKind() string { return "optimize_far_calls" }

func parseOptFarCalls(f *File, data []byte) LinkerDirContent {
	cur := NewCursor(data, f.activeVariant)
	idx := cur.Index()
	return &DirOptFarCalls{SegmentIndex: idx, Segment: f.GetSegdef(idx)}
}

// DirOptUnsafe is the 'U' directive: the previous fixup is unsafe for
// far-call optimization.
type DirOptUnsafe struct{}

func (*DirOptUnsafe) DirectiveKind() string { return "optimization_unsafe" }

// DirVFTableDef is the 'V'/'P' directive: a virtual-function table
// definition. The two codes differ only in the pure flag.
type DirVFTableDef struct {
	IsPure bool `json:"is_pure"`

	VFExtIndex      int    `json:"vf_ext_index"`
	DefaultExtIndex int    `json:"default_ext_index"`
	VFSymbol        string `json:"vf_symbol"`
	DefaultSymbol   string `json:"default_symbol"`

	NameIndices   []int    `json:"name_indices,omitempty"`
	FunctionNames []string `json:"function_names,omitempty"`
}

func (*DirVFTableDef) DirectiveKind() string { return "vf_table_def" }

func parseVFTableDef(f *File, data []byte, isPure bool) LinkerDirContent {
	cur := NewCursor(data, f.activeVariant)

	p := &DirVFTableDef{IsPure: isPure}
	p.VFExtIndex = cur.Index()
	p.DefaultExtIndex = cur.Index()
	p.VFSymbol = f.GetExtdef(p.VFExtIndex)
	p.DefaultSymbol = f.GetExtdef(p.DefaultExtIndex)

	for !cur.AtEnd() {
		idx := cur.Index()
		p.NameIndices = append(p.NameIndices, idx)
		p.FunctionNames = append(p.FunctionNames, f.GetLName(idx))
	}
	return p
}

// DirVFReference is the 'R' directive: a virtual-function reference. When
// the type index is zero the symbol lives in a COMDAT named by an LNAMES
// index; otherwise it names a segment.
type DirVFReference struct {
	ExtIndex int    `json:"ext_index"`
	Symbol   string `json:"symbol"`
	IsComdat bool   `json:"is_comdat"`

	SegmentIndex int    `json:"segment_index,omitempty"`
	Segment      string `json:"segment,omitempty"`
	NameIndex    int    `json:"name_index,omitempty"`
	ComdatName   string `json:"comdat_name,omitempty"`
}

func (*DirVFReference) DirectiveKind() string { return "vf_reference" }

func parseVFReference(f *File, data []byte) LinkerDirContent {
	cur := NewCursor(data, f.activeVariant)

	p := &DirVFReference{ExtIndex: cur.Index()}
	p.Symbol = f.GetExtdef(p.ExtIndex)

	typeIdx := cur.Index()
	p.IsComdat = typeIdx == 0
	if p.IsComdat {
		p.NameIndex = cur.Index()
		p.ComdatName = f.GetLName(p.NameIndex)
	} else {
		p.SegmentIndex = typeIdx
		p.Segment = f.GetSegdef(typeIdx)
	}
	return p
}

// DirPackData is the '7' directive: the far-data packing limit.
type DirPackData struct {
	PackLimit uint32 `json:"pack_limit"`
}

func (*DirPackData) DirectiveKind() string { return "pack_far_data" }

func parsePackData(data []byte, p *ComentLinkerDirective) LinkerDirContent {
	if len(data) < 4 {
		p.Warnings = append(p.Warnings, "pack data directive too short (expected 4 bytes)")
	}
	var limit uint32
	for i := 0; i < len(data) && i < 4; i++ {
		limit |= uint32(data[i]) << (8 * i)
	}
	return &DirPackData{PackLimit: limit}
}

// DirFlatAddrs is the 'F' directive: the module uses flat addresses.
type DirFlatAddrs struct{}

func (*DirFlatAddrs) DirectiveKind() string { return "flat_addresses" }

// DirObjTimestamp is the 'T' directive: a 32-bit Unix object timestamp.
type DirObjTimestamp struct {
	Timestamp uint32 `json:"timestamp"`
	Time      string `json:"time,omitempty"`
}

func (*DirObjTimestamp) DirectiveKind() string { return "object_timestamp" }

func parseObjTimestamp(data []byte, p *ComentLinkerDirective) LinkerDirContent {
	if len(data) < 4 {
		p.Warnings = append(p.Warnings, "timestamp directive too short (expected 4 bytes)")
	}
	var ts uint32
	for i := 0; i < len(data) && i < 4; i++ {
		ts |= uint32(data[i]) << (8 * i)
	}
	out := &DirObjTimestamp{Timestamp: ts}
	if ts != 0 {
		out.Time = time.Unix(int64(ts), 0).UTC().Format("2006-01-02 15:04:05")
	}
	return out
}
