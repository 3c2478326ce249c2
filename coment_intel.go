package omf

// Intel/TIS standard COMENT class handlers, including the second-level
// dispatch over the OMF Extensions (A0) subtypes.

import (
	"fmt"

	"github.com/HK47196/go-omf/types"
)

func init() {
	registerComent(handleTranslator, nil, types.ClassTranslator)
	registerComent(handleCopyright, nil, types.ClassCopyright)
	registerComent(handleLibSpec, nil, types.ClassLibSpec)
	registerComent(handleDosseg, nil, types.ClassDOSSEG)
	registerComent(handleNewOMF, nil, types.ClassNewOMF)
	registerComent(handleLinkPass, nil, types.ClassLinkPass)
	registerComent(handleLibMod, nil, types.ClassLIBMOD)
	registerComent(handleExeStr, nil, types.ClassEXESTR)
	registerComent(handleIncErr, nil, types.ClassINCERR)
	registerComent(handleNoPad, nil, types.ClassNOPAD)
	registerComent(handleWkExt, nil, types.ClassWKEXT)
	registerComent(handleLzExt, nil, types.ClassLZEXT)
	registerComent(handleEasyOMF, nil, types.ClassEasyOMF)
	registerComent(handleOMFExtensions, nil, types.ClassOMFExtensions)
}

// ComentTranslator identifies the compiler or assembler.
type ComentTranslator struct {
	Translator string `json:"translator"`
}

func (*ComentTranslator) ComentKind() string { return "translator" }

func handleTranslator(f *File, com *Coment, text []byte) ComentContent {
	return &ComentTranslator{Translator: asciiString(text)}
}

// ComentCopyright is an Intel copyright notice.
type ComentCopyright struct {
	Copyright string `json:"copyright"`
}

func (*ComentCopyright) ComentKind() string { return "copyright" }

func handleCopyright(f *File, com *Coment, text []byte) ComentContent {
	return &ComentCopyright{Copyright: asciiString(text)}
}

// ComentLibSpec is the obsolete library specifier.
type ComentLibSpec struct {
	Obsolete bool   `json:"obsolete"`
	Library  string `json:"library"`
}

func (*ComentLibSpec) ComentKind() string { return "libspec" }

func handleLibSpec(f *File, com *Coment, text []byte) ComentContent {
	return &ComentLibSpec{Obsolete: true, Library: asciiString(text)}
}

// ComentDosseg requests DOS segment ordering.
type ComentDosseg struct{}

func (*ComentDosseg) ComentKind() string { return "dosseg" }

func handleDosseg(f *File, com *Coment, text []byte) ComentContent {
	return &ComentDosseg{}
}

// ComentNewOMF is the New OMF extension marker.
type ComentNewOMF struct {
	Data []byte `json:"data,omitempty"`
}

func (*ComentNewOMF) ComentKind() string { return "new_omf" }

func handleNewOMF(f *File, com *Coment, text []byte) ComentContent {
	p := &ComentNewOMF{}
	if len(text) > 0 {
		p.Data = append([]byte(nil), text...)
	}
	return p
}

// ComentLinkPass is the link pass separator.
type ComentLinkPass struct {
	Pass int `json:"pass,omitempty"`
}

func (*ComentLinkPass) ComentKind() string { return "link_pass" }

func handleLinkPass(f *File, com *Coment, text []byte) ComentContent {
	p := &ComentLinkPass{}
	if len(text) >= 1 {
		p.Pass = int(text[0])
	}
	return p
}

// ComentLibMod names the library module.
type ComentLibMod struct {
	ModuleName string `json:"module_name"`
}

func (*ComentLibMod) ComentKind() string { return "libmod" }

func handleLibMod(f *File, com *Coment, text []byte) ComentContent {
	// LIBMOD text is a length-prefixed name.
	cur := NewCursor(text, f.activeVariant)
	name := cur.Name()
	if name == "" {
		name = asciiString(text)
	}
	return &ComentLibMod{ModuleName: name}
}

// ComentExeStr is an executable string.
type ComentExeStr struct {
	ExeString string `json:"exe_string"`
}

func (*ComentExeStr) ComentKind() string { return "exestr" }

func handleExeStr(f *File, com *Coment, text []byte) ComentContent {
	return &ComentExeStr{ExeString: asciiString(text)}
}

// ComentIncErr marks an incremental compilation error; linkers must force a
// full recompile.
type ComentIncErr struct{}

func (*ComentIncErr) ComentKind() string { return "incerr" }

func handleIncErr(f *File, com *Coment, text []byte) ComentContent {
	return &ComentIncErr{}
}

// ComentNoPad disables segment padding.
type ComentNoPad struct{}

func (*ComentNoPad) ComentKind() string { return "nopad" }

func handleNoPad(f *File, com *Coment, text []byte) ComentContent {
	return &ComentNoPad{}
}

// A WeakExtern pairs a weak extern index with its default-resolution index.
type WeakExtern struct {
	WeakIndex    int `json:"weak_index"`
	DefaultIndex int `json:"default_index"`
}

// ComentWkExt is a stream of weak extern definitions.
type ComentWkExt struct {
	Entries []WeakExtern `json:"entries"`
}

func (*ComentWkExt) ComentKind() string { return "wkext" }

func handleWkExt(f *File, com *Coment, text []byte) ComentContent {
	return &ComentWkExt{Entries: parseExternPairs(f, text)}
}

// ComentLzExt is a stream of lazy extern definitions, same shape as WKEXT.
type ComentLzExt struct {
	Entries []WeakExtern `json:"entries"`
}

func (*ComentLzExt) ComentKind() string { return "lzext" }

func handleLzExt(f *File, com *Coment, text []byte) ComentContent {
	return &ComentLzExt{Entries: parseExternPairs(f, text)}
}

func parseExternPairs(f *File, text []byte) []WeakExtern {
	cur := NewCursor(text, f.activeVariant)
	var entries []WeakExtern
	for cur.Remaining() >= 2 {
		entries = append(entries, WeakExtern{
			WeakIndex:    cur.Index(),
			DefaultIndex: cur.Index(),
		})
	}
	return entries
}

// ComentEasyOMF is the PharLap Easy OMF-386 marker.
type ComentEasyOMF struct {
	Marker string `json:"marker,omitempty"`
}

func (*ComentEasyOMF) ComentKind() string { return "easy_omf" }

func handleEasyOMF(f *File, com *Coment, text []byte) ComentContent {
	f.Features.Add("easy_omf")
	f.Features.Add("pharlap")
	return &ComentEasyOMF{Marker: asciiString(text)}
}

// A0Content is the decoded body of an OMF Extensions subtype.
type A0Content interface {
	A0Kind() string
}

// ComentOMFExtensions is the OMF Extensions (A0) comment with its subtype
// dispatch.
type ComentOMFExtensions struct {
	Subtype     types.A0Subtype `json:"subtype"`
	SubtypeName string          `json:"subtype_name"`
	Content     A0Content       `json:"content,omitempty"`
	Raw         []byte          `json:"raw,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
}

func (*ComentOMFExtensions) ComentKind() string { return "omf_extensions" }

func handleOMFExtensions(f *File, com *Coment, text []byte) ComentContent {
	if len(text) == 0 {
		return nil
	}
	subtype := types.A0Subtype(text[0])
	p := &ComentOMFExtensions{Subtype: subtype, SubtypeName: subtype.String()}
	rest := text[1:]

	switch subtype {
	case types.A0ImpDef:
		p.Content = parseImpDef(rest)
	case types.A0ExpDef:
		p.Content = parseExpDef(rest)
	case types.A0IncDef:
		p.Content = parseIncDef(rest)
	case types.A0ProtectedMemory:
		p.Content = &A0ProtectedMemory{}
	case types.A0LnkDir:
		p.Content = parseLnkDir(rest)
	case types.A0BigEndian:
		f.Features.Add("big_endian")
		p.Content = &A0BigEndian{}
	case types.A0PreComp:
		p.Content = &A0PreComp{}
	default:
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("unknown A0 subtype 0x%02X", uint8(subtype)))
		if len(rest) > 0 {
			p.Raw = append([]byte(nil), rest...)
		}
	}
	return p
}

// An ImpDef imports a symbol from a module, by name or ordinal.
type ImpDef struct {
	ByOrdinal    bool   `json:"by_ordinal"`
	InternalName string `json:"internal_name"`
	ModuleName   string `json:"module_name"`
	EntryName    string `json:"entry_name,omitempty"`
	Ordinal      uint16 `json:"ordinal,omitempty"`
}

func (*ImpDef) A0Kind() string { return "impdef" }

func parseImpDef(data []byte) A0Content {
	if len(data) < 3 {
		return nil
	}
	cur := NewCursor(data, types.TISStandard)
	ordFlag, _ := cur.ReadByte()

	p := &ImpDef{ByOrdinal: ordFlag != 0}
	p.InternalName = cur.Name()
	p.ModuleName = cur.Name()

	if p.ByOrdinal {
		if cur.Remaining() >= 2 {
			p.Ordinal = uint16(cur.Numeric(2))
		}
	} else if cur.Remaining() > 0 {
		// A zero-length entry name means "same as internal name".
		p.EntryName = cur.Name()
	}
	return p
}

// An ExpDef exports a symbol, optionally by ordinal.
type ExpDef struct {
	ExportedName string `json:"exported_name"`
	InternalName string `json:"internal_name,omitempty"`
	ByOrdinal    bool   `json:"by_ordinal"`
	Resident     bool   `json:"resident"`
	NoData       bool   `json:"no_data"`
	ParmCount    int    `json:"parm_count"`
	Ordinal      uint16 `json:"ordinal,omitempty"`
}

func (*ExpDef) A0Kind() string { return "expdef" }

func parseExpDef(data []byte) A0Content {
	if len(data) < 2 {
		return nil
	}
	cur := NewCursor(data, types.TISStandard)
	flag, _ := cur.ReadByte()

	p := &ExpDef{
		ByOrdinal: flag&types.ExpdefOrdinal != 0,
		Resident:  flag&types.ExpdefResident != 0,
		NoData:    flag&types.ExpdefNoData != 0,
		ParmCount: int(flag & types.ExpdefParmCountMask),
	}
	p.ExportedName = cur.Name()
	p.InternalName = cur.Name()
	if p.ByOrdinal && cur.Remaining() >= 2 {
		p.Ordinal = uint16(cur.Numeric(2))
	}
	return p
}

// An IncDef carries incremental-compilation deltas for EXTDEF and LINNUM
// indices.
type IncDef struct {
	ExtdefDelta int `json:"extdef_delta"`
	LinnumDelta int `json:"linnum_delta"`
}

func (*IncDef) A0Kind() string { return "incdef" }

func parseIncDef(data []byte) A0Content {
	if len(data) < 4 {
		return nil
	}
	return &IncDef{
		ExtdefDelta: int(int16(uint16(data[0]) | uint16(data[1])<<8)),
		LinnumDelta: int(int16(uint16(data[2]) | uint16(data[3])<<8)),
	}
}

// A0ProtectedMemory marks a DLL that uses protected memory (_loadds).
type A0ProtectedMemory struct{}

func (*A0ProtectedMemory) A0Kind() string { return "protected_memory" }

// LnkDir is the LNKDIR linker directive.
type LnkDir struct {
	BitFlags      byte     `json:"bit_flags"`
	FlagsMeanings []string `json:"flags_meanings,omitempty"`
	PcodeVersion  byte     `json:"pcode_version"`
	CVVersion     byte     `json:"cv_version"`
}

func (*LnkDir) A0Kind() string { return "lnkdir" }

func parseLnkDir(data []byte) A0Content {
	if len(data) < 3 {
		return nil
	}
	p := &LnkDir{BitFlags: data[0], PcodeVersion: data[1], CVVersion: data[2]}
	if p.BitFlags&types.LnkdirNewExe != 0 {
		p.FlagsMeanings = append(p.FlagsMeanings, "output new .EXE format")
	}
	if p.BitFlags&types.LnkdirOmitPublics != 0 {
		p.FlagsMeanings = append(p.FlagsMeanings, "omit CodeView $PUBLICS")
	}
	if p.BitFlags&types.LnkdirRunMPC != 0 {
		p.FlagsMeanings = append(p.FlagsMeanings, "run MPC utility")
	}
	return p
}

// A0BigEndian marks a big-endian target.
type A0BigEndian struct{}

func (*A0BigEndian) A0Kind() string { return "big_endian" }

// A0PreComp marks precompiled types: $$TYPES should use sstPreComp.
type A0PreComp struct{}

func (*A0PreComp) A0Kind() string { return "precomp" }
