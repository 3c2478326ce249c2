package types

import "fmt"

// A CommentClass is the class byte of a COMENT record. Different vendors use
// overlapping class numbers; the feature-gated handler registry picks the
// right reading.
type CommentClass uint8

const (
	ClassTranslator     CommentClass = 0x00
	ClassCopyright      CommentClass = 0x01
	ClassLibSpec        CommentClass = 0x81 // obsolete
	ClassWatProcModel   CommentClass = 0x9B
	ClassDOSVersion     CommentClass = 0x9C // obsolete
	ClassMSProcModel    CommentClass = 0x9D
	ClassDOSSEG         CommentClass = 0x9E
	ClassDefaultLibrary CommentClass = 0x9F
	ClassOMFExtensions  CommentClass = 0xA0
	ClassNewOMF         CommentClass = 0xA1
	ClassLinkPass       CommentClass = 0xA2
	ClassLIBMOD         CommentClass = 0xA3
	ClassEXESTR         CommentClass = 0xA4
	ClassINCERR         CommentClass = 0xA6
	ClassNOPAD          CommentClass = 0xA7
	ClassWKEXT          CommentClass = 0xA8
	ClassLZEXT          CommentClass = 0xA9
	ClassEasyOMF        CommentClass = 0xAA
	ClassLinker32       CommentClass = 0xB0
	ClassLinker32Alt    CommentClass = 0xB1
	ClassComment        CommentClass = 0xDA
	ClassCompiler       CommentClass = 0xDB
	ClassDate           CommentClass = 0xDC
	ClassTimestamp      CommentClass = 0xDD
	ClassUser           CommentClass = 0xDF
	ClassDependency     CommentClass = 0xE9 // Borland
	ClassDisasmDirective CommentClass = 0xFD // Watcom
	ClassLinkerDirective CommentClass = 0xFE // Watcom
	ClassCmdLine        CommentClass = 0xFF // QuickC
)

var commentClassNames = map[CommentClass]string{
	ClassTranslator:      "Translator",
	ClassCopyright:       "Intel Copyright",
	ClassLibSpec:         "Library Specifier (obsolete)",
	ClassWatProcModel:    "Watcom Processor/Model",
	ClassDOSVersion:      "MS-DOS Version (obsolete)",
	ClassMSProcModel:     "MS Processor/Model",
	ClassDOSSEG:          "DOSSEG",
	ClassDefaultLibrary:  "Default Library Search",
	ClassOMFExtensions:   "OMF Extensions",
	ClassNewOMF:          "New OMF Extension",
	ClassLinkPass:        "Link Pass Separator",
	ClassLIBMOD:          "LIBMOD",
	ClassEXESTR:          "EXESTR",
	ClassINCERR:          "INCERR",
	ClassNOPAD:           "NOPAD",
	ClassWKEXT:           "WKEXT",
	ClassLZEXT:           "LZEXT",
	ClassEasyOMF:         "Easy OMF",
	ClassLinker32:        "32-bit Linker Extension",
	ClassLinker32Alt:     "32-bit Linker Extension",
	ClassComment:         "Comment",
	ClassCompiler:        "Compiler",
	ClassDate:            "Date",
	ClassTimestamp:       "Timestamp",
	ClassUser:            "User",
	ClassDependency:      "Dependency File (Borland)",
	ClassDisasmDirective: "Watcom Disassembler Directive",
	ClassLinkerDirective: "Watcom Linker Directive",
	ClassCmdLine:         "Command Line (QuickC)",
}

func (c CommentClass) String() string {
	if n, ok := commentClassNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint8(c))
}

// IsKnown reports whether c is a registered comment class.
func (c CommentClass) IsKnown() bool {
	_, ok := commentClassNames[c]
	return ok
}

// An A0Subtype is the subtype byte of an OMF Extensions (class A0) comment.
type A0Subtype uint8

const (
	A0ImpDef          A0Subtype = 0x01
	A0ExpDef          A0Subtype = 0x02
	A0IncDef          A0Subtype = 0x03
	A0ProtectedMemory A0Subtype = 0x04
	A0LnkDir          A0Subtype = 0x05
	A0BigEndian       A0Subtype = 0x06
	A0PreComp         A0Subtype = 0x07
)

func (s A0Subtype) String() string {
	switch s {
	case A0ImpDef:
		return "IMPDEF"
	case A0ExpDef:
		return "EXPDEF"
	case A0IncDef:
		return "INCDEF"
	case A0ProtectedMemory:
		return "Protected Memory Library"
	case A0LnkDir:
		return "LNKDIR"
	case A0BigEndian:
		return "Big-endian"
	case A0PreComp:
		return "PRECOMP"
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint8(s))
}

// COMENT flag byte bits.
const (
	ComentNoPurge uint8 = 0x80
	ComentNoList  uint8 = 0x40
)
