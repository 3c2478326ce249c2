package omf

// Microsoft (and Borland/QuickC) COMENT class handlers.

import (
	"github.com/HK47196/go-omf/types"
)

func init() {
	registerComent(handleDOSVersion, nil, types.ClassDOSVersion)
	registerComent(handleMSProcModel, nil, types.ClassMSProcModel)
	registerComent(handleDefaultLibrary, nil, types.ClassDefaultLibrary)
	registerComent(handleComment, nil, types.ClassComment)
	registerComent(handleCompiler, nil, types.ClassCompiler)
	registerComent(handleDate, nil, types.ClassDate)
	registerComent(handleTimestamp, nil, types.ClassTimestamp)
	registerComent(handleUser, nil, types.ClassUser)
	registerComent(handleDependency, nil, types.ClassDependency)
	registerComent(handleCmdLine, nil, types.ClassCmdLine)
	registerComent(handleLinker32, nil, types.ClassLinker32, types.ClassLinker32Alt)
}

// ComentDOSVersion is the obsolete MS-DOS version comment.
type ComentDOSVersion struct {
	Obsolete bool `json:"obsolete"`
	Major    int  `json:"major,omitempty"`
	Minor    int  `json:"minor,omitempty"`
}

func (*ComentDOSVersion) ComentKind() string { return "dos_version" }

func handleDOSVersion(f *File, com *Coment, text []byte) ComentContent {
	p := &ComentDOSVersion{Obsolete: true}
	if len(text) >= 2 {
		p.Major = int(text[0])
		p.Minor = int(text[1])
	}
	return p
}

// handleMSProcModel decodes the MS processor/model comment, which shares its
// format with the Watcom 0x9B class.
func handleMSProcModel(f *File, com *Coment, text []byte) ComentContent {
	return parseProcModel(text)
}

// ComentDefaultLibrary names a default library to search.
type ComentDefaultLibrary struct {
	Library string `json:"library"`
}

func (*ComentDefaultLibrary) ComentKind() string { return "default_library" }

func handleDefaultLibrary(f *File, com *Coment, text []byte) ComentContent {
	return &ComentDefaultLibrary{Library: asciiString(text)}
}

// ComentComment is freeform comment text.
type ComentComment struct {
	Comment string `json:"comment"`
}

func (*ComentComment) ComentKind() string { return "comment" }

func handleComment(f *File, com *Coment, text []byte) ComentContent {
	return &ComentComment{Comment: asciiString(text)}
}

// ComentCompiler identifies the compiler.
type ComentCompiler struct {
	Compiler string `json:"compiler"`
}

func (*ComentCompiler) ComentKind() string { return "compiler" }

func handleCompiler(f *File, com *Coment, text []byte) ComentContent {
	return &ComentCompiler{Compiler: asciiString(text)}
}

// ComentDate is a date stamp.
type ComentDate struct {
	Date string `json:"date"`
}

func (*ComentDate) ComentKind() string { return "date" }

func handleDate(f *File, com *Coment, text []byte) ComentContent {
	return &ComentDate{Date: asciiString(text)}
}

// ComentTimestamp is a time stamp.
type ComentTimestamp struct {
	Timestamp string `json:"timestamp"`
}

func (*ComentTimestamp) ComentKind() string { return "timestamp" }

func handleTimestamp(f *File, com *Coment, text []byte) ComentContent {
	return &ComentTimestamp{Timestamp: asciiString(text)}
}

// ComentUser is a user-defined comment.
type ComentUser struct {
	User string `json:"user"`
}

func (*ComentUser) ComentKind() string { return "user" }

func handleUser(f *File, com *Coment, text []byte) ComentContent {
	return &ComentUser{User: asciiString(text)}
}

// ComentDependency is a Borland dependency-file comment.
type ComentDependency struct {
	Dependency string `json:"dependency"`
}

func (*ComentDependency) ComentKind() string { return "dependency" }

func handleDependency(f *File, com *Coment, text []byte) ComentContent {
	return &ComentDependency{Dependency: asciiString(text)}
}

// ComentCmdLine is the QuickC command-line comment.
type ComentCmdLine struct {
	CmdLine string `json:"cmdline"`
}

func (*ComentCmdLine) ComentKind() string { return "cmdline" }

func handleCmdLine(f *File, com *Coment, text []byte) ComentContent {
	return &ComentCmdLine{CmdLine: asciiString(text)}
}

// ComentLinker32 is the 32-bit linker extension, left opaque.
type ComentLinker32 struct {
	Data []byte `json:"data,omitempty"`
}

func (*ComentLinker32) ComentKind() string { return "linker_32bit" }

func handleLinker32(f *File, com *Coment, text []byte) ComentContent {
	p := &ComentLinker32{}
	if len(text) > 0 {
		p.Data = append([]byte(nil), text...)
	}
	return p
}
