package omf_test

import (
	"testing"

	omf "github.com/HK47196/go-omf"
	"github.com/HK47196/go-omf/types"
)

// parseComent runs a single COMENT record through a minimal module and
// returns its payload.
func parseComent(t *testing.T, content ...byte) *omf.Coment {
	t.Helper()
	data := cat(theadr("M"), record(types.COMENT, content...), modend())
	f := omf.Parse(data)
	com, ok := f.Records[1].Parsed.(*omf.Coment)
	if !ok {
		t.Fatalf("payload = %T, want *Coment", f.Records[1].Parsed)
	}
	return com
}

func TestComentTranslator(t *testing.T) {
	com := parseComent(t, append([]byte{0x80, 0x00}, "Microsoft C"...)...)
	if !com.NoPurge || com.NoList {
		t.Errorf("flags = %+v", com)
	}
	tr, ok := com.Content.(*omf.ComentTranslator)
	if !ok {
		t.Fatalf("content = %T, want *ComentTranslator", com.Content)
	}
	if tr.Translator != "Microsoft C" {
		t.Errorf("translator = %q", tr.Translator)
	}
}

func TestComentUnknownClass(t *testing.T) {
	com := parseComent(t, 0x00, 0x55, 0xDE, 0xAD)
	if com.Content != nil {
		t.Errorf("content = %T, want nil for unknown class", com.Content)
	}
	if len(com.Warnings) == 0 {
		t.Error("unknown class produced no warning")
	}
	if len(com.Raw) != 2 {
		t.Errorf("raw = % X, want the 2 text bytes", com.Raw)
	}
}

func TestComentDosseg(t *testing.T) {
	com := parseComent(t, 0x80, 0x9E)
	if _, ok := com.Content.(*omf.ComentDosseg); !ok {
		t.Errorf("content = %T, want *ComentDosseg", com.Content)
	}
}

func TestComentWkExt(t *testing.T) {
	com := parseComent(t, 0x00, 0xA8, 0x01, 0x02, 0x03, 0x04)
	wk, ok := com.Content.(*omf.ComentWkExt)
	if !ok {
		t.Fatalf("content = %T, want *ComentWkExt", com.Content)
	}
	if len(wk.Entries) != 2 {
		t.Fatalf("entries = %+v", wk.Entries)
	}
	if wk.Entries[0].WeakIndex != 1 || wk.Entries[0].DefaultIndex != 2 {
		t.Errorf("entry 0 = %+v", wk.Entries[0])
	}
}

func TestComentA0ImpDef(t *testing.T) {
	content := cat(
		[]byte{0x00, 0xA0, 0x01}, // class A0, subtype IMPDEF
		[]byte{0x00},             // import by name
		name("MyFunc"),
		name("KERNEL"),
		name("DoThing"),
	)
	com := parseComent(t, content...)

	ext, ok := com.Content.(*omf.ComentOMFExtensions)
	if !ok {
		t.Fatalf("content = %T, want *ComentOMFExtensions", com.Content)
	}
	if ext.Subtype != types.A0ImpDef {
		t.Errorf("subtype = %s", ext.Subtype)
	}
	imp, ok := ext.Content.(*omf.ImpDef)
	if !ok {
		t.Fatalf("A0 content = %T, want *ImpDef", ext.Content)
	}
	if imp.ByOrdinal || imp.InternalName != "MyFunc" || imp.ModuleName != "KERNEL" || imp.EntryName != "DoThing" {
		t.Errorf("impdef = %+v", imp)
	}
}

func TestComentA0ExpDefByOrdinal(t *testing.T) {
	content := cat(
		[]byte{0x00, 0xA0, 0x02},
		[]byte{0x82}, // by ordinal, parm count 2
		name("Exported"),
		name(""),
		word(42),
	)
	com := parseComent(t, content...)
	ext := com.Content.(*omf.ComentOMFExtensions)
	exp, ok := ext.Content.(*omf.ExpDef)
	if !ok {
		t.Fatalf("A0 content = %T, want *ExpDef", ext.Content)
	}
	if !exp.ByOrdinal || exp.Ordinal != 42 || exp.ParmCount != 2 {
		t.Errorf("expdef = %+v", exp)
	}
}

func TestComentA0IncDefSigned(t *testing.T) {
	content := cat(
		[]byte{0x00, 0xA0, 0x03},
		word(0xFFFE), // -2
		word(0x0005),
	)
	com := parseComent(t, content...)
	ext := com.Content.(*omf.ComentOMFExtensions)
	inc := ext.Content.(*omf.IncDef)
	if inc.ExtdefDelta != -2 || inc.LinnumDelta != 5 {
		t.Errorf("incdef = %+v", inc)
	}
}

func TestComentA0BigEndianFeature(t *testing.T) {
	data := cat(
		theadr("M"),
		record(types.COMENT, 0x00, 0xA0, 0x06),
		modend(),
	)
	f := omf.Parse(data)
	if !f.Features.Has("big_endian") {
		t.Error("big_endian feature not set")
	}
}

func TestComentA0UnknownSubtype(t *testing.T) {
	com := parseComent(t, 0x00, 0xA0, 0x7F, 0x01)
	ext := com.Content.(*omf.ComentOMFExtensions)
	if len(ext.Warnings) == 0 {
		t.Error("unknown A0 subtype produced no warning")
	}
	if len(ext.Raw) != 1 {
		t.Errorf("raw = % X", ext.Raw)
	}
}

func TestComentWatcomProcModel(t *testing.T) {
	com := parseComent(t, append([]byte{0x00, 0x9B}, "3fOpi"...)...)
	pm, ok := com.Content.(*omf.ComentProcModel)
	if !ok {
		t.Fatalf("content = %T, want *ComentProcModel", com.Content)
	}
	if pm.Processor != "80386+" || pm.MemModel != "Flat" || !pm.Optimized || pm.FPMode != "80x87 inline" || !pm.PIC {
		t.Errorf("proc model = %+v", pm)
	}
}

func TestComentMSProcModelSharedFormat(t *testing.T) {
	com := parseComent(t, append([]byte{0x00, 0x9D}, "2lOe"...)...)
	pm, ok := com.Content.(*omf.ComentProcModel)
	if !ok {
		t.Fatalf("content = %T, want *ComentProcModel", com.Content)
	}
	if pm.Processor != "80286" || pm.MemModel != "Large" {
		t.Errorf("proc model = %+v", pm)
	}
}

func TestComentWatcomDefaultLib(t *testing.T) {
	com := parseComent(t, append([]byte{0x00, 0xFE, 'L', '3'}, "math87.lib"...)...)
	ld, ok := com.Content.(*omf.ComentLinkerDirective)
	if !ok {
		t.Fatalf("content = %T, want *ComentLinkerDirective", com.Content)
	}
	if ld.Code != "L" {
		t.Errorf("code = %q", ld.Code)
	}
	lib, ok := ld.Content.(*omf.DirDefaultLib)
	if !ok {
		t.Fatalf("directive content = %T, want *DirDefaultLib", ld.Content)
	}
	if lib.Priority != 3 || lib.Library != "math87.lib" {
		t.Errorf("default lib = %+v", lib)
	}
}

func TestComentWatcomVFTableDef(t *testing.T) {
	data := cat(
		theadr("M"),
		record(types.LNAMES, cat(name("vfunc1"), name("vfunc2"))...),
		record(types.EXTDEF, cat(name("vtbl"), []byte{0}, name("deflt"), []byte{0})...),
		record(types.COMENT, 0x00, 0xFE, 'P', 0x01, 0x02, 0x01, 0x02),
		modend(),
	)
	f := omf.Parse(data)
	com := f.Records[3].Parsed.(*omf.Coment)
	ld := com.Content.(*omf.ComentLinkerDirective)
	vf, ok := ld.Content.(*omf.DirVFTableDef)
	if !ok {
		t.Fatalf("directive content = %T, want *DirVFTableDef", ld.Content)
	}
	if !vf.IsPure {
		t.Error("'P' directive not marked pure")
	}
	if vf.VFSymbol != "vtbl" || vf.DefaultSymbol != "deflt" {
		t.Errorf("symbols = %q %q", vf.VFSymbol, vf.DefaultSymbol)
	}
	want := []string{"vfunc1", "vfunc2"}
	if len(vf.FunctionNames) != 2 || vf.FunctionNames[0] != want[0] || vf.FunctionNames[1] != want[1] {
		t.Errorf("function names = %v, want %v", vf.FunctionNames, want)
	}
}

func TestComentWatcomTimestamp(t *testing.T) {
	com := parseComent(t, 0x00, 0xFE, 'T', 0x00, 0x00, 0x00, 0x00)
	ld := com.Content.(*omf.ComentLinkerDirective)
	ts, ok := ld.Content.(*omf.DirObjTimestamp)
	if !ok {
		t.Fatalf("directive content = %T, want *DirObjTimestamp", ld.Content)
	}
	if ts.Timestamp != 0 {
		t.Errorf("timestamp = %d", ts.Timestamp)
	}
}

func TestComentWatcomScanTable(t *testing.T) {
	content := cat([]byte{0x00, 0xFD, 's', 0x01}, word(0x10), word(0x20))
	data := cat(
		theadr("M"),
		record(types.LNAMES, name("_TEXT")...),
		record(types.SEGDEF, cat([]byte{0x28}, word(64), []byte{0x01, 0x00, 0x00})...),
		record(types.COMENT, content...),
		modend(),
	)
	f := omf.Parse(data)
	com := f.Records[3].Parsed.(*omf.Coment)
	dd, ok := com.Content.(*omf.ComentDisasmDirective)
	if !ok {
		t.Fatalf("content = %T, want *ComentDisasmDirective", com.Content)
	}
	if dd.Is32Bit || dd.Segment != "_TEXT" || dd.Start != 0x10 || dd.End != 0x20 {
		t.Errorf("scan table = %+v", dd)
	}
}

func TestComentEasyOMFContent(t *testing.T) {
	com := parseComent(t, append([]byte{0x80, 0xAA}, "80386"...)...)
	eo, ok := com.Content.(*omf.ComentEasyOMF)
	if !ok {
		t.Fatalf("content = %T, want *ComentEasyOMF", com.Content)
	}
	if eo.Marker != "80386" {
		t.Errorf("marker = %q", eo.Marker)
	}
}
