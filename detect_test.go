package omf_test

import (
	"bytes"
	"testing"

	omf "github.com/HK47196/go-omf"
	"github.com/HK47196/go-omf/types"
)

func TestDetectMinimalModule(t *testing.T) {
	data := cat(theadr("HELLO.ASM"), modend())

	isOMF, confidence, desc := omf.Detect(data)
	if !isOMF {
		t.Errorf("Detect = false (%.2f, %s)", confidence, desc)
	}
	if confidence < 0.5 {
		t.Errorf("confidence = %.2f, want >= 0.5", confidence)
	}
}

func TestDetectRejectsGarbage(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00, 0x01, 0x02},
		[]byte("MZ\x90\x00 this is a PE file, not OMF"),
		bytes.Repeat([]byte{0x42}, 64),
	}
	for i, data := range inputs {
		if isOMF, _, _ := omf.Detect(data); isOMF {
			t.Errorf("input %d detected as OMF", i)
		}
	}
}

func TestDetectTooSmall(t *testing.T) {
	_, conf, desc := omf.Detect([]byte{0x80, 0x01})
	if conf != 0 || desc != "file too small" {
		t.Errorf("got %.2f %q", conf, desc)
	}
}

func TestDetectLibrary(t *testing.T) {
	lib := cat(libRecord(types.LIBHDR, make([]byte, 13)...), theadr("A"), modend())
	for len(lib)%16 != 0 {
		lib = append(lib, 0x00)
	}
	lib = cat(lib, libRecord(types.LIBEND))

	isOMF, _, desc := omf.Detect(lib)
	if !isOMF {
		t.Errorf("library not detected: %s", desc)
	}
}

func TestScanEmbedded(t *testing.T) {
	module := cat(theadr("INNER.ASM"), coment(types.ClassTranslator, "Microsoft MASM"), modend())
	data := cat(
		bytes.Repeat([]byte{0x90}, 100),
		module,
		bytes.Repeat([]byte{0xCC}, 50),
	)

	candidates := omf.Scan(data, 0.5)
	if len(candidates) == 0 {
		t.Fatal("no candidates found")
	}
	if candidates[0].Offset != 100 {
		t.Errorf("candidate offset = %d, want 100", candidates[0].Offset)
	}
}

func TestScanSkipsInterior(t *testing.T) {
	module := cat(theadr("A.ASM"), modend())
	data := cat(module, theadr("B.ASM"), modend())

	candidates := omf.Scan(data, 0.5)
	// Each module header is one candidate; interior records are skipped.
	if len(candidates) != 2 {
		t.Errorf("got %d candidates, want 2: %+v", len(candidates), candidates)
	}
}

func TestScanEasyOMFFragment(t *testing.T) {
	fragment := coment(types.ClassEasyOMF, "80386 fragment")
	data := cat(bytes.Repeat([]byte{0x00}, 16), fragment)

	candidates := omf.Scan(data, 0.5)
	found := false
	for _, c := range candidates {
		if c.HeaderType == uint8(types.COMENT) && c.Offset == 16 {
			found = true
		}
	}
	if !found {
		t.Errorf("Easy-OMF fragment not found: %+v", candidates)
	}
}

func TestScanForPatterns(t *testing.T) {
	data := cat(bytes.Repeat([]byte{0x11}, 7), theadr("PROG.ASM"))

	matches := omf.ScanForPatterns(data, []string{"theadr_asm"})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Offset != 7 || matches[0].Pattern != "theadr_asm" {
		t.Errorf("match = %+v", matches[0])
	}
}

func TestScanForPatternsLNames(t *testing.T) {
	data := cat(theadr("M"), record(types.LNAMES, name("_TEXT")...), modend())
	matches := omf.ScanForPatterns(data, []string{"lnames_text"})
	if len(matches) != 1 {
		t.Errorf("got %d matches, want 1", len(matches))
	}
}

func TestIsOMF(t *testing.T) {
	if !omf.IsOMF(cat(theadr("X.C"), modend())) {
		t.Error("IsOMF = false for valid module")
	}
	if omf.IsOMF([]byte("not omf at all....")) {
		t.Error("IsOMF = true for text")
	}
}
