package omf_test

import (
	"testing"

	omf "github.com/HK47196/go-omf"
	"github.com/HK47196/go-omf/types"
)

func TestScanMinimalModule(t *testing.T) {
	data := cat(theadr("HELLO"), modend())

	res := omf.NewScanner(data).Scan()
	if res.Fault != "" {
		t.Fatalf("unexpected fault: %s", res.Fault)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	if res.IsLibrary {
		t.Error("IsLibrary = true for object module")
	}
	if res.Variant != types.TISStandard {
		t.Errorf("variant = %s, want TIS", res.Variant)
	}

	first := res.Records[0]
	if first.Type != types.THEADR {
		t.Errorf("first record type = %s, want THEADR", first.Type)
	}
	if !first.ChecksumValid {
		t.Error("THEADR checksum invalid")
	}
	if first.Offset != 0 {
		t.Errorf("THEADR offset = %d, want 0", first.Offset)
	}

	second := res.Records[1]
	if second.Type != types.MODEND {
		t.Errorf("second record type = %s, want MODEND", second.Type)
	}
	for _, rec := range res.Records {
		if rec.Variant != types.TISStandard {
			t.Errorf("record %s variant = %s, want TIS", rec.Type, rec.Variant)
		}
	}
}

func TestScanEmptyFile(t *testing.T) {
	res := omf.NewScanner(nil).Scan()
	if len(res.Records) != 0 {
		t.Errorf("got %d records, want 0", len(res.Records))
	}
	if res.IsLibrary {
		t.Error("IsLibrary = true for empty file")
	}
	if res.Fault != "" {
		t.Errorf("unexpected fault: %s", res.Fault)
	}
}

func TestScanChecksumSkip(t *testing.T) {
	// A zero checksum byte skips validation even when the real sum is
	// nonzero.
	data := recordRawChecksum(types.THEADR, 0x00, name("X")...)

	res := omf.NewScanner(data).Scan()
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if !res.Records[0].ChecksumValid {
		t.Error("zero checksum not treated as valid")
	}
}

func TestScanChecksumInvalid(t *testing.T) {
	data := recordRawChecksum(types.THEADR, 0x55, name("X")...)

	res := omf.NewScanner(data).Scan()
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if res.Records[0].ChecksumValid {
		t.Error("bad checksum reported valid")
	}
}

func TestScanStructuralFault(t *testing.T) {
	// Record claims more content than the file holds.
	data := []byte{byte(types.THEADR), 0xFF, 0x00, 'A'}

	res := omf.NewScanner(data).Scan()
	if res.Fault == "" {
		t.Error("expected structural fault")
	}
	if len(res.Records) != 0 {
		t.Errorf("got %d records, want 0", len(res.Records))
	}
}

func TestScanFaultKeepsEarlierRecords(t *testing.T) {
	data := cat(theadr("OK"), []byte{byte(types.COMENT), 0xFF})

	res := omf.NewScanner(data).Scan()
	if res.Fault == "" {
		t.Error("expected structural fault")
	}
	if len(res.Records) != 1 {
		t.Errorf("got %d records, want 1", len(res.Records))
	}
}

func TestScanEasyOMFMarker(t *testing.T) {
	data := cat(
		theadr("PL.ASM"),
		coment(types.ClassEasyOMF, "80386 C"),
		modend(),
	)

	res := omf.NewScanner(data).Scan()
	if !res.Features.Has("easy_omf") || !res.Features.Has("pharlap") {
		t.Errorf("features = %v, want easy_omf+pharlap", res.Features.List())
	}
	if res.Variant != types.PharLap {
		t.Errorf("variant = %s, want PharLap", res.Variant)
	}
	for _, rec := range res.Records {
		if rec.Variant != types.PharLap {
			t.Errorf("record %s variant = %s, want PharLap", rec.Type, rec.Variant)
		}
	}
	// Marker sits immediately after THEADR: no placement warning.
	for _, w := range res.Warnings {
		t.Errorf("unexpected warning: %s", w)
	}
}

func TestScanEasyOMFMarkerOutOfPlace(t *testing.T) {
	data := cat(
		theadr("PL.ASM"),
		coment(types.ClassTranslator, "Phar Lap 386|ASM"),
		coment(types.ClassEasyOMF, "80386"),
		modend(),
	)

	res := omf.NewScanner(data).Scan()
	if len(res.Warnings) == 0 {
		t.Error("expected Easy-OMF placement warning")
	}
}

func TestScanVariantFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Variant
	}{
		{"pharlap", "Phar Lap translator", types.PharLap},
		{"ibm", "IBM LINK386 v2", types.IBMLink386},
		{"link386", "link386", types.IBMLink386},
		{"plain", "Microsoft C", types.TISStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := cat(theadr("M"), coment(types.ClassTranslator, tt.text), modend())
			res := omf.NewScanner(data).Scan()
			if res.Variant != tt.want {
				t.Errorf("variant = %s, want %s", res.Variant, tt.want)
			}
		})
	}
}

func TestScanVariantMonotone(t *testing.T) {
	// Once a module advances from TIS, later text never reverts or
	// sideswitches it.
	data := cat(
		theadr("M"),
		coment(types.ClassEasyOMF, "80386"),
		coment(types.ClassTranslator, "IBM LINK386"),
		modend(),
	)
	res := omf.NewScanner(data).Scan()
	if res.Variant != types.PharLap {
		t.Errorf("variant = %s, want PharLap (monotone)", res.Variant)
	}
}

func TestScanBorlandFeature(t *testing.T) {
	data := cat(theadr("M"), coment(types.ClassTranslator, "Borland TASM"), modend())
	res := omf.NewScanner(data).Scan()
	if !res.Features.Has("borland") {
		t.Error("borland feature not set")
	}
	if res.Variant != types.TISStandard {
		t.Errorf("variant = %s, want TIS (borland is a feature, not a variant)", res.Variant)
	}
}

func TestScanVendextFeature(t *testing.T) {
	data := cat(theadr("M"), record(types.VENDEXT, word(7)...), modend())
	res := omf.NewScanner(data).Scan()
	if !res.Features.Has("vendext_7") {
		t.Errorf("features = %v, want vendext_7", res.Features.List())
	}
}

func TestScanLibraryPaddingSkip(t *testing.T) {
	lib := cat(
		libRecord(types.LIBHDR, make([]byte, 13)...), // page size 16
		theadr("A"), modend(),
	)
	// Pad to the next page boundary before LIBEND.
	for len(lib)%16 != 0 {
		lib = append(lib, 0x00)
	}
	lib = cat(lib, libRecord(types.LIBEND))

	res := omf.NewScanner(lib).Scan()
	if !res.IsLibrary {
		t.Fatal("IsLibrary = false")
	}
	var recTypes []types.RecordType
	for _, r := range res.Records {
		recTypes = append(recTypes, r.Type)
	}
	want := []types.RecordType{types.LIBHDR, types.THEADR, types.MODEND, types.LIBEND}
	if len(recTypes) != len(want) {
		t.Fatalf("got records %v, want %v", recTypes, want)
	}
	for i := range want {
		if recTypes[i] != want[i] {
			t.Errorf("record %d = %s, want %s", i, recTypes[i], want[i])
		}
	}
}

func TestScanMixedVariantLibrary(t *testing.T) {
	lib := libRecord(types.LIBHDR, make([]byte, 13)...)
	pad := func() {
		for len(lib)%16 != 0 {
			lib = append(lib, 0x00)
		}
	}

	pad()
	lib = cat(lib, theadr("A"), modend())

	pad()
	lib = cat(lib, theadr("B"), coment(types.ClassEasyOMF, "80386"), modend())

	pad()
	lib = cat(lib, libRecord(types.LIBEND))

	res := omf.NewScanner(lib).Scan()
	if !res.MixedVariants {
		t.Error("MixedVariants = false")
	}
	if len(res.SeenVariants) != 2 {
		t.Fatalf("SeenVariants = %v, want 2 entries", res.SeenVariants)
	}
	if res.SeenVariants[0] != types.TISStandard || res.SeenVariants[1] != types.PharLap {
		t.Errorf("SeenVariants = %v, want [TIS, PharLap]", res.SeenVariants)
	}

	// Module A records carry TIS, module B records carry PharLap.
	var aVariant, bVariant types.Variant
	moduleIdx := -1
	for _, rec := range res.Records {
		if rec.Type == types.LIBEND {
			break
		}
		if rec.Type == types.THEADR {
			moduleIdx++
		}
		switch moduleIdx {
		case 0:
			aVariant = rec.Variant
		case 1:
			bVariant = rec.Variant
		}
	}
	if aVariant != types.TISStandard {
		t.Errorf("module A variant = %s, want TIS", aVariant)
	}
	if bVariant != types.PharLap {
		t.Errorf("module B variant = %s, want PharLap", bVariant)
	}
}

func TestScanRecordOffsetInvariant(t *testing.T) {
	data := cat(theadr("HELLO"), coment(types.ClassTranslator, "MASM"), modend())
	res := omf.NewScanner(data).Scan()
	for _, rec := range res.Records {
		if rec.Offset+3+rec.Length > len(data) {
			t.Errorf("record %s violates offset+3+length <= file size", rec.Type)
		}
	}
}

func TestScanStopsAtLibend(t *testing.T) {
	lib := cat(
		libRecord(types.LIBHDR, make([]byte, 13)...),
		theadr("A"), modend(),
		libRecord(types.LIBEND),
		[]byte{0xDE, 0xAD, 0xBE, 0xEF}, // dictionary area, not records
	)
	res := omf.NewScanner(lib).Scan()
	if res.Fault != "" {
		t.Errorf("unexpected fault: %s", res.Fault)
	}
	last := res.Records[len(res.Records)-1]
	if last.Type != types.LIBEND {
		t.Errorf("last record = %s, want LIBEND", last.Type)
	}
}

func TestScanHas32BitRecords(t *testing.T) {
	data := cat(theadr("M"), record(types.MODEND32, 0x00))
	res := omf.NewScanner(data).Scan()
	if !res.Has32BitRecords {
		t.Error("Has32BitRecords = false")
	}
}
