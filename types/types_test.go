package types

import "testing"

func TestVariantFieldSizes(t *testing.T) {
	tests := []struct {
		variant  Variant
		is32bit  bool
		offset   int
		repeat   int
	}{
		{TISStandard, false, 2, 2},
		{TISStandard, true, 4, 4},
		{PharLap, false, 4, 2},
		{PharLap, true, 4, 2},
		{IBMLink386, false, 2, 2},
		{IBMLink386, true, 4, 4},
	}
	for _, tt := range tests {
		if got := tt.variant.OffsetFieldSize(tt.is32bit); got != tt.offset {
			t.Errorf("%s OffsetFieldSize(%v) = %d, want %d", tt.variant, tt.is32bit, got, tt.offset)
		}
		if got := tt.variant.LIDATARepeatCountSize(tt.is32bit); got != tt.repeat {
			t.Errorf("%s LIDATARepeatCountSize(%v) = %d, want %d", tt.variant, tt.is32bit, got, tt.repeat)
		}
	}
}

func TestVariantPredicates(t *testing.T) {
	if !PharLap.SegdefHasAccessByte() || TISStandard.SegdefHasAccessByte() || IBMLink386.SegdefHasAccessByte() {
		t.Error("SegdefHasAccessByte is PharLap-only")
	}
	for _, v := range []Variant{TISStandard, PharLap} {
		if v.ComdatUsesInlineName() || v.NbkpatUsesInlineName() || v.LinsymUsesInlineName() {
			t.Errorf("%s should not use inline names", v)
		}
	}
	if !IBMLink386.ComdatUsesInlineName() || !IBMLink386.NbkpatUsesInlineName() || !IBMLink386.LinsymUsesInlineName() {
		t.Error("IBM inline-name predicates must all hold")
	}
}

func TestSegAlignmentFromRaw(t *testing.T) {
	if got := SegAlignmentFromRaw(6, TISStandard); got != AlignLTL {
		t.Errorf("TIS align 6 = %s, want LTL", got)
	}
	if got := SegAlignmentFromRaw(6, PharLap); got != AlignPage4K {
		t.Errorf("PharLap align 6 = %s, want 4K page", got)
	}
	if got := SegAlignmentFromRaw(6, IBMLink386); got != AlignLTL {
		t.Errorf("IBM align 6 = %s, want LTL (TIS rules)", got)
	}
}

func TestFixupLocationFromRaw(t *testing.T) {
	if got := FixupLocationFromRaw(5, TISStandard); got != LocOffset16Loader {
		t.Errorf("TIS loc 5 = %s", got)
	}
	if got := FixupLocationFromRaw(5, PharLap); got != LocPharLapOffset32 {
		t.Errorf("PharLap loc 5 = %s", got)
	}
	if got := FixupLocationFromRaw(6, PharLap); got != LocPharLapPtr1632 {
		t.Errorf("PharLap loc 6 = %s", got)
	}
	if got := FixupLocationFromRaw(9, PharLap); got != LocOffset32 {
		t.Errorf("PharLap loc 9 = %s", got)
	}
	if FixupLocationFromRaw(5, PharLap).String() != "Offset(32)" {
		t.Error("PharLap loc 5 should render as Offset(32)")
	}
}

func TestRecordTypeIs32Bit(t *testing.T) {
	pairs := map[RecordType]bool{
		SEGDEF:   false,
		SEGDEF32: true,
		FIXUPP:   false,
		FIXUPP32: true,
		// NBKPAT inverts the usual low-bit rule.
		NBKPAT:   true,
		NBKPAT32: false,
		THEADR:   false,
	}
	for rt, want := range pairs {
		if got := rt.Is32Bit(); got != want {
			t.Errorf("%s.Is32Bit() = %v, want %v", rt, got, want)
		}
	}
}

func TestRecordTypeIsKnown(t *testing.T) {
	known := []RecordType{RHEADR, DEBSYM, THEADR, VENDEXT, LIBHDR, LIBEND, 0xB1}
	for _, rt := range known {
		if !rt.IsKnown() {
			t.Errorf("%s (0x%02X) not known", rt, uint8(rt))
		}
	}
	unknown := []RecordType{0x00, 0x6F, 0x7F, 0xCF, EXTDICT, 0xFF}
	for _, rt := range unknown {
		if rt.IsKnown() {
			t.Errorf("0x%02X should not be known", uint8(rt))
		}
	}
}

func TestTargetMethodDisplacement(t *testing.T) {
	for m := TargetMethod(0); m < 4; m++ {
		if !m.HasDisplacement() {
			t.Errorf("method %d should carry a displacement", m)
		}
	}
	for m := TargetMethod(4); m < 8; m++ {
		if m.HasDisplacement() {
			t.Errorf("method %d should carry no displacement", m)
		}
	}
}

func TestCommentClassNames(t *testing.T) {
	if ClassEasyOMF.String() != "Easy OMF" {
		t.Errorf("0xAA = %q", ClassEasyOMF.String())
	}
	if CommentClass(0x55).IsKnown() {
		t.Error("0x55 should be unknown")
	}
	if ClassLinkerDirective.String() != "Watcom Linker Directive" {
		t.Errorf("0xFE = %q", ClassLinkerDirective.String())
	}
}

func TestBackpatchLocationNames(t *testing.T) {
	if BackpatchDWordIBM.String() != "DWord(32-IBM)" {
		t.Errorf("IBM dword = %q", BackpatchDWordIBM.String())
	}
	if BackpatchLocation(7).String() != "Unknown(7)" {
		t.Errorf("loc 7 = %q", BackpatchLocation(7).String())
	}
}

func TestBackpatchLocationFromRaw(t *testing.T) {
	if got := BackpatchLocationFromRaw(9, IBMLink386); got != BackpatchDWordIBM {
		t.Errorf("IBM loc 9 = %s", got)
	}
	if got := BackpatchLocationFromRaw(9, TISStandard); got == BackpatchDWordIBM {
		t.Error("TIS loc 9 should not take the IBM reading")
	}
	if got := BackpatchLocationFromRaw(2, TISStandard); got != BackpatchDWord {
		t.Errorf("loc 2 = %s", got)
	}
}
