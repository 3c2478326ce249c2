package libdict

import (
	"encoding/binary"
	"testing"
)

func buildBlock(entries map[int]string, pages map[int]uint16) []byte {
	block := make([]byte, BlockSize)
	next := 50 // first free entry byte, past the 38-byte header
	for bucket, sym := range entries {
		block[bucket] = byte(next / 2)
		block[next] = byte(len(sym))
		copy(block[next+1:], sym)
		binary.LittleEndian.PutUint16(block[next+1+len(sym):], pages[bucket])
		next += 1 + len(sym) + 2
		if next%2 != 0 {
			next++
		}
	}
	return block
}

func TestParseSingleBlock(t *testing.T) {
	block := buildBlock(map[int]string{0: "_main"}, map[int]uint16{0: 3})
	data := append(make([]byte, 512), block...)

	dict, ext := Parse(data, 512, 1)
	if dict == nil {
		t.Fatal("nil dictionary")
	}
	if ext != nil {
		t.Errorf("unexpected extended dictionary: %+v", ext)
	}
	if len(dict.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(dict.Entries))
	}
	e := dict.Entries[0]
	if e.Symbol != "_main" || e.Page != 3 || e.Block != 0 || e.Bucket != 0 {
		t.Errorf("entry = %+v", e)
	}
}

func TestParseSkipsEmptyBuckets(t *testing.T) {
	block := buildBlock(map[int]string{5: "_start", 11: "puts"}, map[int]uint16{5: 1, 11: 9})
	dict, _ := Parse(block, 0, 1)
	// Offset 0 is rejected: the dictionary never sits at the file start.
	if dict != nil {
		t.Fatal("offset 0 accepted")
	}

	data := append(make([]byte, 16), block...)
	dict, _ = Parse(data, 16, 1)
	if len(dict.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(dict.Entries))
	}
}

func TestParseTruncatedBlock(t *testing.T) {
	data := make([]byte, 600)
	dict, _ := Parse(data, 512, 2) // even the first block extends past the data
	if dict == nil {
		t.Fatal("nil dictionary")
	}
	if len(dict.Entries) != 0 {
		t.Errorf("got %d entries, want 0", len(dict.Entries))
	}
}

func TestParseMalformedEntrySkipped(t *testing.T) {
	block := make([]byte, BlockSize)
	block[0] = 255 // entry offset 510: the 40-byte name would run past the block
	block[510] = 40
	data := append(make([]byte, 16), block...)

	dict, _ := Parse(data, 16, 1)
	if len(dict.Entries) != 0 {
		t.Errorf("got %d entries, want 0", len(dict.Entries))
	}
}

func TestParseExtendedDictionary(t *testing.T) {
	block := buildBlock(map[int]string{2: "x"}, map[int]uint16{2: 1})

	ext := []byte{0xF2}
	ext = append(ext, 0x0C, 0x00) // length
	ext = append(ext, 0x02, 0x00) // two modules
	// Three (page, dep offset) pairs; the zero pair is dropped.
	pairs := []uint16{1, 0x20, 2, 0x40, 0, 0}
	for _, v := range pairs {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		ext = append(ext, b...)
	}

	data := append(make([]byte, 16), block...)
	data = append(data, ext...)

	dict, extDict := Parse(data, 16, 1)
	if dict == nil || extDict == nil {
		t.Fatalf("dict=%v ext=%v", dict, extDict)
	}
	if extDict.NumModules != 2 {
		t.Errorf("num modules = %d, want 2", extDict.NumModules)
	}
	if len(extDict.Modules) != 2 {
		t.Fatalf("modules = %+v", extDict.Modules)
	}
	if extDict.Modules[0].Page != 1 || extDict.Modules[0].DepOffset != 0x20 {
		t.Errorf("module 0 = %+v", extDict.Modules[0])
	}
}
