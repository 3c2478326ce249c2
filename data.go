package omf

// Decoders for the data records: LEDATA, LIDATA and the FIXUPP subrecord
// stream that refers back to them.

import (
	"github.com/HK47196/go-omf/types"
)

func init() {
	registerRecord(decodeLedata, nil, types.LEDATA, types.LEDATA32)
	registerRecord(decodeLidata, nil, types.LIDATA, types.LIDATA32)
	registerRecord(decodeFixupp, nil, types.FIXUPP, types.FIXUPP32)
}

// LEData is a LEDATA/LEDATA32 enumerated data record.
type LEData struct {
	Is32Bit      bool   `json:"is_32bit"`
	SegmentIndex int    `json:"segment_index"`
	Segment      string `json:"segment"`
	Offset       uint32 `json:"offset"`

	// DataOffset is the absolute file offset of the first data byte, for
	// consumers needing random access into the original image.
	DataOffset int    `json:"data_offset"`
	DataLength int    `json:"data_length"`
	Data       []byte `json:"-"`
}

func (*LEData) Kind() string { return "ledata" }

func decodeLedata(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	p := &LEData{Is32Bit: is32}
	p.SegmentIndex = cur.Index()
	p.Segment = f.GetSegdef(p.SegmentIndex)
	p.Offset = cur.Numeric(cur.OffsetFieldSize(is32))

	p.DataOffset = rec.Offset + 3 + cur.Pos()
	p.Data = cur.Rest()
	p.DataLength = len(p.Data)

	f.lastData = &DataLocation{Kind: "LEDATA", SegmentIndex: p.SegmentIndex, Offset: p.Offset}
	return p, nil
}

// A LIDataBlock is one iterated-data block; blocks nest when BlockCount is
// nonzero. ExpandedSize is RepeatCount times the content size or the sum of
// the nested expanded sizes.
type LIDataBlock struct {
	RepeatCount  uint32         `json:"repeat_count"`
	BlockCount   uint16         `json:"block_count"`
	Content      []byte         `json:"content,omitempty"`
	Nested       []*LIDataBlock `json:"nested,omitempty"`
	ExpandedSize uint64         `json:"expanded_size"`
}

func (b *LIDataBlock) computeExpandedSize() uint64 {
	if b.BlockCount == 0 {
		b.ExpandedSize = uint64(b.RepeatCount) * uint64(len(b.Content))
		return b.ExpandedSize
	}
	var inner uint64
	for _, n := range b.Nested {
		inner += n.computeExpandedSize()
	}
	b.ExpandedSize = uint64(b.RepeatCount) * inner
	return b.ExpandedSize
}

// LIData is a LIDATA/LIDATA32 iterated data record.
type LIData struct {
	Is32Bit      bool   `json:"is_32bit"`
	SegmentIndex int    `json:"segment_index"`
	Segment      string `json:"segment"`
	Offset       uint32 `json:"offset"`

	DataOffset int `json:"data_offset"`

	Blocks            []*LIDataBlock `json:"blocks,omitempty"`
	TotalExpandedSize uint64         `json:"total_expanded_size"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*LIData) Kind() string { return "lidata" }

func decodeLidata(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	p := &LIData{Is32Bit: is32}
	p.SegmentIndex = cur.Index()
	p.Segment = f.GetSegdef(p.SegmentIndex)
	p.Offset = cur.Numeric(cur.OffsetFieldSize(is32))
	p.DataOffset = rec.Offset + 3 + cur.Pos()

	if p.SegmentIndex == 0 {
		p.Warnings = append(p.Warnings, "segment index is zero (invalid per spec)")
	}

	blocks, warnings := parseLIDataBlocks(cur, is32)
	p.Blocks = blocks
	p.Warnings = append(p.Warnings, warnings...)
	for _, b := range p.Blocks {
		p.TotalExpandedSize += b.computeExpandedSize()
	}

	f.lastData = &DataLocation{Kind: "LIDATA", SegmentIndex: p.SegmentIndex, Offset: p.Offset}
	return p, nil
}

// parseLIDataBlocks parses a sequence of iterated-data blocks. Shared with
// COMDAT records carrying the iterated flag. Truncation at any depth is
// recorded once and halts further parsing.
func parseLIDataBlocks(cur *Cursor, is32bit bool) ([]*LIDataBlock, []string) {
	var blocks []*LIDataBlock
	var warnings []string
	truncated := false

	var parseBlock func(depth int) *LIDataBlock
	parseBlock = func(depth int) *LIDataBlock {
		repeatSize := cur.LIDATARepeatCountSize(is32bit)
		if cur.Remaining() < repeatSize+2 {
			if cur.Remaining() > 0 && !truncated {
				warnings = append(warnings, "truncated iterated data block")
				truncated = true
			}
			cur.ReadBytes(cur.Remaining())
			return nil
		}

		block := &LIDataBlock{
			RepeatCount: cur.Numeric(repeatSize),
			BlockCount:  uint16(cur.Numeric(2)),
		}

		if block.BlockCount == 0 {
			contentLen, ok := cur.ReadByte()
			if !ok {
				if !truncated {
					warnings = append(warnings, "missing iterated data content length")
					truncated = true
				}
				return block
			}
			content, ok := cur.ReadBytes(int(contentLen))
			if !ok {
				if !truncated {
					warnings = append(warnings, "truncated iterated data content")
					truncated = true
				}
				content = cur.Rest()
				cur.ReadBytes(cur.Remaining())
			}
			block.Content = content
			return block
		}

		for i := 0; i < int(block.BlockCount); i++ {
			nested := parseBlock(depth + 1)
			if nested == nil {
				break
			}
			block.Nested = append(block.Nested, nested)
		}
		return block
	}

	for cur.Remaining() > 0 && !truncated {
		block := parseBlock(0)
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}
	return blocks, warnings
}

// A FixupSubrecord is either a Thread or a Fixup, in encounter order.
type FixupSubrecord interface {
	Payload
	fixupSubrecord()
}

// A Thread caches a (method, datum) pair for reuse by compact FIXUP
// subrecords. Each FIXUPP record holds four frame and four target slots.
type Thread struct {
	IsFrame   bool   `json:"is_frame"`
	ThreadNum int    `json:"thread_num"`
	Method    uint8  `json:"method"`
	MethodName string `json:"method_name"`

	Datum    int  `json:"datum,omitempty"`
	HasDatum bool `json:"has_datum,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*Thread) Kind() string     { return "thread" }
func (*Thread) fixupSubrecord() {}

// A Fixup is one FIXUP subrecord: location, mode, frame and target
// resolution, and the optional displacement.
type Fixup struct {
	DataOffset   int                 `json:"data_offset"`
	Location     types.FixupLocation `json:"location"`
	SelfRelative bool                `json:"self_relative"`

	FrameMethod   types.FrameMethod `json:"frame_method"`
	FrameSource   string            `json:"frame_source"` // "Explicit" or "Thread#N"
	FrameDatum    int               `json:"frame_datum,omitempty"`
	HasFrameDatum bool              `json:"has_frame_datum,omitempty"`

	TargetMethod   types.TargetMethod `json:"target_method"`
	TargetSource   string             `json:"target_source"`
	TargetDatum    int                `json:"target_datum,omitempty"`
	HasTargetDatum bool               `json:"has_target_datum,omitempty"`

	Displacement    uint32 `json:"displacement,omitempty"`
	HasDisplacement bool   `json:"has_displacement,omitempty"`
}

func (*Fixup) Kind() string     { return "fixup" }
func (*Fixup) fixupSubrecord() {}

// Fixupp is a FIXUPP/FIXUPP32 record.
type Fixupp struct {
	Is32Bit    bool             `json:"is_32bit"`
	Subrecords []FixupSubrecord `json:"subrecords"`
	Warnings   []string         `json:"warnings,omitempty"`
}

func (*Fixupp) Kind() string { return "fixupp" }

type threadSlot struct {
	method uint8
	datum  int
	hasDatum bool
	set    bool
}

func decodeFixupp(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)
	is32 := rec.Is32Bit()

	var frameThreads, targetThreads [4]threadSlot

	p := &Fixupp{Is32Bit: is32}

	for cur.Remaining() > 0 {
		peek, _ := cur.PeekByte()

		if peek&0x80 == 0 {
			// THREAD subrecord.
			b, _ := cur.ReadByte()
			isFrame := b&0x40 != 0
			method := (b >> 2) & 0x07
			num := int(b & 0x03)

			t := &Thread{IsFrame: isFrame, ThreadNum: num, Method: method}
			if method == 3 {
				t.Datum = int(cur.Numeric(2))
				t.HasDatum = true
			} else if method < 3 {
				t.Datum = cur.Index()
				t.HasDatum = true
			}

			if isFrame {
				t.MethodName = types.FrameMethod(method).String()
				frameThreads[num] = threadSlot{method: method, datum: t.Datum, hasDatum: t.HasDatum, set: true}
				switch method {
				case 3:
					t.Warnings = append(t.Warnings, "FRAME method F3 is invalid per spec")
				case 6:
					t.Warnings = append(t.Warnings, "FRAME method F6 is invalid per spec")
				case 7:
					t.Warnings = append(t.Warnings, "FRAME method F7 is undefined")
				}
			} else {
				t.MethodName = types.TargetMethod(method).String()
				targetThreads[num] = threadSlot{method: method, datum: t.Datum, hasDatum: t.HasDatum, set: true}
				if method == 7 {
					t.Warnings = append(t.Warnings, "TARGET method T7 is undefined")
				}
			}
			p.Subrecords = append(p.Subrecords, t)
			continue
		}

		// FIXUP subrecord: two LOCAT bytes, then FIXDAT.
		b1, ok1 := cur.ReadByte()
		b2, ok2 := cur.ReadByte()
		if !ok1 || !ok2 {
			p.Warnings = append(p.Warnings, "truncated FIXUP subrecord")
			break
		}

		fx := &Fixup{
			SelfRelative: b1&0x40 == 0,
			Location:     types.FixupLocationFromRaw((b1>>2)&0x0F, f.activeVariant),
			DataOffset:   int(b1&0x03)<<8 | int(b2),
		}

		fixdat, ok := cur.ReadByte()
		if !ok {
			p.Warnings = append(p.Warnings, "truncated FIXUP data byte")
			break
		}

		fBit := fixdat&0x80 != 0
		frameField := (fixdat >> 4) & 0x07
		tBit := fixdat&0x08 != 0
		pBit := (fixdat >> 2) & 0x01
		targetField := fixdat & 0x03

		if fBit {
			slot := frameThreads[frameField&0x03]
			if slot.set {
				fx.FrameMethod = types.FrameMethod(slot.method)
				fx.FrameDatum = slot.datum
				fx.HasFrameDatum = slot.hasDatum
			} else {
				fx.FrameMethod = types.FrameSegdef
			}
			fx.FrameSource = threadSourceName(int(frameField & 0x03))
		} else {
			fx.FrameMethod = types.FrameMethod(frameField)
			fx.FrameSource = "Explicit"
			if frameField < 3 {
				fx.FrameDatum = cur.Index()
				fx.HasFrameDatum = true
			}
		}

		if tBit {
			slot := targetThreads[targetField]
			// The P bit supplies the high bit of the target method on top
			// of the threaded low bits.
			if slot.set {
				fx.TargetMethod = types.TargetMethod(slot.method&0x03 | pBit<<2)
				fx.TargetDatum = slot.datum
				fx.HasTargetDatum = slot.hasDatum
			} else {
				fx.TargetMethod = types.TargetMethod(pBit << 2)
			}
			fx.TargetSource = threadSourceName(int(targetField))
		} else {
			fx.TargetMethod = types.TargetMethod(targetField | pBit<<2)
			fx.TargetSource = "Explicit"
			fx.TargetDatum = cur.Index()
			fx.HasTargetDatum = true
		}

		if fx.TargetMethod.HasDisplacement() {
			fx.Displacement = cur.Numeric(cur.OffsetFieldSize(is32))
			fx.HasDisplacement = true
		}

		p.Subrecords = append(p.Subrecords, fx)
	}
	return p, nil
}

func threadSourceName(n int) string {
	return "Thread#" + string(rune('0'+n))
}
