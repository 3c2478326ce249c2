package omf

// Decoders for the Microsoft library header and end records. The dictionary
// that follows LIBEND is positionally addressed, not a record; the File
// consumes it through pkg/libdict after the record loop ends.

import (
	"github.com/HK47196/go-omf/types"
)

func init() {
	registerRecord(decodeLibhdr, nil, types.LIBHDR)
	registerRecord(decodeLibend, nil, types.LIBEND)
}

// LibHdr is the library header record (F0H). The page size is the record
// length plus the three header bytes.
type LibHdr struct {
	PageSize      int  `json:"page_size"`
	DictOffset    int  `json:"dict_offset"`
	DictBlocks    int  `json:"dict_blocks"`
	Flags         byte `json:"flags"`
	CaseSensitive bool `json:"case_sensitive"`
}

func (*LibHdr) Kind() string { return "libhdr" }

func decodeLibhdr(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	p := &LibHdr{PageSize: rec.Length + 3}
	p.DictOffset = int(cur.Numeric(4))
	p.DictBlocks = int(cur.Numeric(2))
	flags, ok := cur.ReadByte()
	if !ok {
		return nil, &FormatError{rec.Offset, "truncated library header", nil}
	}
	p.Flags = flags
	p.CaseSensitive = flags&types.LibFlagCaseSensitive != 0

	f.LibPageSize = p.PageSize
	f.LibDictOffset = p.DictOffset
	f.LibDictBlocks = p.DictBlocks
	return p, nil
}

// LibEnd is the library end record (F1H).
type LibEnd struct{}

func (*LibEnd) Kind() string { return "libend" }

func decodeLibend(f *File, rec *Record) (Payload, error) {
	return &LibEnd{}, nil
}
