package omf

// High level access to low level data structures.

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/HK47196/go-omf/pkg/libdict"
	"github.com/HK47196/go-omf/types"
)

// A File represents a parsed OMF object file or library.
//
// Parsing is two-phase: the Scanner enumerates records and detects the
// per-module dialect, then the File replays the record list through
// variant-aware decoders that share the per-module symbol tables.
type File struct {
	Data []byte `json:"-"`

	Records []*Record `json:"records"`

	// Variant is the file-wide dialect, taken from the first module.
	// Individual records carry their own module's variant.
	Variant  types.Variant `json:"-"`
	Features FeatureSet    `json:"features"`

	IsLibrary       bool `json:"is_library"`
	Has32BitRecords bool `json:"has_32bit_records"`
	MixedVariants   bool `json:"mixed_variants"`

	SeenVariants []types.Variant `json:"-"`

	Warnings []string `json:"warnings,omitempty"`
	// Fault is the structural-fault message when the scan stopped early.
	Fault string `json:"fault,omitempty"`

	// Library header fields, populated by the LIBHDR decoder.
	LibPageSize   int `json:"lib_page_size,omitempty"`
	LibDictOffset int `json:"lib_dict_offset,omitempty"`
	LibDictBlocks int `json:"lib_dict_blocks,omitempty"`

	// Dictionary holds the post-LIBEND hash dictionary, parsed after the
	// record loop ends. It is positionally addressed, not a record.
	Dictionary   *libdict.Dictionary `json:"dictionary,omitempty"`
	ExtendedDict *libdict.Extended   `json:"extended_dictionary,omitempty"`

	// Per-module symbol tables, 1-indexed with a sentinel null entry.
	// Reset at every module header in library mode.
	lnames  []string
	segdefs []string
	grpdefs []string
	extdefs []string
	typdefs []string

	lastData *DataLocation

	activeVariant types.Variant
}

// Parse scans and decodes an in-memory OMF image. It never fails hard:
// structural faults stop the scan and are reported on the File, decoder
// errors annotate their record, and parsing always continues with the next
// record.
func Parse(data []byte) *File {
	res := NewScanner(data).Scan()

	f := &File{
		Data:            data,
		Records:         res.Records,
		Variant:         res.Variant,
		Features:        res.Features,
		IsLibrary:       res.IsLibrary,
		Has32BitRecords: res.Has32BitRecords,
		MixedVariants:   res.MixedVariants,
		SeenVariants:    res.SeenVariants,
		Warnings:        res.Warnings,
		Fault:           res.Fault,
	}
	f.resetTables()
	f.activeVariant = res.Variant

	for _, rec := range f.Records {
		f.parseRecord(rec)
	}

	if f.IsLibrary && f.LibDictOffset > 0 && f.LibDictBlocks > 0 {
		f.Dictionary, f.ExtendedDict = libdict.Parse(data, f.LibDictOffset, f.LibDictBlocks)
	}
	return f
}

// Open opens the named file using os.ReadFile and parses it as OMF.
func Open(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "omf: open %s", name)
	}
	return Parse(data), nil
}

func (f *File) parseRecord(rec *Record) {
	if rec.Variant != f.activeVariant {
		f.activeVariant = rec.Variant
	}
	if f.IsLibrary && rec.Type.IsModuleHeader() {
		f.resetTables()
		f.lastData = nil
	}

	decode := lookupRecord(rec.Type, f.Features)
	if decode == nil {
		w := fmt.Sprintf("no handler for record type 0x%02X at offset %#x", uint8(rec.Type), rec.Offset)
		f.Warnings = append(f.Warnings, w)
		log.Warnf("omf: %s", w)
		return
	}

	payload, err := f.safeDecode(decode, rec)
	if err != nil {
		rec.Err = err.Error()
		return
	}
	rec.Parsed = payload
}

// safeDecode shields the record loop: a panicking decoder becomes a
// record-level error, never a crash of the outer parse.
func (f *File) safeDecode(decode decoderFunc, rec *Record) (p Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return decode(f, rec)
}

func (f *File) resetTables() {
	f.lnames = []string{"<null>"}
	f.segdefs = []string{"<null>"}
	f.grpdefs = []string{"<null>"}
	f.extdefs = []string{"<null>"}
	f.typdefs = []string{"<null>"}
}

// cursor returns a new cursor over a record's content using the active
// variant's field-size rules.
func (f *File) cursor(rec *Record) *Cursor {
	return NewCursor(rec.Content, f.activeVariant)
}

// ActiveVariant returns the dialect currently in effect during parsing.
func (f *File) ActiveVariant() types.Variant { return f.activeVariant }

// LastDataRecord returns the location of the most recent LEDATA/LIDATA, or
// nil when none has been seen in the current module.
func (f *File) LastDataRecord() *DataLocation { return f.lastData }

// GetLName resolves a 1-based LNAMES index. Out-of-range indexes resolve to
// a placeholder, never an error.
func (f *File) GetLName(index int) string {
	if index >= 0 && index < len(f.lnames) {
		return f.lnames[index]
	}
	return fmt.Sprintf("LName#%d", index)
}

// GetSegdef resolves a 1-based SEGDEF index.
func (f *File) GetSegdef(index int) string {
	if index >= 0 && index < len(f.segdefs) {
		return f.segdefs[index]
	}
	return fmt.Sprintf("Seg#%d", index)
}

// GetGrpdef resolves a 1-based GRPDEF index.
func (f *File) GetGrpdef(index int) string {
	if index >= 0 && index < len(f.grpdefs) {
		return f.grpdefs[index]
	}
	return fmt.Sprintf("Grp#%d", index)
}

// GetExtdef resolves a 1-based index into the shared external-name table.
// EXTDEF, LEXTDEF, CEXTDEF and COMDEF all append here in encounter order;
// fixups reference them uniformly.
func (f *File) GetExtdef(index int) string {
	if index >= 0 && index < len(f.extdefs) {
		return f.extdefs[index]
	}
	return fmt.Sprintf("Ext#%d", index)
}

// GetTypdef resolves a 1-based TYPDEF index.
func (f *File) GetTypdef(index int) string {
	if index >= 0 && index < len(f.typdefs) {
		return f.typdefs[index]
	}
	return fmt.Sprintf("Type#%d", index)
}

// Extdefs returns a copy of the shared external-name table including the
// sentinel entry.
func (f *File) Extdefs() []string {
	out := make([]string, len(f.extdefs))
	copy(out, f.extdefs)
	return out
}

func (f *File) addLName(name string) int {
	f.lnames = append(f.lnames, name)
	return len(f.lnames) - 1
}

func (f *File) addSegdef(name string) int {
	f.segdefs = append(f.segdefs, name)
	return len(f.segdefs) - 1
}

func (f *File) addGrpdef(name string) int {
	f.grpdefs = append(f.grpdefs, name)
	return len(f.grpdefs) - 1
}

func (f *File) addExtdef(name string) int {
	f.extdefs = append(f.extdefs, name)
	return len(f.extdefs) - 1
}

func (f *File) addTypdef() int {
	f.typdefs = append(f.typdefs, fmt.Sprintf("TYPDEF#%d", len(f.typdefs)))
	return len(f.typdefs) - 1
}
