package omf

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/HK47196/go-omf/types"
)

// A Record is one OMF record: its raw framing plus, after parsing, a typed
// payload or an error string.
type Record struct {
	Type    types.RecordType `json:"type"`
	Offset  int              `json:"offset"`
	Length  int              `json:"length"`
	Content []byte           `json:"-"`

	// Checksum is the trailing checksum byte. Library header and end
	// records carry none; HasChecksum distinguishes.
	Checksum      byte `json:"checksum"`
	HasChecksum   bool `json:"has_checksum"`
	ChecksumValid bool `json:"checksum_valid"`

	// Variant is the dialect of the module this record belongs to.
	Variant types.Variant `json:"-"`

	// Parsed is the typed payload, nil when the record had no handler.
	// Err carries the decoder failure when parsing the record failed.
	Parsed Payload `json:"-"`
	Err    string  `json:"error,omitempty"`
}

// Name returns the record type name.
func (r *Record) Name() string { return r.Type.String() }

// Is32Bit reports whether the record is a 32-bit variant.
func (r *Record) Is32Bit() bool { return r.Type.Is32Bit() }

// MarshalJSON emits the record envelope with the payload kind as the
// discriminator, the shape consumed by the external serializer.
func (r *Record) MarshalJSON() ([]byte, error) {
	type envelope struct {
		Type          uint8   `json:"type"`
		Name          string  `json:"name"`
		Offset        int     `json:"offset"`
		Length        int     `json:"length"`
		Checksum      *byte   `json:"checksum,omitempty"`
		ChecksumValid bool    `json:"checksum_valid"`
		Variant       string  `json:"variant"`
		Kind          string  `json:"kind,omitempty"`
		Parsed        Payload `json:"parsed,omitempty"`
		Err           string  `json:"error,omitempty"`
	}
	e := envelope{
		Type:          uint8(r.Type),
		Name:          r.Name(),
		Offset:        r.Offset,
		Length:        r.Length,
		ChecksumValid: r.ChecksumValid,
		Variant:       r.Variant.String(),
		Parsed:        r.Parsed,
		Err:           r.Err,
	}
	if r.HasChecksum {
		ck := r.Checksum
		e.Checksum = &ck
	}
	if r.Parsed != nil {
		e.Kind = r.Parsed.Kind()
	}
	return json.Marshal(e)
}

// A Payload is the decoded content of a record. Kind returns a stable
// lowercase tag used as the serialization discriminator.
type Payload interface {
	Kind() string
}

// A FeatureSet holds active extension feature tags (e.g. "easy_omf"),
// orthogonal to variants.
type FeatureSet map[string]struct{}

// NewFeatureSet returns a set holding the given tags.
func NewFeatureSet(tags ...string) FeatureSet {
	fs := make(FeatureSet, len(tags))
	for _, t := range tags {
		fs[t] = struct{}{}
	}
	return fs
}

// Add inserts a tag.
func (fs FeatureSet) Add(tag string) { fs[tag] = struct{}{} }

// Has reports whether the tag is active.
func (fs FeatureSet) Has(tag string) bool {
	_, ok := fs[tag]
	return ok
}

// HasAll reports whether every tag is active.
func (fs FeatureSet) HasAll(tags []string) bool {
	for _, t := range tags {
		if !fs.Has(t) {
			return false
		}
	}
	return true
}

// List returns the active tags in sorted order.
func (fs FeatureSet) List() []string {
	out := make([]string, 0, len(fs))
	for t := range fs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON serializes the set as a sorted array.
func (fs FeatureSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.List())
}

// A DataLocation records the last LEDATA/LIDATA seen, consumed by FIXUPP
// frame method F4 (location).
type DataLocation struct {
	Kind         string `json:"kind"` // "LEDATA" or "LIDATA"
	SegmentIndex int    `json:"segment_index"`
	Offset       uint32 `json:"offset"`
}

// FormatError is returned by some operations if the data does not have the
// correct format for an OMF file.
type FormatError struct {
	off int
	msg string
	val interface{}
}

func (e *FormatError) Error() string {
	msg := e.msg
	if e.val != nil {
		msg += fmt.Sprintf(" '%v'", e.val)
	}
	msg += fmt.Sprintf(" in record at byte %#x", e.off)
	return msg
}
