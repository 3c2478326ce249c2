package omf

// The COMENT subsystem: the outer handler for record type 88H plus a
// feature-gated registry over comment classes. Vendor-specific handlers for
// overlapping class bytes coexist through the feature-priority mechanism;
// the most specific matching feature set wins.

import (
	"fmt"

	"github.com/apex/log"

	"github.com/HK47196/go-omf/types"
)

func init() {
	registerRecord(decodeComent, nil, types.COMENT)
}

// ComentContent is the decoded body of a COMENT record, discriminated by
// ComentKind.
type ComentContent interface {
	ComentKind() string
}

// Coment is a COMENT record (88H).
type Coment struct {
	Flags   byte `json:"flags"`
	NoPurge bool `json:"no_purge"`
	NoList  bool `json:"no_list"`

	Class     types.CommentClass `json:"class"`
	ClassName string             `json:"class_name"`

	Content ComentContent `json:"content,omitempty"`
	// Raw holds the undecoded text when no class handler matched.
	Raw []byte `json:"raw,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (*Coment) Kind() string { return "coment" }

// A comentHandlerFunc decodes one comment class. Handlers may attach
// warnings to the enclosing payload; they never fail.
type comentHandlerFunc func(f *File, com *Coment, text []byte) ComentContent

type comentEntry struct {
	features []string
	handle   comentHandlerFunc
}

var comentHandlers = map[types.CommentClass][]comentEntry{}

// registerComent adds a handler for one or more comment classes. Two
// handlers may share a class byte only with different feature sets.
func registerComent(handle comentHandlerFunc, features []string, classes ...types.CommentClass) {
	for _, cls := range classes {
		for _, existing := range comentHandlers[cls] {
			if sameFeatures(existing.features, features) {
				panic(fmt.Sprintf("omf: duplicate COMENT handler for class 0x%02X", uint8(cls)))
			}
		}
		comentHandlers[cls] = append(comentHandlers[cls], comentEntry{
			features: features,
			handle:   handle,
		})
	}
}

func lookupComent(cls types.CommentClass, active FeatureSet) comentHandlerFunc {
	var best comentHandlerFunc
	bestLen := -1
	for _, h := range comentHandlers[cls] {
		if !active.HasAll(h.features) {
			continue
		}
		if len(h.features) > bestLen {
			best = h.handle
			bestLen = len(h.features)
		}
	}
	return best
}

// decodeComent never fails: an unknown class or subtype becomes a
// diagnostic-annotated payload carrying the raw bytes.
func decodeComent(f *File, rec *Record) (Payload, error) {
	cur := f.cursor(rec)

	flags, ok1 := cur.ReadByte()
	cls, ok2 := cur.ReadByte()
	if !ok1 || !ok2 {
		return &Coment{
			Flags:    flags,
			Warnings: []string{"truncated COMENT record"},
		}, nil
	}

	com := &Coment{
		Flags:     flags,
		NoPurge:   flags&types.ComentNoPurge != 0,
		NoList:    flags&types.ComentNoList != 0,
		Class:     types.CommentClass(cls),
		ClassName: types.CommentClass(cls).String(),
	}
	text := cur.Rest()

	handle := lookupComent(com.Class, f.Features)
	if handle == nil {
		if !com.Class.IsKnown() {
			com.Warnings = append(com.Warnings,
				fmt.Sprintf("unknown comment class 0x%02X", cls))
			log.Warnf("omf: unknown comment class 0x%02X at offset %#x", cls, rec.Offset)
		} else {
			com.Warnings = append(com.Warnings,
				fmt.Sprintf("no handler for comment class 0x%02X (%s)", cls, com.ClassName))
		}
		com.Raw = append([]byte(nil), text...)
		return com, nil
	}

	com.Content = handle(f, com, text)
	if com.Content == nil && len(text) > 0 {
		com.Raw = append([]byte(nil), text...)
	}
	return com, nil
}

// asciiString decodes comment text, replacing non-ASCII bytes.
func asciiString(b []byte) string {
	buf := make([]rune, len(b))
	for i, c := range b {
		if c < 0x80 {
			buf[i] = rune(c)
		} else {
			buf[i] = '�'
		}
	}
	return string(buf)
}
