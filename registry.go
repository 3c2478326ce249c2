package omf

import (
	"fmt"

	"github.com/HK47196/go-omf/types"
)

// A decoderFunc turns a record's content into a typed payload. Decoders may
// read the context's symbol tables and append to them in record order.
type decoderFunc func(f *File, rec *Record) (Payload, error)

type handlerEntry struct {
	features []string
	decode   decoderFunc
}

// recordHandlers maps record type to its registered decoders. Handlers with
// feature requirements shadow the default when all their features are
// active; the most specific matching entry wins.
var recordHandlers = map[types.RecordType][]handlerEntry{}

// registerRecord adds a decoder for the given record types. Registration
// happens at package initialization; registering two handlers for the same
// type with the same feature set is a programming error.
func registerRecord(decode decoderFunc, features []string, recTypes ...types.RecordType) {
	for _, rt := range recTypes {
		for _, existing := range recordHandlers[rt] {
			if sameFeatures(existing.features, features) {
				panic(fmt.Sprintf("omf: duplicate handler for record type %s", rt))
			}
		}
		recordHandlers[rt] = append(recordHandlers[rt], handlerEntry{
			features: features,
			decode:   decode,
		})
	}
}

// lookupRecord returns the most specific decoder whose feature requirements
// are satisfied, or nil when no handler matches.
func lookupRecord(rt types.RecordType, active FeatureSet) decoderFunc {
	var best decoderFunc
	bestLen := -1
	for _, h := range recordHandlers[rt] {
		if !active.HasAll(h.features) {
			continue
		}
		if len(h.features) > bestLen {
			best = h.decode
			bestLen = len(h.features)
		}
	}
	return best
}

func sameFeatures(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, f := range a {
		set[f] = true
	}
	for _, f := range b {
		if !set[f] {
			return false
		}
	}
	return true
}
