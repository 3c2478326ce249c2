package omf

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/HK47196/go-omf/types"
)

// Scanner performs phase 1 of the two-phase parse: a single pass that splits
// the file into records, validates checksums, detects the per-module dialect
// from COMENT markers and vendor strings, and tracks module boundaries. It
// never interprets record content beyond the feature sniff and never touches
// symbol tables.
type Scanner struct {
	data []byte
	off  int

	records  []*Record
	features FeatureSet

	isLibrary bool
	has32bit  bool
	warnings  []string
	fault     string

	// Current module state. moduleStart indexes records; -1 when no module
	// is open. sinceHeader counts records after the module header so the
	// Easy-OMF placement rule can be checked.
	moduleStart   int
	moduleVariant types.Variant
	sinceHeader   int

	fileVariant    types.Variant
	haveFileVar    bool
	seenVariants   []types.Variant
}

// NewScanner returns a scanner over the given file bytes.
func NewScanner(data []byte) *Scanner {
	return &Scanner{
		data:        data,
		features:    NewFeatureSet(),
		moduleStart: -1,
	}
}

// ScanResult is the output of phase 1.
type ScanResult struct {
	Records         []*Record
	Variant         types.Variant
	Features        FeatureSet
	IsLibrary       bool
	Has32BitRecords bool
	MixedVariants   bool
	SeenVariants    []types.Variant
	Warnings        []string
	// Fault is the structural-fault description when the scan terminated
	// early, empty for a clean scan.
	Fault string
}

// Scan runs the pass and returns every record read before EOF, LIBEND, or a
// structural fault.
func (s *Scanner) Scan() *ScanResult {
	if len(s.data) > 0 && s.data[0] == uint8(types.LIBHDR) {
		s.isLibrary = true
	}

	for s.off < len(s.data) {
		if s.isLibrary && s.data[s.off] == 0x00 {
			s.off++
			continue
		}

		rec := s.readRecord()
		if rec == nil {
			break
		}
		s.records = append(s.records, rec)
		s.trackModule(rec)
		s.detectFeatures(rec)

		if rec.Type == types.LIBEND {
			break
		}
	}
	s.closeModule(len(s.records))

	seen := map[types.Variant]bool{}
	var uniq []types.Variant
	for _, v := range s.seenVariants {
		if !seen[v] {
			seen[v] = true
			uniq = append(uniq, v)
		}
	}

	return &ScanResult{
		Records:         s.records,
		Variant:         s.fileVariant,
		Features:        s.features,
		IsLibrary:       s.isLibrary,
		Has32BitRecords: s.has32bit,
		MixedVariants:   s.isLibrary && len(uniq) > 1,
		SeenVariants:    uniq,
		Warnings:        s.warnings,
		Fault:           s.fault,
	}
}

// readRecord reads one record header and content. A record that cannot be
// framed is a structural fault: the scan stops and keeps what it has.
func (s *Scanner) readRecord() *Record {
	if s.off+3 > len(s.data) {
		s.fault = fmt.Sprintf("truncated record header at offset %#x", s.off)
		log.Warnf("omf: %s", s.fault)
		return nil
	}

	recOffset := s.off
	recType := types.RecordType(s.data[s.off])
	recLen := int(binary.LittleEndian.Uint16(s.data[s.off+1 : s.off+3]))
	s.off += 3

	if s.off+recLen > len(s.data) {
		s.fault = fmt.Sprintf("record at offset %#x extends past end of file", recOffset)
		log.Warnf("omf: %s", s.fault)
		return nil
	}

	raw := s.data[s.off : s.off+recLen]
	s.off += recLen

	// Library header and end records carry no checksum byte.
	if recType == types.LIBHDR || recType == types.LIBEND {
		return &Record{
			Type:    recType,
			Offset:  recOffset,
			Length:  recLen,
			Content: raw,
		}
	}

	var checksum byte
	content := raw
	if len(raw) > 0 {
		checksum = raw[len(raw)-1]
		content = raw[:len(raw)-1]
	}

	return &Record{
		Type:          recType,
		Offset:        recOffset,
		Length:        recLen,
		Content:       content,
		Checksum:      checksum,
		HasChecksum:   true,
		ChecksumValid: validChecksum(s.data[recOffset:recOffset+3+recLen], checksum),
	}
}

// validChecksum implements the TIS rule: a zero checksum byte skips
// validation, otherwise the 8-bit sum of the entire record must be zero.
func validChecksum(record []byte, checksum byte) bool {
	if checksum == 0 {
		return true
	}
	var sum byte
	for _, b := range record {
		sum += b
	}
	return sum == 0
}

func (s *Scanner) trackModule(rec *Record) {
	if strings.HasSuffix(rec.Type.String(), "32") {
		s.has32bit = true
	}

	switch {
	case rec.Type.IsModuleHeader():
		s.closeModule(len(s.records) - 1)
		s.moduleStart = len(s.records) - 1
		s.moduleVariant = types.TISStandard
		s.sinceHeader = 0
	case rec.Type.IsModuleEnd():
		s.closeModule(len(s.records))
	default:
		s.sinceHeader++
	}
}

// closeModule assigns the detected variant to every record of the module
// ending just before index end.
func (s *Scanner) closeModule(end int) {
	if s.moduleStart < 0 {
		return
	}
	for _, rec := range s.records[s.moduleStart:end] {
		rec.Variant = s.moduleVariant
	}
	s.seenVariants = append(s.seenVariants, s.moduleVariant)
	if !s.haveFileVar {
		s.fileVariant = s.moduleVariant
		s.haveFileVar = true
	}
	s.moduleStart = -1
}

func (s *Scanner) detectFeatures(rec *Record) {
	switch rec.Type {
	case types.COMENT:
		s.detectComentFeatures(rec)
	case types.VENDEXT:
		if len(rec.Content) >= 2 {
			vendor := binary.LittleEndian.Uint16(rec.Content[:2])
			s.features.Add(fmt.Sprintf("vendext_%d", vendor))
		}
	}
}

// detectComentFeatures upgrades the current module's variant from COMENT
// markers. Detection is monotone: a module identified as PharLap or IBM
// never reverts to TIS on later text.
func (s *Scanner) detectComentFeatures(rec *Record) {
	if len(rec.Content) < 2 {
		return
	}
	class := types.CommentClass(rec.Content[1])

	if class == types.ClassEasyOMF {
		s.moduleVariant = types.PharLap
		s.features.Add("easy_omf")
		s.features.Add("pharlap")
		// The Easy-OMF marker must immediately follow the module header.
		if s.moduleStart < 0 || s.sinceHeader != 1 {
			w := fmt.Sprintf("Easy OMF-386 marker at offset %#x is not immediately after the module header", rec.Offset)
			s.warnings = append(s.warnings, w)
			log.Warnf("omf: %s", w)
		}
	}

	if len(rec.Content) <= 2 {
		return
	}
	text := strings.ToLower(string(rec.Content[2:]))
	switch {
	case strings.Contains(text, "pharlap") || strings.Contains(text, "phar lap"):
		if s.moduleVariant == types.TISStandard {
			s.moduleVariant = types.PharLap
		}
	case strings.Contains(text, "ibm") || strings.Contains(text, "link386"):
		if s.moduleVariant == types.TISStandard {
			s.moduleVariant = types.IBMLink386
		}
	case strings.Contains(text, "borland"):
		s.features.Add("borland")
	}
}
