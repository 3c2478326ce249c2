package omf

// Format detection and embedded-structure scanning over arbitrary bytes.
// Both analyses are standalone: they share nothing with a File beyond the
// record-framing rules.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"regexp"
	"sort"

	"github.com/HK47196/go-omf/types"
)

// A Candidate is a potential OMF structure found by Scan.
type Candidate struct {
	Offset        int     `json:"offset"`
	HeaderType    byte    `json:"header_type"`
	Confidence    float64 `json:"confidence"`
	Description   string  `json:"description"`
	EstimatedSize int     `json:"estimated_size,omitempty"`
}

// A PatternMatch is one hit from ScanForPatterns.
type PatternMatch struct {
	Pattern string `json:"pattern"`
	Offset  int    `json:"offset"`
	Match   []byte `json:"match"`
}

// translatorSignatures are compiler/assembler names seen in COMENT class 00H.
var translatorSignatures = [][]byte{
	[]byte("Microsoft"), []byte("MASM"), []byte("ML "), []byte("LINK"),
	[]byte("Borland"), []byte("TASM"), []byte("Turbo"),
	[]byte("WATCOM"), []byte("WASM"), []byte("WLINK"),
	[]byte("OPTASM"), []byte("LZASM"), []byte("NASM"), []byte("FASM"),
	[]byte("Phar Lap"), []byte("PharLap"),
	[]byte("Intel"), []byte("iC86"), []byte("ASM86"),
	[]byte("Digital Mars"), []byte("DJGPP"),
	[]byte("JWasm"), []byte("UASM"), []byte("POASM"),
}

var theadrExtensions = regexp.MustCompile(
	`(?i)\.(asm|obj|c|cpp|cxx|pas|for|cob|bas|inc|h|hpp)[\x00-\x20]?$`)

// A grepPattern is one named byte signature. The regexp package decodes
// []byte input as UTF-8, which breaks on OMF's raw high bytes, so the
// record-header part of each signature is matched byte-wise: record type,
// two length bytes, an optional flags/class constraint, then a literal.
type grepPattern struct {
	recType byte

	// Comment signatures: require a 00H/80H flags byte and this class.
	isComent bool
	class    byte

	// literal is searched for in the record body. nameSuffix instead
	// anchors a case-insensitive extension at the end of the leading
	// length-prefixed name.
	literal    []byte
	altLiteral [][]byte
	nameSuffix string
}

// GrepPatterns are the named signatures used by ScanForPatterns.
var GrepPatterns = map[string]grepPattern{
	// THEADR with common source-filename extensions.
	"theadr_asm": {recType: 0x80, nameSuffix: ".asm"},
	"theadr_c":   {recType: 0x80, nameSuffix: ".c"},
	"theadr_obj": {recType: 0x80, nameSuffix: ".obj"},

	// Easy OMF-386 marker.
	"easy_omf": {recType: 0x88, isComent: true, class: 0xAA, literal: []byte("80386")},

	// COMENT with known translators.
	"ms_translator": {recType: 0x88, isComent: true, class: 0x00, literal: []byte("Microsoft")},
	"borland_translator": {recType: 0x88, isComent: true, class: 0x00,
		altLiteral: [][]byte{[]byte("Borland"), []byte("TASM"), []byte("Turbo")}},
	"watcom_translator": {recType: 0x88, isComent: true, class: 0x00, literal: []byte("WATCOM")},

	// LNAMES records containing a common segment name.
	"lnames_text": {recType: 0x96, literal: []byte("\x05_TEXT")},
	"lnames_data": {recType: 0x96, literal: []byte("\x05_DATA")},
	"lnames_code": {recType: 0x96, literal: []byte("\x04CODE")},
}

// match tests the pattern at offset and returns the end of the matched
// region.
func (p grepPattern) match(data []byte, offset int) (int, bool) {
	if offset+3 > len(data) || data[offset] != p.recType {
		return 0, false
	}
	recLen := int(binary.LittleEndian.Uint16(data[offset+1 : offset+3]))
	if recLen == 0 {
		return 0, false
	}
	end := offset + 3 + recLen
	if end > len(data) {
		end = len(data)
	}
	body := data[offset+3 : end]

	if p.isComent {
		if len(body) < 2 || (body[0] != 0x00 && body[0] != 0x80) || body[1] != p.class {
			return 0, false
		}
		body = body[2:]
	}

	switch {
	case p.nameSuffix != "":
		if len(body) < 2 {
			return 0, false
		}
		nameLen := int(body[0])
		if nameLen == 0 || 1+nameLen > len(body) {
			return 0, false
		}
		name := body[1 : 1+nameLen]
		if !hasFoldSuffix(name, p.nameSuffix) {
			return 0, false
		}
		return offset + 3 + 1 + nameLen, true
	case p.literal != nil:
		if i := bytes.Index(body, p.literal); i >= 0 {
			return end - len(body) + i + len(p.literal), true
		}
		return 0, false
	default:
		for _, lit := range p.altLiteral {
			if i := bytes.Index(body, lit); i >= 0 {
				return end - len(body) + i + len(lit), true
			}
		}
		return 0, false
	}
}

// hasFoldSuffix reports whether name ends with the ASCII suffix,
// case-insensitively.
func hasFoldSuffix(name []byte, suffix string) bool {
	if len(name) < len(suffix) {
		return false
	}
	tail := name[len(name)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		a, b := tail[i], suffix[i]
		if a >= 'A' && a <= 'Z' {
			a += 'a' - 'A'
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// IsOMF is a quick check that data appears to be an OMF file.
func IsOMF(data []byte) bool {
	ok, _, _ := Detect(data)
	return ok
}

// Detect scores the confidence that data begins an OMF record chain. The
// result is OMF when the confidence reaches 0.5.
func Detect(data []byte) (bool, float64, string) {
	return DetectDepth(data, 3)
}

// DetectDepth is Detect with an explicit record-chain validation depth.
func DetectDepth(data []byte, checkDepth int) (bool, float64, string) {
	if len(data) < 4 {
		return false, 0.0, "file too small"
	}

	first := types.RecordType(data[0])
	var headerName string
	switch first {
	case types.THEADR, types.LHEADR, types.LIBHDR:
		headerName = first.String()
	default:
		return false, 0.0, fmt.Sprintf("invalid header byte: 0x%02X", data[0])
	}

	confidence := 0.3

	recLen := int(binary.LittleEndian.Uint16(data[1:3]))
	if recLen == 0 || 3+recLen > len(data) {
		return false, 0.1, "invalid record length"
	}
	confidence += 0.1

	if first == types.THEADR || first == types.LHEADR {
		content := data[3 : 3+recLen]
		if len(content) >= 2 {
			strLen := int(content[0])
			if strLen == recLen-2 {
				confidence += 0.15
				if printableASCII(content[1 : 1+strLen]) {
					confidence += 0.15
				}
			}
		}
	}

	record := data[:3+recLen]
	if validChecksum(record, record[len(record)-1]) {
		confidence += 0.1
	}

	valid, _ := validateRecordChain(data, 0, checkDepth, first == types.LIBHDR)
	if valid {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence >= 0.5 {
		return true, confidence, fmt.Sprintf("OMF %s detected", headerName)
	}
	return false, confidence, fmt.Sprintf("unlikely OMF (confidence: %.0f%%)", confidence*100)
}

// Scan slides over data locating embedded OMF structures, emitting every
// candidate at or above minConfidence. Accepted candidates are skipped over
// to avoid rediscovering their interior records.
func Scan(data []byte, minConfidence float64) []Candidate {
	var out []Candidate

	for offset := 0; offset < len(data)-4; {
		var cand *Candidate

		switch types.RecordType(data[offset]) {
		case types.THEADR, types.LHEADR:
			cand = checkTheadr(data, offset)
		case types.LIBHDR:
			cand = checkLibhdr(data, offset)
		case types.COMENT:
			if offset+4 < len(data) && data[offset+4] == uint8(types.ClassEasyOMF) {
				cand = checkEasyOMFMarker(data, offset)
			}
		}

		if cand != nil && cand.Confidence >= minConfidence {
			out = append(out, *cand)
			if cand.EstimatedSize > 0 {
				offset += cand.EstimatedSize
				continue
			}
		}
		offset++
	}
	return out
}

// ScanForPatterns runs the named signatures over data. A nil name list runs
// all of them, sorted for deterministic output.
func ScanForPatterns(data []byte, names []string) []PatternMatch {
	if names == nil {
		for name := range GrepPatterns {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	var out []PatternMatch
	for _, name := range names {
		pat, ok := GrepPatterns[name]
		if !ok {
			continue
		}
		for offset := 0; offset < len(data); offset++ {
			end, ok := pat.match(data, offset)
			if !ok {
				continue
			}
			out = append(out, PatternMatch{
				Pattern: name,
				Offset:  offset,
				Match:   data[offset:end],
			})
			offset = end - 1
		}
	}
	return out
}

// validateRecordChain walks up to count records starting at offset. Each
// must have a known type byte, a length fitting the buffer, and a valid
// checksum; library padding is skipped. Returns validity plus the offset
// where the walk stopped.
func validateRecordChain(data []byte, offset, count int, isLibrary bool) (bool, int) {
	pos := offset

	for i := 0; i < count; i++ {
		if isLibrary {
			for pos < len(data) && data[pos] == 0x00 {
				pos++
			}
		}

		if pos+3 > len(data) {
			return i > 0, pos
		}

		recType := types.RecordType(data[pos])
		if !recType.IsKnown() {
			return i > 0, pos
		}

		recLen := int(binary.LittleEndian.Uint16(data[pos+1 : pos+3]))
		if recLen == 0 || pos+3+recLen > len(data) {
			return i > 0, pos
		}

		if recType != types.LIBHDR && recType != types.LIBEND {
			record := data[pos : pos+3+recLen]
			if !validChecksum(record, record[len(record)-1]) {
				return i > 0, pos
			}
		}

		if recType.IsModuleEnd() || recType == types.LIBEND {
			return true, pos + 3 + recLen
		}
		pos += 3 + recLen
	}
	return true, pos
}

func checkTheadr(data []byte, offset int) *Candidate {
	if offset+4 > len(data) {
		return nil
	}

	recType := data[offset]
	recLen := int(binary.LittleEndian.Uint16(data[offset+1 : offset+3]))
	if recLen < 2 || offset+3+recLen > len(data) {
		return nil
	}

	content := data[offset+3 : offset+3+recLen]
	strLen := int(content[0])
	if strLen != recLen-2 {
		return nil
	}

	confidence := 0.25
	nameBytes := content[1 : 1+strLen]
	if !printableASCII(nameBytes) {
		return nil
	}
	confidence += 0.15

	if theadrExtensions.Match(nameBytes) {
		confidence += 0.20
	}

	record := data[offset : offset+3+recLen]
	if !validChecksum(record, record[len(record)-1]) {
		return nil
	}
	confidence += 0.15

	valid, endOffset := validateRecordChain(data, offset, 3, false)
	if valid {
		confidence += 0.15

		next := offset + 3 + recLen
		if next < len(data) && types.RecordType(data[next]) == types.COMENT {
			confidence += 0.10
			if hasTranslatorSignature(data, next) {
				confidence += 0.15
			}
		}
	}

	headerName := "THEADR"
	if types.RecordType(recType) == types.LHEADR {
		headerName = "LHEADR"
	}
	cand := &Candidate{
		Offset:      offset,
		HeaderType:  recType,
		Confidence:  min1(confidence),
		Description: fmt.Sprintf("%s: %s", headerName, string(nameBytes)),
	}
	if valid {
		cand.EstimatedSize = endOffset - offset
	}
	return cand
}

func checkLibhdr(data []byte, offset int) *Candidate {
	if offset+10 > len(data) {
		return nil
	}

	recLen := int(binary.LittleEndian.Uint16(data[offset+1 : offset+3]))
	if recLen < 7 || offset+3+recLen > len(data) {
		return nil
	}
	content := data[offset+3 : offset+3+recLen]

	pageSize := int(binary.LittleEndian.Uint16(content[0:2])) + 3

	confidence := 0.25
	switch {
	case reasonablePageSize(pageSize):
		confidence += 0.20
	case pageSize&(pageSize-1) == 0 && pageSize >= 16 && pageSize <= 65536:
		confidence += 0.10
	default:
		return nil
	}

	if len(content) >= 6 {
		dictOffset := int(binary.LittleEndian.Uint32(content[2:6]))
		if dictOffset > 0 && dictOffset < len(data)-offset {
			confidence += 0.15
		}
	}

	firstModule := offset + pageSize
	if firstModule < len(data) && types.RecordType(data[firstModule]) == types.THEADR {
		confidence += 0.25
		if valid, _ := validateRecordChain(data, firstModule, 2, false); valid {
			confidence += 0.15
		}
	}

	return &Candidate{
		Offset:      offset,
		HeaderType:  uint8(types.LIBHDR),
		Confidence:  min1(confidence),
		Description: fmt.Sprintf("LIBHDR: page_size=%d", pageSize),
	}
}

func checkEasyOMFMarker(data []byte, offset int) *Candidate {
	if offset+3 > len(data) {
		return nil
	}
	recLen := int(binary.LittleEndian.Uint16(data[offset+1 : offset+3]))
	if recLen < 1 || offset+3+recLen > len(data) {
		return nil
	}
	content := data[offset+3 : offset+3+recLen-1]

	if len(content) >= 7 && bytes.Contains(content, []byte("80386")) {
		return &Candidate{
			Offset:        offset,
			HeaderType:    uint8(types.COMENT),
			Confidence:    0.70,
			Description:   "Easy OMF-386 marker (fragment)",
			EstimatedSize: 3 + recLen,
		}
	}
	return nil
}

func hasTranslatorSignature(data []byte, offset int) bool {
	if offset+5 > len(data) {
		return false
	}
	recLen := int(binary.LittleEndian.Uint16(data[offset+1 : offset+3]))
	if recLen < 3 || offset+3+recLen > len(data) {
		return false
	}
	content := data[offset+3 : offset+3+recLen]
	if len(content) < 2 || content[1] != uint8(types.ClassTranslator) {
		return false
	}

	text := content[2:]
	for _, sig := range translatorSignatures {
		if bytes.Contains(text, sig) {
			return true
		}
	}
	return false
}

func printableASCII(b []byte) bool {
	for _, c := range b {
		if c < 32 || c >= 127 {
			return false
		}
	}
	return true
}

func reasonablePageSize(n int) bool {
	switch n {
	case 16, 32, 64, 128, 256, 512, 1024, 2048, 4096:
		return true
	}
	return false
}

func min1(f float64) float64 {
	if f > 1.0 {
		return 1.0
	}
	return f
}
