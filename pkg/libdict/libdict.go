// Package libdict reads the hash-bucket dictionary that follows LIBEND in a
// Microsoft-format OMF library, plus the optional extended dictionary block.
//
// The dictionary is positionally addressed, not a record stream: dictBlocks
// blocks of 512 bytes, each holding 37 bucket bytes and a free-space byte.
// A nonzero bucket value V points at an entry at offset 2V within the block:
// one length byte, the symbol name, and a 2-byte LE page number.
package libdict

import (
	"encoding/binary"
)

const (
	// BlockSize is the size of one dictionary block.
	BlockSize = 512
	// BucketCount is the number of hash buckets per block.
	BucketCount = 37

	// extDictMarker begins the extended dictionary after the last block.
	extDictMarker = 0xF2
)

// An Entry is one dictionary entry: a public symbol and the library page of
// the module defining it.
type Entry struct {
	Block  int    `json:"block"`
	Bucket int    `json:"bucket"`
	Symbol string `json:"symbol"`
	Page   uint16 `json:"page"`
}

// A Dictionary is the parsed library dictionary.
type Dictionary struct {
	Entries []Entry `json:"entries"`
}

// An ExtModule is one module entry of the extended dictionary.
type ExtModule struct {
	Index     int    `json:"index"`
	Page      uint16 `json:"page"`
	DepOffset uint16 `json:"dep_offset"`
}

// Extended is the optional extended dictionary block.
type Extended struct {
	Length     uint16      `json:"length"`
	NumModules int         `json:"num_modules"`
	Modules    []ExtModule `json:"modules,omitempty"`
}

// Parse reads dictBlocks dictionary blocks starting at offset within data,
// then probes for the extended dictionary immediately after. Malformed
// entries are skipped; Parse never fails.
func Parse(data []byte, offset, dictBlocks int) (*Dictionary, *Extended) {
	if offset <= 0 || dictBlocks <= 0 || offset >= len(data) {
		return nil, nil
	}

	dict := &Dictionary{}

	for blockNum := 0; blockNum < dictBlocks; blockNum++ {
		blockOffset := offset + blockNum*BlockSize
		if blockOffset+BlockSize > len(data) {
			break
		}
		block := data[blockOffset : blockOffset+BlockSize]

		for bucket := 0; bucket < BucketCount; bucket++ {
			v := block[bucket]
			if v == 0 {
				continue
			}
			entryOffset := int(v) * 2
			if entryOffset >= BlockSize {
				continue
			}

			nameLen := int(block[entryOffset])
			if nameLen == 0 || entryOffset+1+nameLen+2 > BlockSize {
				continue
			}

			name := block[entryOffset+1 : entryOffset+1+nameLen]
			page := binary.LittleEndian.Uint16(block[entryOffset+1+nameLen:])

			dict.Entries = append(dict.Entries, Entry{
				Block:  blockNum,
				Bucket: bucket,
				Symbol: asciiString(name),
				Page:   page,
			})
		}
	}

	ext := parseExtended(data, offset+dictBlocks*BlockSize)
	return dict, ext
}

// parseExtended reads the extended dictionary: the 0xF2 marker, a 2-byte
// length, a 2-byte module count N, then N+1 (page, dependency-offset) pairs.
func parseExtended(data []byte, offset int) *Extended {
	if offset < 0 || offset+3 > len(data) || data[offset] != extDictMarker {
		return nil
	}

	length := binary.LittleEndian.Uint16(data[offset+1 : offset+3])
	if length < 2 {
		return &Extended{Length: length}
	}

	pos := offset + 3
	if pos+2 > len(data) {
		return &Extended{Length: length}
	}
	numModules := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
	pos += 2

	ext := &Extended{Length: length, NumModules: numModules}
	for i := 0; i <= numModules; i++ {
		if pos+4 > len(data) {
			break
		}
		page := binary.LittleEndian.Uint16(data[pos : pos+2])
		depOffset := binary.LittleEndian.Uint16(data[pos+2 : pos+4])
		pos += 4
		if page != 0 || depOffset != 0 {
			ext.Modules = append(ext.Modules, ExtModule{
				Index:     i,
				Page:      page,
				DepOffset: depOffset,
			})
		}
	}
	return ext
}

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
