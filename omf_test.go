package omf_test

// Shared test helpers for building OMF record images.

import (
	"encoding/binary"

	"github.com/HK47196/go-omf/types"
)

// record frames content as an OMF record with a computed checksum so that
// the 8-bit sum over the whole record is zero.
func record(t types.RecordType, content ...byte) []byte {
	length := len(content) + 1
	buf := []byte{byte(t), byte(length), byte(length >> 8)}
	buf = append(buf, content...)

	var sum byte
	for _, b := range buf {
		sum += b
	}
	return append(buf, -sum)
}

// recordRawChecksum frames content with an explicit trailing checksum byte.
func recordRawChecksum(t types.RecordType, checksum byte, content ...byte) []byte {
	length := len(content) + 1
	buf := []byte{byte(t), byte(length), byte(length >> 8)}
	buf = append(buf, content...)
	return append(buf, checksum)
}

// libRecord frames content as a checksum-less library record (F0H/F1H).
func libRecord(t types.RecordType, content ...byte) []byte {
	buf := []byte{byte(t), byte(len(content)), byte(len(content) >> 8)}
	return append(buf, content...)
}

// name encodes a length-prefixed string.
func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

// word and dword encode little-endian numerics.
func word(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func dword(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// cat concatenates byte slices.
func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// theadr builds a THEADR record for the given module name.
func theadr(module string) []byte {
	return record(types.THEADR, name(module)...)
}

// modend builds a minimal MODEND record with no start address.
func modend() []byte {
	return record(types.MODEND, 0x00)
}

// coment builds a COMENT record with the given class and text.
func coment(class types.CommentClass, text string) []byte {
	content := append([]byte{0x00, byte(class)}, text...)
	return record(types.COMENT, content...)
}
