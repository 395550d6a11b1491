package glrtree

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding selects how Input's raw bytes are decoded into code points
// (spec §6 "accepts UTF-8 or UTF-16LE input, with a byte-order mark
// skipped at the very start of the document").
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
)

// Input is the callback-based source the lexer reads from: Read returns
// the bytes available starting at the given absolute byte offset and
// point, or nil at end of input. Implementations may return any
// nonzero-length chunk; the lexer re-calls Read as it exhausts one.
type Input interface {
	Read(byteOffset uint32, point Point) []byte
	Encoding() Encoding
}

// bytesInput is the common case: the whole document already sits in
// memory as a []byte.
type bytesInput struct {
	data     []byte
	encoding Encoding
}

// NewBytesInput wraps an in-memory byte slice as an Input, skipping a
// leading UTF-16LE or UTF-8 byte-order mark if present (spec §6).
func NewBytesInput(data []byte, encoding Encoding) Input {
	data = skipBOM(data, encoding)
	return &bytesInput{data: data, encoding: encoding}
}

func skipBOM(data []byte, encoding Encoding) []byte {
	switch encoding {
	case EncodingUTF8:
		if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
			return data[3:]
		}
	case EncodingUTF16LE:
		if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
			return data[2:]
		}
	}
	return data
}

func (b *bytesInput) Read(byteOffset uint32, _ Point) []byte {
	if int(byteOffset) >= len(b.data) {
		return nil
	}
	return b.data[byteOffset:]
}

func (b *bytesInput) Encoding() Encoding { return b.encoding }

func (b *bytesInput) fullBuffer() ([]byte, uint32) { return b.data, 0 }

// decodeRune reads one code point from chunk starting at offset 0,
// honoring the input's encoding, and reports its byte width in the
// original encoding (spec §6 decoding).
func decodeRune(chunk []byte, encoding Encoding) (r rune, width int) {
	if len(chunk) == 0 {
		return utf8.RuneError, 0
	}
	switch encoding {
	case EncodingUTF16LE:
		if len(chunk) < 2 {
			return utf8.RuneError, len(chunk)
		}
		hi := rune(uint16(chunk[0]) | uint16(chunk[1])<<8)
		if utf16.IsSurrogate(hi) && len(chunk) >= 4 {
			lo := rune(uint16(chunk[2]) | uint16(chunk[3])<<8)
			if combined := utf16.DecodeRune(hi, lo); combined != utf8.RuneError {
				return combined, 4
			}
		}
		return hi, 2
	default:
		r, size := utf8.DecodeRune(chunk)
		return r, size
	}
}
